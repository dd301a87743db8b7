package snapshot

import "fmt"

// BatchResult summarises one snapshot run.
type BatchResult struct {
	CaptureID string
	Total     int
	Success   int
	Failed    int
	Bytes     int64
	Errors    []string
}

type TaskResult struct {
	Symbol    string
	Path      string
	Success   bool
	BytesSize int64
	Error     error
}

func (r TaskResult) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: %v", r.Symbol, r.Error)
	}
	return fmt.Sprintf("%s: %s (%d bytes)", r.Symbol, r.Path, r.BytesSize)
}
