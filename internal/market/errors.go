package market

import "errors"

var (
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrUpstreamStatus = errors.New("unexpected upstream status")
	ErrUnknownKind    = errors.New("unknown provider kind")
	ErrInvalidCrumb   = errors.New("invalid crumb")
)

// ProviderError wraps a failed provider call. Error returns the provider's
// own message so it can be surfaced to clients unchanged.
type ProviderError struct {
	Op     string
	Symbol string
	Err    error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
