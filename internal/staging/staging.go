package staging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Manager writes files into a staging directory and moves them into place
// only once they are complete.
type Manager struct {
	baseDir     string
	stagingRoot string
}

func NewManager(baseDir string) *Manager {
	return &Manager{
		baseDir:     baseDir,
		stagingRoot: filepath.Join(baseDir, ".staging"),
	}
}

func (m *Manager) FinalDir() string {
	return m.baseDir
}

func (m *Manager) StagingRoot() string {
	return m.stagingRoot
}

func (m *Manager) FinalPath(name string) string {
	return filepath.Join(m.baseDir, name)
}

// Write streams write's output into a staging temp file and renames it to
// name under the final directory. Readers never observe a partial file.
func (m *Manager) Write(name string, write func(io.Writer) error) (int64, error) {
	if err := os.MkdirAll(m.stagingRoot, 0750); err != nil {
		return 0, fmt.Errorf("creating directories: %w", err)
	}

	tmpPath := filepath.Join(m.stagingRoot, name+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	cw := &countingWriter{w: f}
	err = write(cw)
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	if err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("writing file: %w", err)
	}

	// Atomic rename
	destPath := m.FinalPath(name)
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fmt.Errorf("renaming temp file: %w", err)
	}

	return cw.n, nil
}

// Cleanup removes the staging directory and anything left in it.
func (m *Manager) Cleanup() error {
	return os.RemoveAll(m.stagingRoot)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
