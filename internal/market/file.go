package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"go.uber.org/zap"
)

const (
	snapshotExt           = ".json"
	compressedSnapshotExt = ".json.zst"
)

// FileProvider replays snapshots captured by the snapshot command.
// Files are read on every call; nothing is held between requests.
type FileProvider struct {
	dir    string
	logger *zap.Logger
}

func NewFileProvider(dir string, logger *zap.Logger) *FileProvider {
	return &FileProvider{dir: dir, logger: logger}
}

// Compile-time interface verification
var _ Provider = (*FileProvider)(nil)

func (p *FileProvider) History(ctx context.Context, symbol string, days int) ([]Bar, error) {
	snap, err := p.load(symbol)
	if err != nil {
		return nil, err
	}

	cutoff := snap.CapturedAt.AddDate(0, 0, -days)
	bars := make([]Bar, 0, len(snap.History))
	for _, b := range snap.History {
		if b.Date.Before(cutoff) {
			continue
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func (p *FileProvider) ExpirationDates(ctx context.Context, symbol string) ([]string, error) {
	snap, err := p.load(symbol)
	if err != nil {
		return nil, err
	}
	if snap.Expirations == nil {
		return []string{}, nil
	}
	return snap.Expirations, nil
}

func (p *FileProvider) OptionChain(ctx context.Context, symbol, expiration string) (*Chain, error) {
	snap, err := p.load(symbol)
	if err != nil {
		return nil, err
	}

	chain, ok := snap.Chains[expiration]
	if !ok {
		return &Chain{Expiration: expiration, Calls: []OptionQuote{}, Puts: []OptionQuote{}}, nil
	}
	return &chain, nil
}

func (p *FileProvider) load(symbol string) (*Snapshot, error) {
	for _, compressed := range []bool{true, false} {
		path := filepath.Join(p.dir, SnapshotFileName(symbol, compressed))

		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening snapshot: %w", err)
		}

		snap, err := DecodeSnapshot(f, compressed)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
		}

		p.logger.Debug("snapshot loaded",
			zap.String("path", path),
			zap.String("captureID", snap.CaptureID),
		)
		return snap, nil
	}

	return nil, fmt.Errorf("%w: no snapshot for %s in %s", ErrSymbolNotFound, symbol, p.dir)
}

// SnapshotFileName returns the file name a snapshot for symbol is stored under.
func SnapshotFileName(symbol string, compressed bool) string {
	if compressed {
		return symbol + compressedSnapshotExt
	}
	return symbol + snapshotExt
}

// EncodeSnapshot writes snap as JSON, zstd-compressed when compress is set.
func EncodeSnapshot(w io.Writer, snap *Snapshot, compress bool) error {
	if !compress {
		return json.NewEncoder(w).Encode(snap)
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create zstd encoder: %w", err)
	}
	if err := json.NewEncoder(enc).Encode(snap); err != nil {
		_ = enc.Close()
		return err
	}
	return enc.Close()
}

// DecodeSnapshot reads a snapshot written by EncodeSnapshot.
func DecodeSnapshot(r io.Reader, compressed bool) (*Snapshot, error) {
	if compressed {
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		r = dec
	}

	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
