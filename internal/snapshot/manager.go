package snapshot

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dgnsrekt/deltagraph/internal/market"
	"github.com/dgnsrekt/deltagraph/internal/staging"
)

// Manager captures provider responses for a set of symbols so they can be
// replayed later by market.FileProvider.
type Manager struct {
	provider    market.Provider
	staging     *staging.Manager
	workers     int
	historyDays int
	compress    bool
	now         func() time.Time
	logger      *zap.Logger
}

func NewManager(provider market.Provider, staging *staging.Manager, workers, historyDays int, compress bool, logger *zap.Logger) *Manager {
	if workers < 1 {
		workers = 1
	}
	return &Manager{
		provider:    provider,
		staging:     staging,
		workers:     workers,
		historyDays: historyDays,
		compress:    compress,
		now:         time.Now,
		logger:      logger,
	}
}

func (m *Manager) Execute(ctx context.Context, symbols []string) (*BatchResult, error) {
	result := &BatchResult{
		CaptureID: uuid.NewString(),
		Total:     len(symbols),
	}

	if len(symbols) == 0 {
		return result, nil
	}

	jobs := make(chan string, len(symbols))
	results := make(chan TaskResult, len(symbols))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < m.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.worker(ctx, result.CaptureID, jobs, results)
		}()
	}

	// Send jobs
	go func() {
		defer close(jobs)
		for _, symbol := range symbols {
			select {
			case <-ctx.Done():
				return
			case jobs <- symbol:
			}
		}
	}()

	// Wait for workers and close results
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect results
	for r := range results {
		if r.Success {
			result.Success++
			result.Bytes += r.BytesSize
			continue
		}
		result.Failed++
		if r.Error != nil {
			result.Errors = append(result.Errors, r.String())
		}
	}

	if err := m.staging.Cleanup(); err != nil {
		m.logger.Warn("failed to clean staging directory", zap.Error(err))
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (m *Manager) worker(ctx context.Context, captureID string, jobs <-chan string, results chan<- TaskResult) {
	for symbol := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		result := m.capture(ctx, captureID, symbol)

		select {
		case <-ctx.Done():
			return
		case results <- result:
		}
	}
}

func (m *Manager) capture(ctx context.Context, captureID, symbol string) TaskResult {
	result := TaskResult{Symbol: symbol}

	m.logger.Info("capturing", zap.String("symbol", symbol))

	snap, err := m.fetch(ctx, captureID, symbol)
	if err != nil {
		result.Error = err
		m.logger.Warn("capture failed", zap.String("symbol", symbol), zap.Error(err))
		return result
	}

	name := market.SnapshotFileName(symbol, m.compress)
	size, err := m.staging.Write(name, func(w io.Writer) error {
		return market.EncodeSnapshot(w, snap, m.compress)
	})
	if err != nil {
		result.Error = err
		return result
	}

	result.Success = true
	result.Path = m.staging.FinalPath(name)
	result.BytesSize = size
	m.logger.Info("captured",
		zap.String("symbol", symbol),
		zap.String("path", result.Path),
		zap.Int64("bytes", size),
		zap.Int("bars", len(snap.History)),
	)

	return result
}

// fetch collects the same data the chart endpoint consumes: history, the
// expiration list and the chain for the first listed expiration.
func (m *Manager) fetch(ctx context.Context, captureID, symbol string) (*market.Snapshot, error) {
	snap := &market.Snapshot{
		CaptureID:   captureID,
		Symbol:      symbol,
		CapturedAt:  m.now().UTC(),
		Expirations: []string{},
		Chains:      map[string]market.Chain{},
	}

	bars, err := m.provider.History(ctx, symbol, m.historyDays)
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	snap.History = bars

	expirations, err := m.provider.ExpirationDates(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("expirations: %w", err)
	}
	if len(expirations) == 0 {
		return snap, nil
	}
	snap.Expirations = expirations

	chain, err := m.provider.OptionChain(ctx, symbol, expirations[0])
	if err != nil {
		return nil, fmt.Errorf("option chain %s: %w", expirations[0], err)
	}
	if chain != nil {
		snap.Chains[expirations[0]] = *chain
	}

	return snap, nil
}
