package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dgnsrekt/deltagraph/internal/config"
	"github.com/dgnsrekt/deltagraph/internal/contract"
	"github.com/dgnsrekt/deltagraph/internal/market"
	"github.com/dgnsrekt/deltagraph/internal/notify"
	"github.com/dgnsrekt/deltagraph/internal/snapshot"
	"github.com/dgnsrekt/deltagraph/internal/staging"
)

func snapshotCmd() *cobra.Command {
	var (
		dryRun   bool
		compress bool
		workers  int
	)

	cmd := &cobra.Command{
		Use:   "snapshot SYMBOL...",
		Short: "Capture provider data for offline replay",
		Long: `Capture price history, expiration dates and the nearest option chain for
each symbol into provider.file.directory. Captured files are served by the
file provider (provider.kind: file).

Arguments may be plain symbols or contract identifiers; identifiers are
reduced to the symbol the chart endpoint would request.

Examples:
  # Capture two symbols
  deltagraph snapshot AAPL MSFT

  # Capture compressed snapshots with more workers
  deltagraph snapshot --compress --workers 8 AAPL MSFT SPY

  # Show what would be written
  deltagraph snapshot --dry-run AAPL250620C00150000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if !cmd.Flags().Changed("compress") {
				compress = cfg.Snapshot.Compress
			}
			if !cmd.Flags().Changed("workers") {
				workers = cfg.Snapshot.Workers
			}

			symbols := snapshotSymbols(args)
			stgMgr := staging.NewManager(cfg.Provider.File.Directory)

			logger.Info("planned snapshots", zap.Int("count", len(symbols)))

			if dryRun {
				for _, s := range symbols {
					fmt.Printf("Would capture: %s -> %s\n", s, stgMgr.FinalPath(market.SnapshotFileName(s, compress)))
				}
				return nil
			}

			// Capturing always reads from the live provider
			source := cfg.Provider
			source.Kind = config.ProviderYahoo
			provider, err := market.New(source, logger)
			if err != nil {
				return err
			}

			mgr := snapshot.NewManager(provider, stgMgr, workers, cfg.Series.HistoryDays, compress, logger)
			notifier := notify.New(cfg.Notify, logger)
			start := time.Now()

			result, err := mgr.Execute(ctx, symbols)
			if err == nil && result.Failed > 0 {
				err = fmt.Errorf("%d snapshots failed", result.Failed)
			}

			// Notify with a fresh context so an interrupted batch is still reported
			if err != nil {
				if nErr := notifier.SendFailure(context.Background(), result, time.Since(start), err); nErr != nil {
					logger.Warn("failed to send failure notification", zap.Error(nErr))
				}
			} else if nErr := notifier.SendSuccess(ctx, result, time.Since(start)); nErr != nil {
				logger.Warn("failed to send success notification", zap.Error(nErr))
			}

			logger.Info("snapshot complete",
				zap.String("captureID", result.CaptureID),
				zap.Int("total", result.Total),
				zap.Int("success", result.Success),
				zap.Int("failed", result.Failed),
				zap.Int64("bytes", result.Bytes),
			)

			for _, e := range result.Errors {
				logger.Error("snapshot error", zap.String("error", e))
			}

			return err
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be captured")
	cmd.Flags().BoolVar(&compress, "compress", false, "write zstd-compressed snapshots (default from snapshot.compress)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent captures (default from snapshot.workers)")

	return cmd
}

// snapshotSymbols normalises arguments to upper-case provider symbols,
// dropping duplicates while keeping the first occurrence order.
func snapshotSymbols(args []string) []string {
	seen := make(map[string]bool, len(args))
	var symbols []string
	for _, arg := range args {
		s := strings.ToUpper(strings.TrimSpace(arg))
		if contract.Valid(s) {
			s = contract.Underlying(s)
		}
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		symbols = append(symbols, s)
	}
	return symbols
}
