package market

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/dgnsrekt/deltagraph/internal/config"
)

// Provider is the market data source consumed by the series pipeline.
type Provider interface {
	// History returns chronological daily bars covering the last days calendar days.
	History(ctx context.Context, symbol string, days int) ([]Bar, error)

	// ExpirationDates returns the listed option expirations in provider order.
	ExpirationDates(ctx context.Context, symbol string) ([]string, error)

	// OptionChain returns calls and puts for one expiration.
	OptionChain(ctx context.Context, symbol, expiration string) (*Chain, error)
}

// New builds the provider selected by cfg.Kind.
func New(cfg config.ProviderConfig, logger *zap.Logger) (Provider, error) {
	switch cfg.Kind {
	case config.ProviderYahoo:
		return NewYahooClient(
			cfg.Yahoo.BaseURL,
			cfg.Yahoo.SessionURL,
			cfg.Yahoo.UserAgent,
			cfg.Yahoo.RatePerSecond,
			time.Duration(cfg.Yahoo.TimeoutSec)*time.Second,
			logger,
		), nil
	case config.ProviderFile:
		return NewFileProvider(cfg.File.Directory, logger), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, cfg.Kind)
	}
}
