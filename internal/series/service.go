package series

import (
	"context"

	"go.uber.org/zap"

	"github.com/dgnsrekt/deltagraph/internal/contract"
	"github.com/dgnsrekt/deltagraph/internal/market"
)

// Service runs the fetch-and-align pipeline for one identifier.
type Service struct {
	provider    market.Provider
	historyDays int
	logger      *zap.Logger
}

func NewService(provider market.Provider, historyDays int, logger *zap.Logger) *Service {
	return &Service{
		provider:    provider,
		historyDays: historyDays,
		logger:      logger,
	}
}

// Build validates identifier, fetches stock history and the first listed
// option chain for its underlying, and aligns the three price series.
func (s *Service) Build(ctx context.Context, identifier string) (*Result, error) {
	if err := contract.Validate(identifier); err != nil {
		return nil, err
	}

	symbol := contract.Underlying(identifier)
	log := s.logger.With(
		zap.String("identifier", identifier),
		zap.String("symbol", symbol),
	)

	if c, err := contract.Parse(identifier); err == nil && c.SymbolMismatch() {
		log.Warn("underlying derived by fixed-length strip differs from identifier root",
			zap.String("root", c.Root),
		)
	}

	log.Debug("fetching stock history", zap.Int("days", s.historyDays))
	bars, err := s.provider.History(ctx, symbol, s.historyDays)
	if err != nil {
		log.Error("history request failed", zap.Error(err))
		return nil, &market.ProviderError{Op: "history", Symbol: symbol, Err: err}
	}
	if len(bars) == 0 {
		log.Info("no stock price data")
		return nil, ErrNoStockData
	}

	expirations, err := s.provider.ExpirationDates(ctx, symbol)
	if err != nil {
		log.Error("expiration request failed", zap.Error(err))
		return nil, &market.ProviderError{Op: "expirations", Symbol: symbol, Err: err}
	}
	if len(expirations) == 0 {
		log.Info("no expiration dates")
		return nil, ErrNoExpirationDates
	}

	expiration := expirations[0]
	log.Debug("expiration dates available",
		zap.Strings("expirations", expirations),
		zap.String("selected", expiration),
	)

	chain, err := s.provider.OptionChain(ctx, symbol, expiration)
	if err != nil {
		log.Error("option chain request failed", zap.String("expiration", expiration), zap.Error(err))
		return nil, &market.ProviderError{Op: "option chain", Symbol: symbol, Err: err}
	}
	if chain == nil || len(chain.Calls) == 0 || len(chain.Puts) == 0 {
		log.Info("no option data", zap.String("expiration", expiration))
		return nil, ErrNoOptionData
	}

	result := Align(Closes(bars), LastPrices(chain.Calls), LastPrices(chain.Puts))

	log.Info("series aligned",
		zap.String("expiration", expiration),
		zap.Int("points", len(result.StockPrices)),
	)
	log.Debug("aligned series",
		zap.Strings("displayStockPrices", result.DisplayStockPrices),
		zap.Float64s("callPrices", result.CallPrices),
		zap.Float64s("putPrices", result.PutPrices),
	)

	return result, nil
}
