package series

import (
	"errors"

	"github.com/dgnsrekt/deltagraph/internal/contract"
	"github.com/dgnsrekt/deltagraph/internal/market"
)

var (
	ErrNoStockData       = errors.New("no stock price data available")
	ErrNoExpirationDates = errors.New("no expiration dates available")
	ErrNoOptionData      = errors.New("no option data found")
)

// Message returns the client-facing text for err.
func Message(err error) string {
	switch {
	case errors.Is(err, contract.ErrInvalidTicker):
		return "Invalid ticker format."
	case errors.Is(err, ErrNoStockData):
		return "No stock price data available."
	case errors.Is(err, ErrNoExpirationDates):
		return "No expiration dates available."
	case errors.Is(err, ErrNoOptionData):
		return "No option data found."
	}

	var perr *market.ProviderError
	if errors.As(err, &perr) {
		return perr.Error()
	}
	return err.Error()
}
