package market

import "time"

// Bar is a daily bar. Close is nil when the provider has no value for the day.
type Bar struct {
	Date  time.Time `json:"date"`
	Close *float64  `json:"close"`
}

// OptionQuote is a single row of an option chain.
type OptionQuote struct {
	ContractSymbol string   `json:"contract_symbol"`
	Strike         float64  `json:"strike"`
	LastPrice      *float64 `json:"last_price"`
}

// Chain holds both sides of an option chain for one expiration.
type Chain struct {
	Expiration string        `json:"expiration"`
	Calls      []OptionQuote `json:"calls"`
	Puts       []OptionQuote `json:"puts"`
}

// Snapshot is a captured set of provider responses for one symbol.
type Snapshot struct {
	CaptureID   string           `json:"capture_id"`
	Symbol      string           `json:"symbol"`
	CapturedAt  time.Time        `json:"captured_at"`
	History     []Bar            `json:"history"`
	Expirations []string         `json:"expirations"`
	Chains      map[string]Chain `json:"chains"`
}

// ExpirationLayout is the date format used for expiration dates.
const ExpirationLayout = "2006-01-02"
