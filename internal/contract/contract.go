package contract

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/scmhub/calendar"
)

// identifierPattern matches OCC-style option identifiers: root, YYMMDD, C|P, scaled strike.
var identifierPattern = regexp.MustCompile(`^([A-Z]{1,5})(\d{6})([CP])(\d{5,8})$`)

// suffixLen is the length of the expiry+type+strike tail assumed by Underlying.
// Only identifiers with an 8-digit strike actually have a tail this long.
const suffixLen = 15

type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// Contract is a decoded option identifier.
type Contract struct {
	Identifier string
	Root       string // root as matched by the identifier pattern
	Symbol     string // underlying as derived by Underlying
	Expiry     time.Time
	Type       OptionType
	Strike     float64
}

// Valid reports whether id fully matches the identifier pattern.
func Valid(id string) bool {
	return identifierPattern.MatchString(id)
}

// Validate returns ErrInvalidTicker for a missing, empty or malformed identifier.
func Validate(id string) error {
	if id == "" || !Valid(id) {
		return ErrInvalidTicker
	}
	return nil
}

// Underlying strips the fixed 15 character tail from id.
func Underlying(id string) string {
	if len(id) <= suffixLen {
		return ""
	}
	return id[:len(id)-suffixLen]
}

// Parse validates and decodes id.
func Parse(id string) (Contract, error) {
	m := identifierPattern.FindStringSubmatch(id)
	if m == nil {
		return Contract{}, ErrInvalidTicker
	}

	expiry, err := time.Parse("060102", m[2])
	if err != nil {
		return Contract{}, fmt.Errorf("%w: %s", ErrInvalidExpiry, m[2])
	}

	strike, err := strconv.ParseInt(m[4], 10, 64)
	if err != nil {
		return Contract{}, fmt.Errorf("parsing strike %q: %w", m[4], err)
	}

	optType := Call
	if m[3] == "P" {
		optType = Put
	}

	return Contract{
		Identifier: id,
		Root:       m[1],
		Symbol:     Underlying(id),
		Expiry:     expiry,
		Type:       optType,
		Strike:     float64(strike) / 1000,
	}, nil
}

// SymbolMismatch reports whether the 15 character strip disagrees with the
// pattern-matched root, which happens for strikes shorter than 8 digits.
func (c Contract) SymbolMismatch() bool {
	return c.Root != c.Symbol
}

// TradingDaysToExpiry counts NYSE business days in (from, expiry].
func (c Contract) TradingDaysToExpiry(from time.Time) int {
	nyse := calendar.XNYS()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 12, 0, 0, 0, loc)
	end := time.Date(c.Expiry.Year(), c.Expiry.Month(), c.Expiry.Day(), 12, 0, 0, 0, loc)

	days := 0
	for d := start.AddDate(0, 0, 1); !d.After(end); d = d.AddDate(0, 0, 1) {
		if nyse.IsBusinessDay(d) {
			days++
		}
	}
	return days
}
