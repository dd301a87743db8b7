package series

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"github.com/dgnsrekt/deltagraph/internal/market"
)

// Result is the chart payload. All four slices share one length and are index-aligned.
type Result struct {
	StockPrices        []float64 `json:"stock_prices"`
	DisplayStockPrices []string  `json:"display_stock_prices"`
	CallPrices         []float64 `json:"call_prices"`
	PutPrices          []float64 `json:"put_prices"`
}

// Align truncates the three series to a common length and orders them by
// ascending stock price. Positions are matched by index only.
func Align(stock, calls, puts []float64) *Result {
	n := min(len(stock), len(calls), len(puts))
	stock, calls, puts = stock[:n], calls[:n], puts[:n]

	perm := SortPermutation(stock)
	sorted := Permute(stock, perm)

	return &Result{
		StockPrices:        sorted,
		DisplayStockPrices: FormatPrices(sorted),
		CallPrices:         Permute(calls, perm),
		PutPrices:          Permute(puts, perm),
	}
}

// SortPermutation returns the indexes that order xs ascending. Equal values keep
// their original relative order.
func SortPermutation(xs []float64) []int {
	dst := make([]float64, len(xs))
	copy(dst, xs)
	perm := make([]int, len(xs))
	floats.ArgsortStable(dst, perm)
	return perm
}

// Permute returns xs reordered so that out[i] = xs[perm[i]].
func Permute(xs []float64, perm []int) []float64 {
	out := make([]float64, len(perm))
	for i, p := range perm {
		out[i] = xs[p]
	}
	return out
}

// FormatPrices renders each price with exactly two decimals, rounding half away
// from zero on the shortest decimal form of the float (3.005 -> "3.01").
func FormatPrices(xs []float64) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = decimal.NewFromFloat(x).StringFixed(2)
	}
	return out
}

// Closes extracts closing prices in bar order, dropping missing values.
func Closes(bars []market.Bar) []float64 {
	out := make([]float64, 0, len(bars))
	for _, b := range bars {
		if present(b.Close) {
			out = append(out, *b.Close)
		}
	}
	return out
}

// LastPrices orders quotes by strike and extracts last-traded prices, dropping
// missing values. The input slice is not modified.
func LastPrices(quotes []market.OptionQuote) []float64 {
	sorted := make([]market.OptionQuote, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Strike < sorted[j].Strike
	})

	out := make([]float64, 0, len(sorted))
	for _, q := range sorted {
		if present(q.LastPrice) {
			out = append(out, *q.LastPrice)
		}
	}
	return out
}

func present(v *float64) bool {
	return v != nil && !math.IsNaN(*v)
}
