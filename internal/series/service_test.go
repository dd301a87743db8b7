package series

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/dgnsrekt/deltagraph/internal/contract"
	"github.com/dgnsrekt/deltagraph/internal/market"
)

type fakeProvider struct {
	bars        []market.Bar
	expirations []string
	chains      map[string]*market.Chain

	historyErr error
	expiryErr  error
	chainErr   error

	symbols       []string
	requestedDays int
	chainRequests []string
}

func (f *fakeProvider) History(ctx context.Context, symbol string, days int) ([]market.Bar, error) {
	f.symbols = append(f.symbols, symbol)
	f.requestedDays = days
	return f.bars, f.historyErr
}

func (f *fakeProvider) ExpirationDates(ctx context.Context, symbol string) ([]string, error) {
	return f.expirations, f.expiryErr
}

func (f *fakeProvider) OptionChain(ctx context.Context, symbol, expiration string) (*market.Chain, error) {
	f.chainRequests = append(f.chainRequests, expiration)
	if f.chainErr != nil {
		return nil, f.chainErr
	}
	return f.chains[expiration], nil
}

func bars(closes ...float64) []market.Bar {
	out := make([]market.Bar, len(closes))
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		out[i] = market.Bar{Date: start.AddDate(0, 0, i), Close: ptr(c)}
	}
	return out
}

func quotes(strikeStart float64, prices ...float64) []market.OptionQuote {
	out := make([]market.OptionQuote, len(prices))
	for i, p := range prices {
		out[i] = market.OptionQuote{Strike: strikeStart + float64(i)*5, LastPrice: ptr(p)}
	}
	return out
}

func scenarioProvider() *fakeProvider {
	return &fakeProvider{
		bars:        bars(101.0, 99.5, 103.2),
		expirations: []string{"2025-06-20", "2025-06-27"},
		chains: map[string]*market.Chain{
			"2025-06-20": {
				Expiration: "2025-06-20",
				Calls:      quotes(140, 5.0, 6.0),
				Puts:       quotes(140, 1.0, 1.1, 1.2, 1.3),
			},
			"2025-06-27": {
				Expiration: "2025-06-27",
				Calls:      quotes(140, 50, 60, 70),
				Puts:       quotes(140, 10, 20, 30),
			},
		},
	}
}

func TestBuild_Success(t *testing.T) {
	provider := scenarioProvider()
	svc := NewService(provider, 30, zaptest.NewLogger(t))

	got, err := svc.Build(context.Background(), "AAPL250620C00150000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := &Result{
		StockPrices:        []float64{99.5, 101.0},
		DisplayStockPrices: []string{"99.50", "101.00"},
		CallPrices:         []float64{6.0, 5.0},
		PutPrices:          []float64{1.1, 1.0},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Build() = %+v, want %+v", got, want)
	}

	if !reflect.DeepEqual(provider.symbols, []string{"AAPL"}) {
		t.Errorf("expected history request for AAPL, got %v", provider.symbols)
	}
	if provider.requestedDays != 30 {
		t.Errorf("expected 30 days of history, got %d", provider.requestedDays)
	}
	if !reflect.DeepEqual(provider.chainRequests, []string{"2025-06-20"}) {
		t.Errorf("expected only the first listed expiration, got %v", provider.chainRequests)
	}
}

func TestBuild_UsesFirstListedExpiration(t *testing.T) {
	provider := scenarioProvider()
	provider.expirations = []string{"2025-06-27", "2025-06-20"}
	svc := NewService(provider, 30, zaptest.NewLogger(t))

	got, err := svc.Build(context.Background(), "AAPL250620C00150000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(provider.chainRequests, []string{"2025-06-27"}) {
		t.Errorf("expected first listed expiration, got %v", provider.chainRequests)
	}
	if !reflect.DeepEqual(got.CallPrices, []float64{60, 50, 70}) {
		t.Errorf("unexpected call prices: %v", got.CallPrices)
	}
}

func TestBuild_InvalidTicker(t *testing.T) {
	provider := scenarioProvider()
	svc := NewService(provider, 30, zaptest.NewLogger(t))

	_, err := svc.Build(context.Background(), "aapl123")
	if !errors.Is(err, contract.ErrInvalidTicker) {
		t.Fatalf("expected ErrInvalidTicker, got %v", err)
	}
	if len(provider.symbols) != 0 {
		t.Error("provider must not be called for an invalid identifier")
	}
}

func TestBuild_EmptyResponses(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *fakeProvider)
		wantErr error
		wantMsg string
	}{
		{
			name:    "no history",
			mutate:  func(p *fakeProvider) { p.bars = nil },
			wantErr: ErrNoStockData,
			wantMsg: "No stock price data available.",
		},
		{
			name:    "no expirations",
			mutate:  func(p *fakeProvider) { p.expirations = []string{} },
			wantErr: ErrNoExpirationDates,
			wantMsg: "No expiration dates available.",
		},
		{
			name: "no calls",
			mutate: func(p *fakeProvider) {
				p.chains["2025-06-20"].Calls = nil
			},
			wantErr: ErrNoOptionData,
			wantMsg: "No option data found.",
		},
		{
			name: "no puts",
			mutate: func(p *fakeProvider) {
				p.chains["2025-06-20"].Puts = []market.OptionQuote{}
			},
			wantErr: ErrNoOptionData,
			wantMsg: "No option data found.",
		},
		{
			name:    "missing chain",
			mutate:  func(p *fakeProvider) { delete(p.chains, "2025-06-20") },
			wantErr: ErrNoOptionData,
			wantMsg: "No option data found.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := scenarioProvider()
			tt.mutate(provider)
			svc := NewService(provider, 30, zaptest.NewLogger(t))

			result, err := svc.Build(context.Background(), "AAPL250620C00150000")
			if result != nil {
				t.Errorf("expected no partial result, got %+v", result)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if msg := Message(err); msg != tt.wantMsg {
				t.Errorf("Message() = %q, want %q", msg, tt.wantMsg)
			}
		})
	}
}

func TestBuild_ProviderFailure(t *testing.T) {
	netErr := errors.New("dial tcp: lookup query2.finance.yahoo.com: no such host")

	tests := []struct {
		name   string
		mutate func(p *fakeProvider)
		op     string
	}{
		{"history", func(p *fakeProvider) { p.historyErr = netErr }, "history"},
		{"expirations", func(p *fakeProvider) { p.expiryErr = netErr }, "expirations"},
		{"chain", func(p *fakeProvider) { p.chainErr = netErr }, "option chain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := scenarioProvider()
			tt.mutate(provider)
			svc := NewService(provider, 30, zaptest.NewLogger(t))

			_, err := svc.Build(context.Background(), "AAPL250620C00150000")

			var perr *market.ProviderError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ProviderError, got %T: %v", err, err)
			}
			if perr.Op != tt.op || perr.Symbol != "AAPL" {
				t.Errorf("unexpected op/symbol: %s/%s", perr.Op, perr.Symbol)
			}
			if !errors.Is(err, netErr) {
				t.Error("ProviderError should unwrap to the provider error")
			}
			if msg := Message(err); msg != netErr.Error() {
				t.Errorf("Message() = %q, want raw provider text %q", msg, netErr.Error())
			}
		})
	}
}

func TestBuild_AllClosesMissing(t *testing.T) {
	provider := scenarioProvider()
	provider.bars = []market.Bar{{Date: time.Now()}, {Date: time.Now()}}
	svc := NewService(provider, 30, zaptest.NewLogger(t))

	got, err := svc.Build(context.Background(), "AAPL250620C00150000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.StockPrices) != 0 || len(got.CallPrices) != 0 || len(got.PutPrices) != 0 {
		t.Errorf("expected empty aligned series, got %+v", got)
	}
}
