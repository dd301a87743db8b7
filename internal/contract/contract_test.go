package contract

import (
	"errors"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"AAPL250620C00150000", true},
		{"A250620P12345", true},
		{"GOOGL991231C12345678", true},
		{"SPY250620P0045000", true},
		{"", false},
		{"aapl123", false},
		{"aapl250620C00150000", false},
		{"AAPLXX250620C00150000", false},
		{"AAPL25062C00150000", false},
		{"AAPL250620X00150000", false},
		{"AAPL250620C1234", false},
		{"AAPL250620C123456789", false},
		{"AAPL250620C00150000\n", false},
		{" AAPL250620C00150000", false},
		{"250620C00150000", false},
	}

	for _, tt := range tests {
		if got := Valid(tt.id); got != tt.valid {
			t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.valid)
		}

		err := Validate(tt.id)
		if tt.valid && err != nil {
			t.Errorf("Validate(%q) unexpected error: %v", tt.id, err)
		}
		if !tt.valid && !errors.Is(err, ErrInvalidTicker) {
			t.Errorf("Validate(%q) = %v, want ErrInvalidTicker", tt.id, err)
		}
	}
}

func TestUnderlying(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"AAPL250620C00150000", "AAPL"},
		{"F250620P00012500", "F"},
		{"GOOGL991231C12345678", "GOOGL"},
		// Shorter strikes are mis-extracted by the fixed strip.
		{"AAPL250620C00150", "A"},
		{"SPY250620P0045000", "SP"},
		{"A250620P12345", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Underlying(tt.id); got != tt.want {
			t.Errorf("Underlying(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestUnderlyingStripsFifteen(t *testing.T) {
	for _, id := range []string{"AAPL250620C00150000", "MSFT251219P00400000", "T260116C00025000"} {
		if !Valid(id) {
			t.Fatalf("fixture %q should be valid", id)
		}
		if got := Underlying(id); got+id[len(id)-15:] != id {
			t.Errorf("Underlying(%q) = %q does not prefix the 15 char tail", id, got)
		}
	}
}

func TestParse(t *testing.T) {
	c, err := Parse("AAPL250620C00150000")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if c.Root != "AAPL" || c.Symbol != "AAPL" {
		t.Errorf("expected root/symbol AAPL, got %s/%s", c.Root, c.Symbol)
	}
	if c.SymbolMismatch() {
		t.Error("8-digit strike should not report a mismatch")
	}
	if !c.Expiry.Equal(time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected expiry: %s", c.Expiry)
	}
	if c.Type != Call {
		t.Errorf("expected call, got %s", c.Type)
	}
	if c.Strike != 150 {
		t.Errorf("expected strike 150, got %v", c.Strike)
	}
}

func TestParse_ShortStrike(t *testing.T) {
	c, err := Parse("AAPL250620P00150")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if c.Type != Put {
		t.Errorf("expected put, got %s", c.Type)
	}
	if c.Strike != 0.15 {
		t.Errorf("expected strike 0.15, got %v", c.Strike)
	}
	if !c.SymbolMismatch() {
		t.Errorf("expected mismatch between root %s and symbol %s", c.Root, c.Symbol)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse("aapl123"); !errors.Is(err, ErrInvalidTicker) {
		t.Errorf("expected ErrInvalidTicker, got %v", err)
	}
	if _, err := Parse("AAPL251399C00150000"); !errors.Is(err, ErrInvalidExpiry) {
		t.Errorf("expected ErrInvalidExpiry, got %v", err)
	}
}

func TestTradingDaysToExpiry(t *testing.T) {
	c, err := Parse("AAPL250613C00150000")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		from time.Time
		want int
	}{
		{time.Date(2025, 6, 9, 9, 0, 0, 0, time.UTC), 4},  // Mon -> Fri
		{time.Date(2025, 6, 7, 9, 0, 0, 0, time.UTC), 5},  // Sat -> Fri
		{time.Date(2025, 6, 13, 9, 0, 0, 0, time.UTC), 0}, // expiry day
		{time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC), 0}, // already expired
	}

	for _, tt := range tests {
		if got := c.TradingDaysToExpiry(tt.from); got != tt.want {
			t.Errorf("TradingDaysToExpiry(%s) = %d, want %d", tt.from.Format("2006-01-02"), got, tt.want)
		}
	}
}
