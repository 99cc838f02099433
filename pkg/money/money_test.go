package money

import (
	"testing"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Currency
// ---------------------------------------------------------------------------

func TestNewCurrency_Valid(t *testing.T) {
	tests := []string{"USD", "EUR", "GBP", "CAD"}
	for _, code := range tests {
		c, err := NewCurrency(code)
		if err != nil {
			t.Errorf("NewCurrency(%q) unexpected error: %v", code, err)
		}
		if c.Code() != code {
			t.Errorf("NewCurrency(%q).Code() = %q, want %q", code, c.Code(), code)
		}
	}
}

func TestNewCurrency_Invalid(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"empty", ""},
		{"lowercase", "usd"},
		{"too short", "US"},
		{"too long", "USDD"},
		{"digits", "US1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewCurrency(tt.code); err == nil {
				t.Errorf("NewCurrency(%q) expected error, got nil", tt.code)
			}
		})
	}
}

func TestMustCurrency_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("MustCurrency(\"bad\") did not panic")
		}
	}()
	MustCurrency("bad")
}

// ---------------------------------------------------------------------------
// Construction
// ---------------------------------------------------------------------------

func TestNewFromString(t *testing.T) {
	m, err := NewFromString("-42.50", "USD")
	if err != nil {
		t.Fatalf("NewFromString() error = %v", err)
	}
	if !m.Amount().Equal(decimal.RequireFromString("-42.5")) {
		t.Errorf("Amount() = %s, want -42.5", m.Amount())
	}
	if m.Currency() != USD {
		t.Errorf("Currency() = %s, want USD", m.Currency())
	}

	if _, err := NewFromString("abc", "USD"); err == nil {
		t.Error("NewFromString(\"abc\") expected error, got nil")
	}
	if _, err := NewFromString("1.00", "usd"); err == nil {
		t.Error("NewFromString with lowercase currency expected error, got nil")
	}
}

func TestFromProvider_UnknownCurrency(t *testing.T) {
	m := FromProvider(decimal.NewFromInt(5), "")
	if m.Currency().Code() != "" {
		t.Errorf("Currency().Code() = %q, want empty", m.Currency().Code())
	}
	if m.String() != "5.00" {
		t.Errorf("String() = %q, want %q", m.String(), "5.00")
	}
}

// ---------------------------------------------------------------------------
// Flow and display
// ---------------------------------------------------------------------------

func TestFlowAndDisplay(t *testing.T) {
	tests := []struct {
		name        string
		amount      string
		wantFlow    Flow
		wantDisplay string
	}{
		{name: "negative amount is an inflow", amount: "-42.50", wantFlow: FlowInflow, wantDisplay: "42.50"},
		{name: "positive amount is an outflow", amount: "17.25", wantFlow: FlowOutflow, wantDisplay: "17.25"},
		{name: "zero is an outflow", amount: "0", wantFlow: FlowOutflow, wantDisplay: "0.00"},
		{name: "rounds to cents", amount: "-3.005", wantFlow: FlowInflow, wantDisplay: "3.01"},
		{name: "whole number", amount: "1200", wantFlow: FlowOutflow, wantDisplay: "1200.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := FromProvider(decimal.RequireFromString(tt.amount), "USD")
			if got := m.Flow(); got != tt.wantFlow {
				t.Errorf("Flow() = %q, want %q", got, tt.wantFlow)
			}
			if got := m.Display(); got != tt.wantDisplay {
				t.Errorf("Display() = %q, want %q", got, tt.wantDisplay)
			}
		})
	}
}

func TestAbs_DoesNotMutate(t *testing.T) {
	original := New(decimal.NewFromInt(-10), USD)
	abs := original.Abs()
	if !abs.Amount().Equal(decimal.NewFromInt(10)) {
		t.Errorf("Abs() = %s, want 10", abs.Amount())
	}
	if !original.Amount().Equal(decimal.NewFromInt(-10)) {
		t.Error("Abs mutated the original Money value")
	}
	if !original.IsNegative() || original.IsZero() {
		t.Error("original should remain negative and non-zero")
	}
}

func TestEqual(t *testing.T) {
	a := New(decimal.RequireFromString("1.50"), USD)
	b := New(decimal.RequireFromString("1.5"), USD)
	if !a.Equal(b) {
		t.Error("1.50 USD should equal 1.5 USD")
	}
	c := FromProvider(decimal.RequireFromString("1.5"), "")
	if a.Equal(c) {
		t.Error("amounts with different currencies should not be equal")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		amount decimal.Decimal
		want   string
	}{
		{decimal.NewFromInt(100), "100.00 USD"},
		{decimal.NewFromFloat(-42.5), "-42.50 USD"},
		{decimal.Zero, "0.00 USD"},
	}
	for _, tt := range tests {
		if got := New(tt.amount, USD).String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
