// Package money provides decimal monetary amounts and the inflow/outflow
// presentation rules used for aggregated bank data.
package money

import (
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"
)

var currencyCodeRe = regexp.MustCompile(`^[A-Z]{3}$`)

// Currency is an ISO 4217 currency code.
type Currency struct {
	code string
}

// NewCurrency creates a Currency after validating the code is exactly 3 uppercase letters.
func NewCurrency(code string) (Currency, error) {
	if !currencyCodeRe.MatchString(code) {
		return Currency{}, fmt.Errorf("invalid currency code %q: must be exactly 3 uppercase letters", code)
	}
	return Currency{code: code}, nil
}

// MustCurrency creates a Currency and panics on error. Intended for package-level variable
// initialization only.
func MustCurrency(code string) Currency {
	c, err := NewCurrency(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Code returns the ISO 4217 currency code. The zero Currency has an empty code.
func (c Currency) Code() string {
	return c.code
}

// String returns the currency code.
func (c Currency) String() string {
	return c.code
}

// USD is the default currency reported by US aggregators.
var USD = MustCurrency("USD")

// Flow classifies a signed provider amount from the account holder's point of view.
type Flow string

const (
	// FlowInflow is money entering the account (credit). Providers report it as a negative amount.
	FlowInflow Flow = "inflow"
	// FlowOutflow is money leaving the account (debit). Providers report it as a positive amount.
	FlowOutflow Flow = "outflow"
)

// Money is an immutable monetary amount. The currency may be unknown when the
// provider only reports an unofficial currency code.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// New creates a Money value from a decimal amount and currency.
func New(amount decimal.Decimal, currency Currency) Money {
	return Money{amount: amount, currency: currency}
}

// NewFromString parses an amount string and currency code into a Money value.
func NewFromString(amount string, currency string) (Money, error) {
	cur, err := NewCurrency(currency)
	if err != nil {
		return Money{}, fmt.Errorf("invalid currency: %w", err)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	return Money{amount: d, currency: cur}, nil
}

// FromProvider builds a Money value from an aggregator amount. An empty or
// malformed currency code yields a Money without currency instead of failing,
// since aggregators omit the ISO code for some institutions.
func FromProvider(amount decimal.Decimal, currencyCode string) Money {
	cur, err := NewCurrency(currencyCode)
	if err != nil {
		return Money{amount: amount}
	}
	return Money{amount: amount, currency: cur}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency.
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if the amount is strictly less than zero.
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Abs returns m with the absolute value of the amount.
func (m Money) Abs() Money {
	return Money{amount: m.amount.Abs(), currency: m.currency}
}

// Flow reports the direction of a provider-signed amount: negative amounts
// are inflows, zero and positive amounts are outflows.
func (m Money) Flow() Flow {
	if m.amount.IsNegative() {
		return FlowInflow
	}
	return FlowOutflow
}

// Display returns the unsigned amount with two decimal places, for example
// "42.50" for a provider amount of -42.5.
func (m Money) Display() string {
	return m.amount.Abs().StringFixed(2)
}

// Equal returns true if both the amount and currency of m and other are equal.
func (m Money) Equal(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String formats the Money value as "<amount> <currency>", for example "-42.50 USD".
func (m Money) String() string {
	if m.currency.code == "" {
		return m.amount.StringFixed(2)
	}
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency.Code())
}
