package model

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
)

// ErrMalformedProviderData marks provider entries that fail boundary validation.
var ErrMalformedProviderData = errors.New("malformed provider data")

// Balances holds the balance figures of an account snapshot. Nil means the
// provider did not report the figure.
type Balances struct {
	Available *decimal.Decimal
	Current   *decimal.Decimal
	Limit     *decimal.Decimal
	Currency  string
}

// AccountSnapshot is a read-only projection of one provider account, fetched
// fresh on every request.
type AccountSnapshot struct {
	AccountID    string
	Name         string
	OfficialName string
	Type         string
	Subtype      string
	Mask         string
	Balances     Balances
}

// NewAccountSnapshot validates a provider account. An entry without an
// identifier is rejected.
func NewAccountSnapshot(a openbanking.BankAccount) (AccountSnapshot, error) {
	if a.AccountID == "" {
		return AccountSnapshot{}, fmt.Errorf("%w: account without account_id", ErrMalformedProviderData)
	}
	return AccountSnapshot{
		AccountID:    a.AccountID,
		Name:         a.Name,
		OfficialName: a.OfficialName,
		Type:         string(a.Type),
		Subtype:      a.Subtype,
		Mask:         a.Mask,
		Balances: Balances{
			Available: nullable(a.Balances.Available),
			Current:   nullable(a.Balances.Current),
			Limit:     nullable(a.Balances.Limit),
			Currency:  a.Balances.Currency,
		},
	}, nil
}

// NewAccountSnapshots validates every entry and fails on the first malformed one.
func NewAccountSnapshots(accounts []openbanking.BankAccount) ([]AccountSnapshot, error) {
	out := make([]AccountSnapshot, 0, len(accounts))
	for i, a := range accounts {
		s, err := NewAccountSnapshot(a)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}
