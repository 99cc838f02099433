package model

import (
	"fmt"
	"time"

	"github.com/K4nnonn/FlowSightFi/pkg/money"
	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
)

// TransactionRecord is a read-only projection of one provider transaction.
// Amount keeps the provider sign: negative is an inflow, positive an outflow.
type TransactionRecord struct {
	TransactionID  string
	AccountID      string
	Name           string
	MerchantName   string
	Date           string
	Amount         money.Money
	Pending        bool
	Category       []string
	PaymentChannel string
}

// Flow reports whether the transaction moved money into or out of the account.
func (t TransactionRecord) Flow() money.Flow {
	return t.Amount.Flow()
}

// DisplayAmount is the unsigned amount shown next to the flow direction.
func (t TransactionRecord) DisplayAmount() string {
	return t.Amount.Display()
}

// NewTransactionRecord validates a provider transaction. Entries without a
// transaction id, an account id, or a YYYY-MM-DD date are rejected.
func NewTransactionRecord(tx openbanking.Transaction) (TransactionRecord, error) {
	if tx.TransactionID == "" {
		return TransactionRecord{}, fmt.Errorf("%w: transaction without transaction_id", ErrMalformedProviderData)
	}
	if tx.AccountID == "" {
		return TransactionRecord{}, fmt.Errorf("%w: transaction %s without account_id", ErrMalformedProviderData, tx.TransactionID)
	}
	if _, err := time.Parse(DateLayout, tx.Date); err != nil {
		return TransactionRecord{}, fmt.Errorf("%w: transaction %s has date %q", ErrMalformedProviderData, tx.TransactionID, tx.Date)
	}
	return TransactionRecord{
		TransactionID:  tx.TransactionID,
		AccountID:      tx.AccountID,
		Name:           tx.Name,
		MerchantName:   tx.MerchantName,
		Date:           tx.Date,
		Amount:         money.FromProvider(tx.Amount, tx.Currency),
		Pending:        tx.Pending,
		Category:       tx.Category,
		PaymentChannel: tx.PaymentChannel,
	}, nil
}

// NewTransactionRecords validates every entry and fails on the first malformed one.
func NewTransactionRecords(txs []openbanking.Transaction) ([]TransactionRecord, error) {
	out := make([]TransactionRecord, 0, len(txs))
	for _, tx := range txs {
		r, err := NewTransactionRecord(tx)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
