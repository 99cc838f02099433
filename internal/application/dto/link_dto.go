package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/K4nnonn/FlowSightFi/internal/domain/model"
)

// Actions accepted by the link endpoint.
const (
	ActionCreateLinkToken     = "create_link_token"
	ActionExchangePublicToken = "exchange_public_token"
	ActionGetAccounts         = "get_accounts"
	ActionGetTransactions     = "get_transactions"
)

// LinkRequest is the body of every call to the link endpoint. Action selects
// the flow; the other fields are read only by the flows that need them.
type LinkRequest struct {
	Action      string `json:"action"`
	PublicToken string `json:"public_token,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	UserID      string `json:"user_id,omitempty"`
}

// CreateLinkTokenRequest is the DTO for starting a link session.
type CreateLinkTokenRequest struct {
	UserID string
}

// CreateLinkTokenResponse carries the short-lived token the client uses to open the bank link widget.
type CreateLinkTokenResponse struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
	RequestID  string    `json:"request_id,omitempty"`
	UserID     string    `json:"user_id"`
}

// ExchangePublicTokenRequest is the DTO for completing a link session.
type ExchangePublicTokenRequest struct {
	PublicToken string
	UserID      string
}

// ExchangePublicTokenResponse returns the durable access credential. This is
// the only place the credential ever leaves the service.
type ExchangePublicTokenResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	UserID      string `json:"user_id"`
}

// GetAccountsRequest is the DTO for fetching linked accounts.
type GetAccountsRequest struct {
	AccessToken string
}

// AccountsResponse lists accounts fetched fresh from the provider.
type AccountsResponse struct {
	Accounts  []AccountDTO `json:"accounts"`
	RequestID string       `json:"request_id,omitempty"`
}

// GetTransactionsRequest is the DTO for fetching transactions. Empty dates
// fall back to the service defaults.
type GetTransactionsRequest struct {
	AccessToken string
	StartDate   string
	EndDate     string
}

// TransactionsResponse is one page of transactions. Truncated reports that the
// provider holds more transactions in the window than were returned.
type TransactionsResponse struct {
	Accounts             []AccountDTO     `json:"accounts"`
	Transactions         []TransactionDTO `json:"transactions"`
	StartDate            string           `json:"start_date"`
	EndDate              string           `json:"end_date"`
	TotalTransactions    int              `json:"total_transactions"`
	ReturnedTransactions int              `json:"returned_transactions"`
	Truncated            bool             `json:"truncated"`
	RequestID            string           `json:"request_id,omitempty"`
}

// AccountDTO is the wire form of an account snapshot.
type AccountDTO struct {
	AccountID    string      `json:"account_id"`
	Name         string      `json:"name"`
	OfficialName string      `json:"official_name,omitempty"`
	Type         string      `json:"type"`
	Subtype      string      `json:"subtype"`
	Mask         string      `json:"mask,omitempty"`
	Balances     BalancesDTO `json:"balances"`
}

// BalancesDTO holds nullable balance figures as JSON numbers.
type BalancesDTO struct {
	Available       *json.Number `json:"available"`
	Current         *json.Number `json:"current"`
	Limit           *json.Number `json:"limit"`
	ISOCurrencyCode string       `json:"iso_currency_code,omitempty"`
}

// TransactionDTO is the wire form of a transaction. Amount keeps the provider
// sign; Direction and DisplayAmount are the unsigned presentation.
type TransactionDTO struct {
	TransactionID   string      `json:"transaction_id"`
	AccountID       string      `json:"account_id"`
	Name            string      `json:"name"`
	MerchantName    string      `json:"merchant_name,omitempty"`
	Date            string      `json:"date"`
	Amount          json.Number `json:"amount"`
	ISOCurrencyCode string      `json:"iso_currency_code,omitempty"`
	Pending         bool        `json:"pending"`
	Category        []string    `json:"category,omitempty"`
	PaymentChannel  string      `json:"payment_channel,omitempty"`
	Direction       string      `json:"direction"`
	DisplayAmount   string      `json:"display_amount"`
}

// AccountsFromModel converts account snapshots to their wire form.
func AccountsFromModel(accounts []model.AccountSnapshot) []AccountDTO {
	out := make([]AccountDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, AccountDTO{
			AccountID:    a.AccountID,
			Name:         a.Name,
			OfficialName: a.OfficialName,
			Type:         a.Type,
			Subtype:      a.Subtype,
			Mask:         a.Mask,
			Balances: BalancesDTO{
				Available:       number(a.Balances.Available),
				Current:         number(a.Balances.Current),
				Limit:           number(a.Balances.Limit),
				ISOCurrencyCode: a.Balances.Currency,
			},
		})
	}
	return out
}

// TransactionsFromModel converts transaction records to their wire form.
func TransactionsFromModel(txs []model.TransactionRecord) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionDTO{
			TransactionID:   tx.TransactionID,
			AccountID:       tx.AccountID,
			Name:            tx.Name,
			MerchantName:    tx.MerchantName,
			Date:            tx.Date,
			Amount:          json.Number(tx.Amount.Amount().String()),
			ISOCurrencyCode: tx.Amount.Currency().Code(),
			Pending:         tx.Pending,
			Category:        tx.Category,
			PaymentChannel:  tx.PaymentChannel,
			Direction:       string(tx.Flow()),
			DisplayAmount:   tx.DisplayAmount(),
		})
	}
	return out
}

func number(d *decimal.Decimal) *json.Number {
	if d == nil {
		return nil
	}
	n := json.Number(d.String())
	return &n
}
