package plaid

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/K4nnonn/FlowSightFi/internal/domain/port"
	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
)

// StubProvider is a deterministic in-process provider for local development
// (PLAID_ENV=stub). Tokens are derived from their inputs so repeated runs
// produce the same ids.
type StubProvider struct {
	now func() time.Time
}

var _ port.AggregationProvider = (*StubProvider)(nil)

// NewStubProvider creates a StubProvider. A nil clock uses time.Now.
func NewStubProvider(now func() time.Time) *StubProvider {
	if now == nil {
		now = time.Now
	}
	return &StubProvider{now: now}
}

func (s *StubProvider) CreateLinkSession(_ context.Context, req openbanking.LinkTokenRequest) (*openbanking.LinkTokenResponse, error) {
	token := fmt.Sprintf("link-stub-%s", hashShort(req.ClientUserID))
	return &openbanking.LinkTokenResponse{
		LinkToken:  token,
		Expiration: s.now().UTC().Add(4 * time.Hour),
		RequestID:  fmt.Sprintf("req-%s", hashShort(token)),
	}, nil
}

func (s *StubProvider) ExchangePublicToken(_ context.Context, publicToken string) (*openbanking.ItemAccessResponse, error) {
	resp := exchangeResponse{
		AccessToken: fmt.Sprintf("access-stub-%s", hashShort(publicToken)),
		ItemID:      fmt.Sprintf("item-stub-%s", hashShort(publicToken)),
		RequestID:   fmt.Sprintf("req-%s", hashShort("exchange"+publicToken)),
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return &openbanking.ItemAccessResponse{
		AccessToken: resp.AccessToken,
		ItemID:      resp.ItemID,
		RequestID:   resp.RequestID,
		Raw:         raw,
	}, nil
}

func (s *StubProvider) ListAccounts(_ context.Context, accessToken string) (*openbanking.AccountsResponse, error) {
	return &openbanking.AccountsResponse{
		Accounts:  stubAccounts(accessToken),
		ItemID:    fmt.Sprintf("item-stub-%s", hashShort(accessToken)),
		RequestID: fmt.Sprintf("req-%s", hashShort("accounts"+accessToken)),
	}, nil
}

func (s *StubProvider) ListTransactions(_ context.Context, req openbanking.TransactionsRequest) (*openbanking.TransactionsResponse, error) {
	accounts := stubAccounts(req.AccessToken)
	checking := accounts[0].AccountID

	all := []openbanking.Transaction{
		{
			TransactionID:  "txn-stub-001",
			AccountID:      checking,
			Amount:         decimal.RequireFromString("12.50"),
			Currency:       "USD",
			Date:           req.EndDate,
			Name:           "Coffee Shop",
			MerchantName:   "Blue Bottle Coffee",
			Category:       []string{"Food and Drink", "Coffee Shop"},
			PaymentChannel: "in store",
		},
		{
			TransactionID:  "txn-stub-002",
			AccountID:      checking,
			Amount:         decimal.RequireFromString("-2500.00"),
			Currency:       "USD",
			Date:           req.StartDate,
			Name:           "ACME Payroll",
			Category:       []string{"Transfer", "Payroll"},
			PaymentChannel: "other",
		},
	}

	page := all
	if req.Offset >= len(page) {
		page = nil
	} else {
		page = page[req.Offset:]
	}
	if req.Count > 0 && len(page) > req.Count {
		page = page[:req.Count]
	}

	return &openbanking.TransactionsResponse{
		Accounts:          accounts,
		Transactions:      page,
		TotalTransactions: len(all),
		RequestID:         fmt.Sprintf("req-%s", hashShort("transactions"+req.AccessToken)),
	}, nil
}

func stubAccounts(accessToken string) []openbanking.BankAccount {
	h := hashShort(accessToken)
	return []openbanking.BankAccount{
		{
			AccountID:    fmt.Sprintf("acct-%s-1", h),
			Name:         "Plaid Checking",
			OfficialName: "Plaid Gold Standard 0% Interest Checking",
			Type:         openbanking.AccountTypeDepository,
			Subtype:      "checking",
			Mask:         "0000",
			Balances: openbanking.AccountBalances{
				Available: decimal.NewNullDecimal(decimal.RequireFromString("1000.00")),
				Current:   decimal.NewNullDecimal(decimal.RequireFromString("1100.00")),
				Currency:  "USD",
			},
		},
		{
			AccountID: fmt.Sprintf("acct-%s-2", h),
			Name:      "Plaid Credit Card",
			Type:      openbanking.AccountTypeCredit,
			Subtype:   "credit card",
			Mask:      "3333",
			Balances: openbanking.AccountBalances{
				Current:  decimal.NewNullDecimal(decimal.RequireFromString("410.00")),
				Limit:    decimal.NewNullDecimal(decimal.RequireFromString("2000.00")),
				Currency: "USD",
			},
		},
	}
}

// hashShort returns the first 8 hex characters of a SHA-256 hash.
func hashShort(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:4])
}
