// Package openbanking provides provider-neutral data types for open banking
// integrations: link sessions, public token exchange, accounts and
// transactions as reported by an aggregator such as Plaid.
package openbanking

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// AccountType represents the type of external bank account.
type AccountType string

const (
	AccountTypeDepository AccountType = "depository"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

// BankAccount represents an external bank account linked via open banking.
type BankAccount struct {
	// AccountID is the provider-assigned unique identifier.
	AccountID string
	// Name is the account name (e.g. "Plaid Checking").
	Name string
	// OfficialName is the official institution name for this account.
	OfficialName string
	// Type is the account type.
	Type AccountType
	// Subtype provides additional classification (e.g. "checking", "savings").
	Subtype string
	// Mask is the last 2-4 digits of the account number.
	Mask string
	// Balances contains the account balance information.
	Balances AccountBalances
}

// AccountBalances represents balance information for an external account.
// Any figure may be unknown to the provider.
type AccountBalances struct {
	Available decimal.NullDecimal
	Current   decimal.NullDecimal
	Limit     decimal.NullDecimal
	// Currency is the ISO 4217 currency code, empty when the institution
	// reports an unofficial currency.
	Currency string
}

// Transaction represents a single transaction from an external account.
type Transaction struct {
	// TransactionID is the provider-assigned transaction identifier.
	TransactionID string
	// AccountID identifies the account this transaction belongs to.
	AccountID string
	// Amount is the transaction amount (positive = debit, negative = credit).
	Amount decimal.Decimal
	// Currency is the ISO 4217 currency code.
	Currency string
	// Date is the posted date in YYYY-MM-DD form.
	Date string
	// Name is the merchant or counterparty name.
	Name string
	// MerchantName is the cleaned-up merchant name.
	MerchantName string
	// Category holds the transaction categories (e.g. ["Food and Drink", "Restaurants"]).
	Category []string
	// Pending indicates if the transaction is still pending.
	Pending bool
	// PaymentChannel indicates how the transaction was made (online, in store, other).
	PaymentChannel string
}

// LinkTokenRequest scopes a new link session.
type LinkTokenRequest struct {
	// ClientUserID identifies the end user the session belongs to.
	ClientUserID string
	ClientName   string
	Products     []string
	CountryCodes []string
	Language     string
	WebhookURL   string
}

// LinkTokenResponse is returned when creating a link token for account linking.
type LinkTokenResponse struct {
	// LinkToken is the token used to initialize the link flow.
	LinkToken string
	// Expiration is when the link token expires.
	Expiration time.Time
	// RequestID is the provider's request identifier.
	RequestID string
}

// ItemAccessResponse is returned after exchanging a public token.
type ItemAccessResponse struct {
	// AccessToken is the persistent token for accessing the linked item.
	AccessToken string
	// ItemID identifies the linked item at the provider.
	ItemID string
	// RequestID is the provider's request identifier.
	RequestID string
	// Raw is the provider's exchange response body as received.
	Raw json.RawMessage
}

// AccountsResponse lists the accounts under one access token.
type AccountsResponse struct {
	Accounts  []BankAccount
	ItemID    string
	RequestID string
}

// TransactionsRequest selects a window of transactions for one access token.
type TransactionsRequest struct {
	AccessToken string
	// StartDate and EndDate are inclusive, in YYYY-MM-DD form.
	StartDate string
	EndDate   string
	// Count is the page size; Offset skips that many transactions.
	Count  int
	Offset int
}

// TransactionsResponse is one page of transactions. TotalTransactions is the
// provider's count for the whole window and may exceed len(Transactions).
type TransactionsResponse struct {
	Accounts          []BankAccount
	Transactions      []Transaction
	TotalTransactions int
	RequestID         string
}
