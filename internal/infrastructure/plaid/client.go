// Package plaid adapts the Plaid REST API to the aggregation provider port.
package plaid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/K4nnonn/FlowSightFi/internal/domain/port"
	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
)

const (
	linkTokenCreatePath = "/link/token/create"
	exchangePath        = "/item/public_token/exchange"
	accountsPath        = "/accounts/get"
	transactionsPath    = "/transactions/get"

	defaultTimeout  = 15 * time.Second
	maxResponseSize = 10 << 20
)

// Client talks to one Plaid environment over HTTPS.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

var _ port.AggregationProvider = (*Client)(nil)

// NewClient creates a Plaid client. A nil httpClient gets a client with a 15s timeout.
func NewClient(cfg openbanking.PlaidConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.ResolvedBaseURL(),
		clientID:   cfg.ClientID,
		secret:     cfg.Secret,
	}
}

// APIError is an error body returned by Plaid. It is logged by the caller and
// never forwarded to end users.
type APIError struct {
	StatusCode   int    `json:"-"`
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	RequestID    string `json:"request_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("plaid: %d %s/%s: %s (request_id=%s)", e.StatusCode, e.ErrorType, e.ErrorCode, e.ErrorMessage, e.RequestID)
}

// Retryable reports whether Plaid classifies the failure as transient.
func (e *APIError) Retryable() bool {
	return e.StatusCode >= 500 || e.ErrorType == "RATE_LIMIT_EXCEEDED" || e.ErrorType == "API_ERROR"
}

// --- wire types ---

type credentials struct {
	ClientID string `json:"client_id"`
	Secret   string `json:"secret"`
}

type linkTokenUser struct {
	ClientUserID string `json:"client_user_id"`
}

type linkTokenCreateRequest struct {
	credentials
	ClientName   string        `json:"client_name"`
	User         linkTokenUser `json:"user"`
	Products     []string      `json:"products"`
	CountryCodes []string      `json:"country_codes"`
	Language     string        `json:"language"`
	Webhook      string        `json:"webhook,omitempty"`
}

type linkTokenCreateResponse struct {
	LinkToken  string    `json:"link_token"`
	Expiration time.Time `json:"expiration"`
	RequestID  string    `json:"request_id"`
}

type exchangeRequest struct {
	credentials
	PublicToken string `json:"public_token"`
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
	RequestID   string `json:"request_id"`
}

type accessTokenRequest struct {
	credentials
	AccessToken string `json:"access_token"`
}

type transactionsOptions struct {
	Count  int `json:"count,omitempty"`
	Offset int `json:"offset,omitempty"`
}

type transactionsRequest struct {
	credentials
	AccessToken string              `json:"access_token"`
	StartDate   string              `json:"start_date"`
	EndDate     string              `json:"end_date"`
	Options     transactionsOptions `json:"options"`
}

type wireBalances struct {
	Available       decimal.NullDecimal `json:"available"`
	Current         decimal.NullDecimal `json:"current"`
	Limit           decimal.NullDecimal `json:"limit"`
	ISOCurrencyCode *string             `json:"iso_currency_code"`
}

type wireAccount struct {
	AccountID    string       `json:"account_id"`
	Balances     wireBalances `json:"balances"`
	Mask         *string      `json:"mask"`
	Name         string       `json:"name"`
	OfficialName *string      `json:"official_name"`
	Type         string       `json:"type"`
	Subtype      *string      `json:"subtype"`
}

type wireItem struct {
	ItemID string `json:"item_id"`
}

type accountsResponse struct {
	Accounts  []wireAccount `json:"accounts"`
	Item      wireItem      `json:"item"`
	RequestID string        `json:"request_id"`
}

type wireTransaction struct {
	TransactionID   string          `json:"transaction_id"`
	AccountID       string          `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	ISOCurrencyCode *string         `json:"iso_currency_code"`
	Date            string          `json:"date"`
	Name            string          `json:"name"`
	MerchantName    *string         `json:"merchant_name"`
	Category        []string        `json:"category"`
	Pending         bool            `json:"pending"`
	PaymentChannel  string          `json:"payment_channel"`
}

type transactionsResponse struct {
	Accounts          []wireAccount     `json:"accounts"`
	Transactions      []wireTransaction `json:"transactions"`
	TotalTransactions int               `json:"total_transactions"`
	Item              wireItem          `json:"item"`
	RequestID         string            `json:"request_id"`
}

// --- operations ---

// CreateLinkSession calls /link/token/create.
func (c *Client) CreateLinkSession(ctx context.Context, req openbanking.LinkTokenRequest) (*openbanking.LinkTokenResponse, error) {
	var out linkTokenCreateResponse
	if _, err := c.post(ctx, linkTokenCreatePath, linkTokenCreateRequest{
		credentials:  c.credentials(),
		ClientName:   req.ClientName,
		User:         linkTokenUser{ClientUserID: req.ClientUserID},
		Products:     req.Products,
		CountryCodes: req.CountryCodes,
		Language:     req.Language,
		Webhook:      req.WebhookURL,
	}, &out); err != nil {
		return nil, err
	}
	return &openbanking.LinkTokenResponse{
		LinkToken:  out.LinkToken,
		Expiration: out.Expiration,
		RequestID:  out.RequestID,
	}, nil
}

// ExchangePublicToken calls /item/public_token/exchange. The raw response body
// is kept on the result.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*openbanking.ItemAccessResponse, error) {
	var out exchangeResponse
	raw, err := c.post(ctx, exchangePath, exchangeRequest{
		credentials: c.credentials(),
		PublicToken: publicToken,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &openbanking.ItemAccessResponse{
		AccessToken: out.AccessToken,
		ItemID:      out.ItemID,
		RequestID:   out.RequestID,
		Raw:         raw,
	}, nil
}

// ListAccounts calls /accounts/get.
func (c *Client) ListAccounts(ctx context.Context, accessToken string) (*openbanking.AccountsResponse, error) {
	var out accountsResponse
	if _, err := c.post(ctx, accountsPath, accessTokenRequest{
		credentials: c.credentials(),
		AccessToken: accessToken,
	}, &out); err != nil {
		return nil, err
	}
	return &openbanking.AccountsResponse{
		Accounts:  toBankAccounts(out.Accounts),
		ItemID:    out.Item.ItemID,
		RequestID: out.RequestID,
	}, nil
}

// ListTransactions calls /transactions/get for one page.
func (c *Client) ListTransactions(ctx context.Context, req openbanking.TransactionsRequest) (*openbanking.TransactionsResponse, error) {
	var out transactionsResponse
	if _, err := c.post(ctx, transactionsPath, transactionsRequest{
		credentials: c.credentials(),
		AccessToken: req.AccessToken,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Options:     transactionsOptions{Count: req.Count, Offset: req.Offset},
	}, &out); err != nil {
		return nil, err
	}

	txs := make([]openbanking.Transaction, 0, len(out.Transactions))
	for _, t := range out.Transactions {
		txs = append(txs, openbanking.Transaction{
			TransactionID:  t.TransactionID,
			AccountID:      t.AccountID,
			Amount:         t.Amount,
			Currency:       deref(t.ISOCurrencyCode),
			Date:           t.Date,
			Name:           t.Name,
			MerchantName:   deref(t.MerchantName),
			Category:       t.Category,
			Pending:        t.Pending,
			PaymentChannel: t.PaymentChannel,
		})
	}
	return &openbanking.TransactionsResponse{
		Accounts:          toBankAccounts(out.Accounts),
		Transactions:      txs,
		TotalTransactions: out.TotalTransactions,
		RequestID:         out.RequestID,
	}, nil
}

func (c *Client) credentials() credentials {
	return credentials{ClientID: c.clientID, Secret: c.secret}
}

// post sends body as JSON and decodes a 200 response into out. It returns the
// raw response body.
func (c *Client) post(ctx context.Context, path string, body, out any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(raw, apiErr); jsonErr != nil || apiErr.ErrorCode == "" {
			apiErr.ErrorType = "HTTP_ERROR"
			apiErr.ErrorCode = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", path, err)
	}
	return raw, nil
}

func toBankAccounts(in []wireAccount) []openbanking.BankAccount {
	out := make([]openbanking.BankAccount, 0, len(in))
	for _, a := range in {
		out = append(out, openbanking.BankAccount{
			AccountID:    a.AccountID,
			Name:         a.Name,
			OfficialName: deref(a.OfficialName),
			Type:         openbanking.AccountType(a.Type),
			Subtype:      deref(a.Subtype),
			Mask:         deref(a.Mask),
			Balances: openbanking.AccountBalances{
				Available: a.Balances.Available,
				Current:   a.Balances.Current,
				Limit:     a.Balances.Limit,
				Currency:  deref(a.Balances.ISOCurrencyCode),
			},
		})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
