package usecase_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/K4nnonn/FlowSightFi/internal/domain/model"
	"github.com/K4nnonn/FlowSightFi/pkg/events"
	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
	"github.com/K4nnonn/FlowSightFi/pkg/testutil"
)

// --- Mock implementations ---

var errProviderDown = errors.New("plaid: 500 INTERNAL_SERVER_ERROR")

type mockProvider struct {
	mu sync.Mutex

	linkCalls         int
	exchangeCalls     int
	accountsCalls     int
	transactionsCalls int

	lastLinkRequest         openbanking.LinkTokenRequest
	lastTransactionsRequest openbanking.TransactionsRequest

	linkErr         error
	exchangeErr     error
	accountsErr     error
	transactionsErr error

	accounts     []openbanking.BankAccount
	transactions []openbanking.Transaction
	total        int
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		accounts: []openbanking.BankAccount{{
			AccountID: testutil.TestAccountID,
			Name:      "Plaid Checking",
			Type:      openbanking.AccountTypeDepository,
			Subtype:   "checking",
			Mask:      "0000",
			Balances: openbanking.AccountBalances{
				Available: decimal.NewNullDecimal(decimal.RequireFromString("100")),
				Current:   decimal.NewNullDecimal(decimal.RequireFromString("110")),
				Currency:  "USD",
			},
		}},
		transactions: []openbanking.Transaction{
			{TransactionID: "tx-1", AccountID: testutil.TestAccountID, Amount: decimal.RequireFromString("-42.50"), Currency: "USD", Date: "2024-03-01", Name: "Payroll"},
			{TransactionID: "tx-2", AccountID: testutil.TestAccountID, Amount: decimal.RequireFromString("17.25"), Currency: "USD", Date: "2024-03-02", Name: "Coffee"},
		},
		total: 2,
	}
}

func (m *mockProvider) CreateLinkSession(_ context.Context, req openbanking.LinkTokenRequest) (*openbanking.LinkTokenResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkCalls++
	m.lastLinkRequest = req
	if m.linkErr != nil {
		return nil, m.linkErr
	}
	return &openbanking.LinkTokenResponse{
		LinkToken:  testutil.TestLinkToken,
		Expiration: time.Date(2025, 1, 1, 4, 0, 0, 0, time.UTC),
		RequestID:  testutil.TestRequestID,
	}, nil
}

func (m *mockProvider) ExchangePublicToken(_ context.Context, publicToken string) (*openbanking.ItemAccessResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.exchangeCalls++
	if m.exchangeErr != nil {
		return nil, m.exchangeErr
	}
	raw, _ := json.Marshal(map[string]string{
		"access_token": testutil.TestAccessToken,
		"item_id":      testutil.TestItemID,
		"request_id":   testutil.TestRequestID,
	})
	return &openbanking.ItemAccessResponse{
		AccessToken: testutil.TestAccessToken,
		ItemID:      testutil.TestItemID,
		RequestID:   testutil.TestRequestID,
		Raw:         raw,
	}, nil
}

func (m *mockProvider) ListAccounts(_ context.Context, _ string) (*openbanking.AccountsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accountsCalls++
	if m.accountsErr != nil {
		return nil, m.accountsErr
	}
	return &openbanking.AccountsResponse{Accounts: m.accounts, ItemID: testutil.TestItemID, RequestID: testutil.TestRequestID}, nil
}

func (m *mockProvider) ListTransactions(_ context.Context, req openbanking.TransactionsRequest) (*openbanking.TransactionsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactionsCalls++
	m.lastTransactionsRequest = req
	if m.transactionsErr != nil {
		return nil, m.transactionsErr
	}
	return &openbanking.TransactionsResponse{
		Accounts:          m.accounts,
		Transactions:      m.transactions,
		TotalTransactions: m.total,
		RequestID:         testutil.TestRequestID,
	}, nil
}

func (m *mockProvider) totalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.linkCalls + m.exchangeCalls + m.accountsCalls + m.transactionsCalls
}

type mockStore struct {
	mu        sync.Mutex
	inserted  []*model.LinkedAccountCredential
	insertErr error
	ctxErr    error
}

func (m *mockStore) Insert(ctx context.Context, c *model.LinkedAccountCredential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErr = ctx.Err()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, c)
	return nil
}

type mockEventPublisher struct {
	publishedEvents []events.DomainEvent
	publishedTopic  string
	publishErr      error
	// block makes Publish wait for its context, like a broker that never answers.
	block  bool
	ctxErr error
}

func (m *mockEventPublisher) Publish(ctx context.Context, topic string, evts ...events.DomainEvent) error {
	if m.block {
		<-ctx.Done()
		m.ctxErr = ctx.Err()
		return ctx.Err()
	}
	if m.publishErr != nil {
		return m.publishErr
	}
	m.publishedTopic = topic
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}
