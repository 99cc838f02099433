// Package port declares the collaborators the link flows depend on.
package port

import (
	"context"

	"github.com/K4nnonn/FlowSightFi/internal/domain/model"
	"github.com/K4nnonn/FlowSightFi/pkg/events"
	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
)

// AggregationProvider is the bank data aggregator (Plaid).
type AggregationProvider interface {
	// CreateLinkSession requests a short-lived link token scoped to one end user.
	CreateLinkSession(ctx context.Context, req openbanking.LinkTokenRequest) (*openbanking.LinkTokenResponse, error)

	// ExchangePublicToken trades a one-time public token for a durable access
	// credential. A public token can be exchanged only once, so implementations
	// must not retry this call.
	ExchangePublicToken(ctx context.Context, publicToken string) (*openbanking.ItemAccessResponse, error)

	// ListAccounts returns the accounts and balances under an access credential.
	ListAccounts(ctx context.Context, accessToken string) (*openbanking.AccountsResponse, error)

	// ListTransactions returns one page of transactions within a date window.
	ListTransactions(ctx context.Context, req openbanking.TransactionsRequest) (*openbanking.TransactionsResponse, error)
}

// CredentialStore persists linked account credentials. There is no update or
// delete path.
type CredentialStore interface {
	Insert(ctx context.Context, credential *model.LinkedAccountCredential) error
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, evts ...events.DomainEvent) error
}
