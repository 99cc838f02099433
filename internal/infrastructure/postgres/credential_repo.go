// Package postgres stores linked account credentials in PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/K4nnonn/FlowSightFi/internal/domain/model"
	"github.com/K4nnonn/FlowSightFi/internal/domain/port"
	pgpkg "github.com/K4nnonn/FlowSightFi/pkg/postgres"
)

// Sealer encrypts the access credential before it reaches the database.
// *sealer.Sealer satisfies it.
type Sealer interface {
	Seal(plaintext, additionalData []byte) ([]byte, error)
	Open(sealed, additionalData []byte) ([]byte, error)
}

// CredentialRepository implements port.CredentialStore using PostgreSQL.
type CredentialRepository struct {
	db      pgpkg.Querier
	sealer  Sealer
	timeout time.Duration
}

var _ port.CredentialStore = (*CredentialRepository)(nil)

// NewCredentialRepository creates a repository over db. Each statement is
// bounded by timeout when it is positive.
func NewCredentialRepository(db pgpkg.Querier, sealer Sealer, timeout time.Duration) *CredentialRepository {
	return &CredentialRepository{db: db, sealer: sealer, timeout: timeout}
}

// Insert writes one credential row. The access credential is sealed with the
// item id as additional data, so a sealed value copied onto another row does
// not open.
func (r *CredentialRepository) Insert(ctx context.Context, c *model.LinkedAccountCredential) error {
	sealed, err := r.sealer.Seal([]byte(c.AccessCredential()), []byte(c.ExternalItemID()))
	if err != nil {
		return fmt.Errorf("failed to seal access credential: %w", err)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	const insertSQL = `
		INSERT INTO linked_credentials (
			id, owner_id, item_id, access_credential, raw_exchange_payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	tag, err := r.db.Exec(ctx, insertSQL,
		c.ID(),
		c.OwnerID(),
		c.ExternalItemID(),
		sealed,
		[]byte(c.RawExchangePayload()),
		c.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert linked credential: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("failed to insert linked credential: %d rows affected", tag.RowsAffected())
	}
	return nil
}

func (r *CredentialRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.timeout)
}
