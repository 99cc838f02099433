// Package model holds the link service domain types: the durable linked
// account credential and the transient projections of provider data.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/K4nnonn/FlowSightFi/internal/domain/event"
	"github.com/K4nnonn/FlowSightFi/pkg/events"
)

var (
	// ErrEmptyOwnerID is returned when a credential has no owning user.
	ErrEmptyOwnerID = errors.New("owner id is required")
	// ErrEmptyAccessCredential is returned when the provider gave no access token.
	ErrEmptyAccessCredential = errors.New("access credential is required")
	// ErrEmptyItemID is returned when the provider gave no item id.
	ErrEmptyItemID = errors.New("external item id is required")
)

const redacted = "[REDACTED]"

// LinkedAccountCredential is the durable result of one successful public token
// exchange. It is immutable: there is no update path, and deletion is an
// administrative concern outside this service.
type LinkedAccountCredential struct {
	events.Collector

	id                 uuid.UUID
	ownerID            string
	accessCredential   string
	externalItemID     string
	rawExchangePayload json.RawMessage
	createdAt          time.Time
}

// NewLinkedAccountCredential creates a credential for ownerID and records a
// CredentialLinked event.
func NewLinkedAccountCredential(ownerID, accessCredential, externalItemID string, rawExchangePayload json.RawMessage, now time.Time) (*LinkedAccountCredential, error) {
	switch {
	case ownerID == "":
		return nil, ErrEmptyOwnerID
	case accessCredential == "":
		return nil, ErrEmptyAccessCredential
	case externalItemID == "":
		return nil, ErrEmptyItemID
	}
	if len(rawExchangePayload) > 0 && !json.Valid(rawExchangePayload) {
		return nil, fmt.Errorf("raw exchange payload is not valid JSON")
	}

	c := &LinkedAccountCredential{
		id:                 uuid.New(),
		ownerID:            ownerID,
		accessCredential:   accessCredential,
		externalItemID:     externalItemID,
		rawExchangePayload: redactPayload(rawExchangePayload),
		createdAt:          now.UTC(),
	}
	c.Record(event.NewCredentialLinked(c.id.String(), ownerID, externalItemID))
	return c, nil
}

func (c *LinkedAccountCredential) ID() uuid.UUID          { return c.id }
func (c *LinkedAccountCredential) OwnerID() string        { return c.ownerID }
func (c *LinkedAccountCredential) ExternalItemID() string { return c.externalItemID }
func (c *LinkedAccountCredential) CreatedAt() time.Time   { return c.createdAt }

// AccessCredential returns the provider secret. Callers must not log it.
func (c *LinkedAccountCredential) AccessCredential() string { return c.accessCredential }

// RawExchangePayload returns the provider exchange response with the access
// credential replaced by a redaction marker.
func (c *LinkedAccountCredential) RawExchangePayload() json.RawMessage {
	return c.rawExchangePayload
}

// String implements fmt.Stringer without exposing the access credential.
func (c *LinkedAccountCredential) String() string {
	return fmt.Sprintf("LinkedAccountCredential{id=%s owner=%s item=%s access=%s}", c.id, c.ownerID, c.externalItemID, redacted)
}

// LogValue implements slog.LogValuer without exposing the access credential.
func (c *LinkedAccountCredential) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("id", c.id.String()),
		slog.String("owner_id", c.ownerID),
		slog.String("item_id", c.externalItemID),
	)
}

// redactPayload blanks the access_token field of a provider exchange body so
// the raw payload column never holds the secret in plaintext.
func redactPayload(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("{}")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return raw
	}
	if _, ok := fields["access_token"]; !ok {
		return raw
	}
	fields["access_token"] = json.RawMessage(`"` + redacted + `"`)
	out, err := json.Marshal(fields)
	if err != nil {
		return raw
	}
	return out
}
