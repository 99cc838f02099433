// Package usecase implements the four link flows: create a link session,
// exchange its public token, and fetch accounts or transactions.
package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/K4nnonn/FlowSightFi/pkg/auth"
)

// anonymousOwnerPrefix marks owner ids minted for callers that carry neither
// a token nor a user_id.
const anonymousOwnerPrefix = "anon-"

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

// OwnerIDGenerator mints an owner id for an unidentified caller.
type OwnerIDGenerator func() string

// NewAnonymousOwnerID returns a fresh "anon-<uuid>" owner id.
func NewAnonymousOwnerID() string {
	return anonymousOwnerPrefix + uuid.NewString()
}

// resolveOwner picks the end user a flow acts for: the authenticated subject,
// then the user_id the caller sent, then a freshly minted id. Two anonymous
// requests never share an owner.
func resolveOwner(ctx context.Context, requested string, mint OwnerIDGenerator) string {
	if claims, ok := auth.ClaimsFromContext(ctx); ok && claims.OwnerID() != "" {
		return claims.OwnerID()
	}
	if id := strings.TrimSpace(requested); id != "" {
		return id
	}
	if mint == nil {
		mint = NewAnonymousOwnerID
	}
	return mint()
}

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}
