package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/K4nnonn/FlowSightFi/internal/application/apperr"
	"github.com/K4nnonn/FlowSightFi/internal/application/dto"
	"github.com/K4nnonn/FlowSightFi/internal/domain/event"
	"github.com/K4nnonn/FlowSightFi/internal/domain/model"
	"github.com/K4nnonn/FlowSightFi/internal/domain/port"
)

// EventPublishTimeout bounds the credential.linked publish. The credential is
// already stored by then, so a slow broker must not hold the response.
const EventPublishTimeout = time.Second

// ExchangePublicTokenUseCase completes a link session: it trades the public
// token for an access credential and stores the credential.
type ExchangePublicTokenUseCase struct {
	provider  port.AggregationProvider
	store     port.CredentialStore
	publisher port.EventPublisher
	mintID    OwnerIDGenerator
	now       Clock
	logger    *slog.Logger
}

// NewExchangePublicTokenUseCase creates a new ExchangePublicTokenUseCase.
// publisher may be nil when event publishing is disabled.
func NewExchangePublicTokenUseCase(
	provider port.AggregationProvider,
	store port.CredentialStore,
	publisher port.EventPublisher,
	mintID OwnerIDGenerator,
	now Clock,
	logger *slog.Logger,
) *ExchangePublicTokenUseCase {
	return &ExchangePublicTokenUseCase{
		provider:  provider,
		store:     store,
		publisher: publisher,
		mintID:    mintID,
		now:       clockOrDefault(now),
		logger:    logger,
	}
}

// Execute exchanges the public token exactly once and inserts one credential.
//
// The provider consumes the public token on the first call, so a store failure
// after a successful exchange cannot be recovered by the caller retrying. It is
// reported as a storage failure and logged with the item id so operators can
// re-link the item.
func (uc *ExchangePublicTokenUseCase) Execute(ctx context.Context, req dto.ExchangePublicTokenRequest) (dto.ExchangePublicTokenResponse, error) {
	const op = dto.ActionExchangePublicToken

	publicToken := strings.TrimSpace(req.PublicToken)
	if publicToken == "" {
		return dto.ExchangePublicTokenResponse{}, apperr.MissingParameter(op, "public_token")
	}

	owner := resolveOwner(ctx, req.UserID, uc.mintID)

	item, err := uc.provider.ExchangePublicToken(ctx, publicToken)
	if err != nil {
		uc.logger.Warn("public token exchange failed", "owner_id", owner, "error", err)
		return dto.ExchangePublicTokenResponse{}, apperr.ProviderUnavailable(op, err)
	}
	if item == nil {
		return dto.ExchangePublicTokenResponse{}, apperr.ProviderUnavailable(op, model.ErrMalformedProviderData)
	}

	credential, err := model.NewLinkedAccountCredential(owner, item.AccessToken, item.ItemID, item.Raw, uc.now())
	if err != nil {
		uc.logger.Error("provider returned an unusable exchange result",
			"owner_id", owner,
			"item_id", item.ItemID,
			"request_id", item.RequestID,
			"error", err,
		)
		return dto.ExchangePublicTokenResponse{}, apperr.ProviderUnavailable(op, err)
	}

	// The exchange already happened; a caller hanging up must not drop the insert.
	if err := uc.store.Insert(context.WithoutCancel(ctx), credential); err != nil {
		uc.logger.Error("credential insert failed after successful exchange",
			"credential", credential,
			"request_id", item.RequestID,
			"error", err,
		)
		return dto.ExchangePublicTokenResponse{}, apperr.StorageFailure(op, err)
	}

	uc.publishEvents(ctx, credential)

	uc.logger.Info("bank item linked", "credential", credential, "request_id", item.RequestID)

	return dto.ExchangePublicTokenResponse{
		AccessToken: credential.AccessCredential(),
		ItemID:      credential.ExternalItemID(),
		UserID:      credential.OwnerID(),
	}, nil
}

func (uc *ExchangePublicTokenUseCase) publishEvents(ctx context.Context, credential *model.LinkedAccountCredential) {
	evts := credential.ClearEvents()
	if uc.publisher == nil || len(evts) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), EventPublishTimeout)
	defer cancel()
	if err := uc.publisher.Publish(ctx, event.LinkEventsTopic, evts...); err != nil {
		// The credential is stored; a lost notification does not fail the link.
		uc.logger.Error("failed to publish domain events",
			"error", err,
			"credential_id", credential.ID(),
			"event_count", len(evts),
		)
	}
}
