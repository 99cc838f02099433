package usecase

import (
	"context"
	"log/slog"

	"github.com/K4nnonn/FlowSightFi/internal/application/apperr"
	"github.com/K4nnonn/FlowSightFi/internal/application/dto"
	"github.com/K4nnonn/FlowSightFi/internal/domain/model"
	"github.com/K4nnonn/FlowSightFi/internal/domain/port"
	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
)

// CreateLinkTokenUseCase starts a bank link session for an end user.
type CreateLinkTokenUseCase struct {
	provider port.AggregationProvider
	scope    openbanking.PlaidConfig
	mintID   OwnerIDGenerator
	now      Clock
	logger   *slog.Logger
}

// NewCreateLinkTokenUseCase creates a new CreateLinkTokenUseCase. scope
// supplies the client name, products, country codes, language and webhook of
// every session.
func NewCreateLinkTokenUseCase(
	provider port.AggregationProvider,
	scope openbanking.PlaidConfig,
	mintID OwnerIDGenerator,
	now Clock,
	logger *slog.Logger,
) *CreateLinkTokenUseCase {
	return &CreateLinkTokenUseCase{
		provider: provider,
		scope:    scope,
		mintID:   mintID,
		now:      clockOrDefault(now),
		logger:   logger,
	}
}

// Execute asks the provider for a link token. Provider failures are not
// retried; the caller may simply ask again.
func (uc *CreateLinkTokenUseCase) Execute(ctx context.Context, req dto.CreateLinkTokenRequest) (dto.CreateLinkTokenResponse, error) {
	const op = dto.ActionCreateLinkToken

	owner := resolveOwner(ctx, req.UserID, uc.mintID)

	resp, err := uc.provider.CreateLinkSession(ctx, openbanking.LinkTokenRequest{
		ClientUserID: owner,
		ClientName:   uc.scope.ClientName,
		Products:     uc.scope.Products,
		CountryCodes: uc.scope.CountryCodes,
		Language:     uc.scope.Language,
		WebhookURL:   uc.scope.WebhookURL,
	})
	if err != nil {
		uc.logger.Warn("link session creation failed", "owner_id", owner, "error", err)
		return dto.CreateLinkTokenResponse{}, apperr.ProviderUnavailable(op, err)
	}
	if resp == nil || resp.LinkToken == "" {
		return dto.CreateLinkTokenResponse{}, apperr.ProviderUnavailable(op, model.ErrMalformedProviderData)
	}

	session := model.LinkSession{
		Token:      resp.LinkToken,
		Expiration: resp.Expiration,
		RequestID:  resp.RequestID,
		CreatedAt:  uc.now(),
	}

	uc.logger.Info("link session created",
		"owner_id", owner,
		"request_id", session.RequestID,
		"expiration", session.Expiration,
	)

	return dto.CreateLinkTokenResponse{
		LinkToken:  session.Token,
		Expiration: session.Expiration,
		RequestID:  session.RequestID,
		UserID:     owner,
	}, nil
}
