package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/K4nnonn/FlowSightFi/internal/application/apperr"
	"github.com/K4nnonn/FlowSightFi/internal/application/dto"
	"github.com/K4nnonn/FlowSightFi/internal/domain/model"
	"github.com/K4nnonn/FlowSightFi/internal/domain/port"
)

// GetAccountsUseCase fetches the current accounts under an access credential.
// It never touches the credential store.
type GetAccountsUseCase struct {
	provider port.AggregationProvider
	logger   *slog.Logger
}

// NewGetAccountsUseCase creates a new GetAccountsUseCase.
func NewGetAccountsUseCase(provider port.AggregationProvider, logger *slog.Logger) *GetAccountsUseCase {
	return &GetAccountsUseCase{provider: provider, logger: logger}
}

// Execute fetches and validates the account list.
func (uc *GetAccountsUseCase) Execute(ctx context.Context, req dto.GetAccountsRequest) (dto.AccountsResponse, error) {
	const op = dto.ActionGetAccounts

	accessToken := strings.TrimSpace(req.AccessToken)
	if accessToken == "" {
		return dto.AccountsResponse{}, apperr.MissingParameter(op, "access_token")
	}

	resp, err := uc.provider.ListAccounts(ctx, accessToken)
	if err != nil {
		uc.logger.Warn("account fetch failed", "error", err)
		return dto.AccountsResponse{}, apperr.ProviderUnavailable(op, err)
	}
	if resp == nil {
		return dto.AccountsResponse{}, apperr.ProviderUnavailable(op, model.ErrMalformedProviderData)
	}

	accounts, err := model.NewAccountSnapshots(resp.Accounts)
	if err != nil {
		uc.logger.Error("provider returned malformed accounts", "item_id", resp.ItemID, "request_id", resp.RequestID, "error", err)
		return dto.AccountsResponse{}, apperr.ProviderUnavailable(op, err)
	}

	uc.logger.Debug("accounts fetched", "item_id", resp.ItemID, "count", len(accounts))

	return dto.AccountsResponse{
		Accounts:  dto.AccountsFromModel(accounts),
		RequestID: resp.RequestID,
	}, nil
}
