package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/K4nnonn/FlowSightFi/internal/application/apperr"
	"github.com/K4nnonn/FlowSightFi/internal/application/dto"
	"github.com/K4nnonn/FlowSightFi/internal/domain/model"
	"github.com/K4nnonn/FlowSightFi/internal/domain/port"
	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
)

// GetTransactionsUseCase fetches one page of transactions for a date window.
type GetTransactionsUseCase struct {
	provider port.AggregationProvider
	pageSize int
	now      Clock
	logger   *slog.Logger
}

// NewGetTransactionsUseCase creates a new GetTransactionsUseCase. A pageSize
// outside 1..openbanking.MaxTransactionsPageSize uses the maximum.
func NewGetTransactionsUseCase(provider port.AggregationProvider, pageSize int, now Clock, logger *slog.Logger) *GetTransactionsUseCase {
	if pageSize <= 0 || pageSize > openbanking.MaxTransactionsPageSize {
		pageSize = openbanking.MaxTransactionsPageSize
	}
	return &GetTransactionsUseCase{
		provider: provider,
		pageSize: pageSize,
		now:      clockOrDefault(now),
		logger:   logger,
	}
}

// Execute fetches the first page of transactions in the window. The provider's
// total is returned next to the page so callers can detect truncation.
func (uc *GetTransactionsUseCase) Execute(ctx context.Context, req dto.GetTransactionsRequest) (dto.TransactionsResponse, error) {
	const op = dto.ActionGetTransactions

	accessToken := strings.TrimSpace(req.AccessToken)
	if accessToken == "" {
		return dto.TransactionsResponse{}, apperr.MissingParameter(op, "access_token")
	}

	window, err := model.NewDateRange(strings.TrimSpace(req.StartDate), strings.TrimSpace(req.EndDate), uc.now())
	if err != nil {
		return dto.TransactionsResponse{}, apperr.InvalidParameter(op, err)
	}

	resp, err := uc.provider.ListTransactions(ctx, openbanking.TransactionsRequest{
		AccessToken: accessToken,
		StartDate:   window.StartDate(),
		EndDate:     window.EndDate(),
		Count:       uc.pageSize,
	})
	if err != nil {
		uc.logger.Warn("transaction fetch failed",
			"start_date", window.StartDate(),
			"end_date", window.EndDate(),
			"error", err,
		)
		return dto.TransactionsResponse{}, apperr.ProviderUnavailable(op, err)
	}
	if resp == nil {
		return dto.TransactionsResponse{}, apperr.ProviderUnavailable(op, model.ErrMalformedProviderData)
	}

	accounts, err := model.NewAccountSnapshots(resp.Accounts)
	if err != nil {
		uc.logger.Error("provider returned malformed accounts", "request_id", resp.RequestID, "error", err)
		return dto.TransactionsResponse{}, apperr.ProviderUnavailable(op, err)
	}
	records, err := model.NewTransactionRecords(resp.Transactions)
	if err != nil {
		uc.logger.Error("provider returned malformed transactions", "request_id", resp.RequestID, "error", err)
		return dto.TransactionsResponse{}, apperr.ProviderUnavailable(op, err)
	}

	total := resp.TotalTransactions
	if total < len(records) {
		total = len(records)
	}
	truncated := total > len(records)
	if truncated {
		uc.logger.Info("transaction window truncated",
			"total", total,
			"returned", len(records),
			"request_id", resp.RequestID,
		)
	}

	return dto.TransactionsResponse{
		Accounts:             dto.AccountsFromModel(accounts),
		Transactions:         dto.TransactionsFromModel(records),
		StartDate:            window.StartDate(),
		EndDate:              window.EndDate(),
		TotalTransactions:    total,
		ReturnedTransactions: len(records),
		Truncated:            truncated,
		RequestID:            resp.RequestID,
	}, nil
}
