// Package rest exposes the link flows over HTTP.
package rest

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/K4nnonn/FlowSightFi/internal/application/apperr"
	"github.com/K4nnonn/FlowSightFi/internal/application/dto"
	"github.com/K4nnonn/FlowSightFi/internal/application/usecase"
	"github.com/K4nnonn/FlowSightFi/pkg/observability"
)

var tracer = otel.Tracer("github.com/K4nnonn/FlowSightFi/internal/presentation/rest")

// LinkPath is the single endpoint serving every link action.
const LinkPath = "/api/plaid"

// LinkHandler decodes a link request, dispatches it to exactly one flow and
// writes either the flow's JSON result or {"error": msg}.
type LinkHandler struct {
	createLinkToken *usecase.CreateLinkTokenUseCase
	exchange        *usecase.ExchangePublicTokenUseCase
	getAccounts     *usecase.GetAccountsUseCase
	getTransactions *usecase.GetTransactionsUseCase
	metrics         *observability.FlowMetrics
	logger          *slog.Logger
}

// NewLinkHandler creates a new LinkHandler. metrics may be nil.
func NewLinkHandler(
	createLinkToken *usecase.CreateLinkTokenUseCase,
	exchange *usecase.ExchangePublicTokenUseCase,
	getAccounts *usecase.GetAccountsUseCase,
	getTransactions *usecase.GetTransactionsUseCase,
	metrics *observability.FlowMetrics,
	logger *slog.Logger,
) *LinkHandler {
	return &LinkHandler{
		createLinkToken: createLinkToken,
		exchange:        exchange,
		getAccounts:     getAccounts,
		getTransactions: getTransactions,
		metrics:         metrics,
		logger:          logger,
	}
}

func (h *LinkHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.fail(w, r, "", apperr.MethodNotAllowed(r.Method))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req dto.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		msg := "invalid request body"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "request body too large"
		}
		h.fail(w, r, "", apperr.InvalidOperation("decode", msg))
		return
	}

	action := strings.TrimSpace(req.Action)
	start := time.Now()
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := tracer.Start(ctx, "link."+metricAction(action),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attribute.String("link.action", metricAction(action))),
	)
	defer span.End()

	var (
		resp any
		err  error
	)
	switch action {
	case dto.ActionCreateLinkToken:
		resp, err = h.createLinkToken.Execute(ctx, dto.CreateLinkTokenRequest{UserID: req.UserID})
	case dto.ActionExchangePublicToken:
		resp, err = h.exchange.Execute(ctx, dto.ExchangePublicTokenRequest{PublicToken: req.PublicToken, UserID: req.UserID})
	case dto.ActionGetAccounts:
		resp, err = h.getAccounts.Execute(ctx, dto.GetAccountsRequest{AccessToken: req.AccessToken})
	case dto.ActionGetTransactions:
		resp, err = h.getTransactions.Execute(ctx, dto.GetTransactionsRequest{
			AccessToken: req.AccessToken,
			StartDate:   req.StartDate,
			EndDate:     req.EndDate,
		})
	case "":
		err = apperr.InvalidOperation("dispatch", "action is required")
	default:
		err = apperr.InvalidOperation("dispatch", "invalid action")
	}

	if err != nil {
		kind := string(apperr.KindOf(err))
		h.metrics.Record(ctx, metricAction(action), kind, time.Since(start))
		span.SetStatus(codes.Error, kind)
		h.fail(w, r.WithContext(ctx), action, err)
		return
	}
	h.metrics.Record(ctx, action, "ok", time.Since(start))
	writeJSON(w, http.StatusOK, resp)
}

// fail logs err with its cause and writes only the caller-safe message.
func (h *LinkHandler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	e := apperr.As(err)
	status := apperr.HTTPStatus(e.Kind)

	attrs := []any{
		"action", action,
		"kind", string(e.Kind),
		"status", status,
		"error", e.Error(),
	}
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable:
		h.logger.ErrorContext(r.Context(), "link request failed", attrs...)
	case status == http.StatusServiceUnavailable:
		h.logger.WarnContext(r.Context(), "link request failed", attrs...)
	default:
		h.logger.InfoContext(r.Context(), "link request rejected", attrs...)
	}

	writeError(w, status, e.Msg)
}

// metricAction keeps unknown actions from creating unbounded label values.
func metricAction(action string) string {
	switch action {
	case dto.ActionCreateLinkToken, dto.ActionExchangePublicToken, dto.ActionGetAccounts, dto.ActionGetTransactions:
		return action
	default:
		return "invalid"
	}
}
