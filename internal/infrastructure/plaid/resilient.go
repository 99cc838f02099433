package plaid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/K4nnonn/FlowSightFi/internal/domain/port"
	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
)

var tracer = otel.Tracer("github.com/K4nnonn/FlowSightFi/internal/infrastructure/plaid")

var (
	// ErrCircuitOpen is returned while the breaker rejects calls to Plaid.
	ErrCircuitOpen = errors.New("plaid: circuit breaker open")
	// ErrTimeout is returned when a call exceeds the per-call timeout.
	ErrTimeout = errors.New("plaid: call timed out")
)

// ResilienceConfig tunes the protection around provider calls.
type ResilienceConfig struct {
	// Timeout bounds each provider call. Zero disables it.
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls. Zero disables the limiter.
	RequestsPerSecond float64
	Burst             int
	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing again.
	OpenTimeout time.Duration
	// ReadRetries is the number of extra attempts for account and transaction
	// reads after a transient failure. Link and exchange calls are never retried.
	ReadRetries  int
	RetryBackoff time.Duration
}

// DefaultResilienceConfig returns the settings used in production.
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		Timeout:           15 * time.Second,
		RequestsPerSecond: 10,
		Burst:             20,
		FailureThreshold:  5,
		OpenTimeout:       30 * time.Second,
		ReadRetries:       1,
		RetryBackoff:      200 * time.Millisecond,
	}
}

// ResilientProvider wraps an AggregationProvider with a circuit breaker, a
// rate limiter and a per-call timeout.
type ResilientProvider struct {
	next    port.AggregationProvider
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter
	cfg     ResilienceConfig
	logger  *slog.Logger
}

var _ port.AggregationProvider = (*ResilientProvider)(nil)

// NewResilientProvider wraps next.
func NewResilientProvider(next port.AggregationProvider, cfg ResilienceConfig, logger *slog.Logger) *ResilientProvider {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	logger = logger.With("component", "plaid_breaker")

	rp := &ResilientProvider{
		next:   next,
		cfg:    cfg,
		logger: logger,
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		rp.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	rp.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "plaid",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Rejections of the caller's input say nothing about Plaid's health.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return !apiErr.Retryable()
			}
			return errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})

	return rp
}

// State reports the breaker state, for readiness and tests.
func (p *ResilientProvider) State() gobreaker.State {
	return p.cb.State()
}

func (p *ResilientProvider) CreateLinkSession(ctx context.Context, req openbanking.LinkTokenRequest) (*openbanking.LinkTokenResponse, error) {
	return call(ctx, p, "create_link_session", 0, func(ctx context.Context) (*openbanking.LinkTokenResponse, error) {
		return p.next.CreateLinkSession(ctx, req)
	})
}

// ExchangePublicToken is attempted exactly once. A public token is single use,
// so a retry could only fail or mint a second item.
func (p *ResilientProvider) ExchangePublicToken(ctx context.Context, publicToken string) (*openbanking.ItemAccessResponse, error) {
	return call(ctx, p, "exchange_public_token", 0, func(ctx context.Context) (*openbanking.ItemAccessResponse, error) {
		return p.next.ExchangePublicToken(ctx, publicToken)
	})
}

func (p *ResilientProvider) ListAccounts(ctx context.Context, accessToken string) (*openbanking.AccountsResponse, error) {
	return call(ctx, p, "list_accounts", p.cfg.ReadRetries, func(ctx context.Context) (*openbanking.AccountsResponse, error) {
		return p.next.ListAccounts(ctx, accessToken)
	})
}

func (p *ResilientProvider) ListTransactions(ctx context.Context, req openbanking.TransactionsRequest) (*openbanking.TransactionsResponse, error) {
	return call(ctx, p, "list_transactions", p.cfg.ReadRetries, func(ctx context.Context) (*openbanking.TransactionsResponse, error) {
		return p.next.ListTransactions(ctx, req)
	})
}

func call[T any](ctx context.Context, p *ResilientProvider, op string, retries int, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := tracer.Start(ctx, "plaid."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	result, n, err := retry(ctx, p, op, retries, fn)
	span.SetAttributes(attribute.Int("plaid.attempts", n))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
	}
	return result, err
}

// retry runs fn until it succeeds, fails permanently or runs out of retries,
// and reports how many attempts were made.
func retry[T any](ctx context.Context, p *ResilientProvider, op string, retries int, fn func(context.Context) (T, error)) (T, int, error) {
	for n := 1; ; n++ {
		result, err := attempt(ctx, p, op, fn)
		if err == nil || n > retries || !transient(err) {
			return result, n, err
		}
		p.logger.Warn("retrying provider read", "operation", op, "attempt", n, "error", err)
		select {
		case <-ctx.Done():
			return result, n, err
		case <-time.After(p.cfg.RetryBackoff):
		}
	}
}

func attempt[T any](ctx context.Context, p *ResilientProvider, op string, fn func(context.Context) (T, error)) (T, error) {
	var zero T

	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return zero, fmt.Errorf("plaid %s: rate limiter: %w", op, err)
		}
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := p.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return zero, fmt.Errorf("plaid %s: %w", op, ErrCircuitOpen)
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			p.logger.Warn("provider call timed out",
				"operation", op,
				"timeout", p.cfg.Timeout,
				"elapsed", time.Since(start),
			)
			return zero, fmt.Errorf("plaid %s: %w: %w", op, ErrTimeout, err)
		}
		return zero, err
	}
	return out.(T), nil
}

func transient(err error) bool {
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Retryable()
}
