package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/K4nnonn/FlowSightFi/internal/application/usecase"
	"github.com/K4nnonn/FlowSightFi/internal/domain/port"
	"github.com/K4nnonn/FlowSightFi/internal/infrastructure/config"
	infraKafka "github.com/K4nnonn/FlowSightFi/internal/infrastructure/kafka"
	"github.com/K4nnonn/FlowSightFi/internal/infrastructure/plaid"
	infraPostgres "github.com/K4nnonn/FlowSightFi/internal/infrastructure/postgres"
	"github.com/K4nnonn/FlowSightFi/internal/presentation/rest"
	"github.com/K4nnonn/FlowSightFi/pkg/auth"
	pkgkafka "github.com/K4nnonn/FlowSightFi/pkg/kafka"
	"github.com/K4nnonn/FlowSightFi/pkg/observability"
	pgpkg "github.com/K4nnonn/FlowSightFi/pkg/postgres"
	"github.com/K4nnonn/FlowSightFi/pkg/sealer"
)

func main() {
	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: cfg.ServiceName,
	})
	logger.Info("starting link service", "plaid_env", cfg.Plaid.Environment)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg, logger); err != nil {
		logger.Error("link service failed", "error", err)
		os.Exit(1)
	}
	logger.Info("link service stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: cfg.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(flushCtx); err != nil {
			logger.Warn("failed to flush traces", "error", err)
		}
	}()

	// Metrics.
	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}
	defer meterProvider.Shutdown(context.Background())

	flowMetrics, err := observability.NewFlowMetrics(meterProvider)
	if err != nil {
		return fmt.Errorf("init flow metrics: %w", err)
	}

	// Database.
	dbCfg := pgpkg.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		ApplicationName: cfg.ServiceName,
		MaxConns:        cfg.Database.MaxConns,
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	pool, err := pgpkg.NewPool(connectCtx, dbCfg)
	cancel()
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to database", "database", cfg.Database.Database)

	if cfg.Database.Migrations != "" {
		version, err := pgpkg.RunMigrations(dbCfg.DSN(), cfg.Database.Migrations)
		if err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("schema migrated", "version", version)
	}

	credentialSealer, err := newSealer(cfg, logger)
	if err != nil {
		return err
	}
	credentialRepo := infraPostgres.NewCredentialRepository(pool, credentialSealer, cfg.Database.Timeout)

	// Aggregation provider.
	var provider port.AggregationProvider
	if cfg.Plaid.Stub() {
		logger.Warn("using stub aggregation provider; no real bank data is fetched")
		provider = plaid.NewStubProvider(time.Now)
	} else {
		provider = plaid.NewClient(cfg.Plaid.OpenBanking(), &http.Client{Timeout: cfg.Plaid.Timeout})
	}
	resilience := plaid.DefaultResilienceConfig()
	resilience.Timeout = cfg.Plaid.Timeout
	resilience.RequestsPerSecond = cfg.Plaid.RequestsPerSecond
	provider = plaid.NewResilientProvider(provider, resilience, logger)

	// Events are optional; without brokers the exchange flow skips publishing.
	var publisher port.EventPublisher
	kafkaCfg := pkgkafka.Config{
		Brokers:      cfg.Kafka.Brokers,
		ClientID:     cfg.Kafka.ClientID,
		TLS:          cfg.Kafka.TLS,
		SASLUsername: cfg.Kafka.SASLUsername,
		SASLPassword: cfg.Kafka.SASLPassword,
	}
	if kafkaCfg.Enabled() {
		kafkaPublisher := infraKafka.NewPublisher(pkgkafka.NewProducer(kafkaCfg), logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		logger.Info("publishing link events", "brokers", cfg.Kafka.Brokers)
	}

	// Use cases.
	createLinkTokenUC := usecase.NewCreateLinkTokenUseCase(provider, cfg.Plaid.OpenBanking(), nil, time.Now, logger)
	exchangeUC := usecase.NewExchangePublicTokenUseCase(provider, credentialRepo, publisher, nil, time.Now, logger)
	getAccountsUC := usecase.NewGetAccountsUseCase(provider, logger)
	getTransactionsUC := usecase.NewGetTransactionsUseCase(provider, cfg.Plaid.TransactionsPageSize, time.Now, logger)

	authenticate, err := newAuthenticator(cfg.Auth, logger)
	if err != nil {
		return err
	}

	linkHandler := rest.NewLinkHandler(createLinkTokenUC, exchangeUC, getAccountsUC, getTransactionsUC, flowMetrics, logger)
	healthHandler := rest.NewHealthHandler(cfg.ServiceName, pool, kafkaCfg.Enabled(), logger)

	var handler http.Handler = rest.NewRouter(linkHandler, healthHandler, metricsHandler, authenticate)
	if cfg.RateLimit > 0 {
		handler = rest.RateLimitMiddleware(rest.NewPerClientRateLimiter(cfg.RateLimit))(handler)
	}
	handler = rest.LoggingMiddleware(logger)(handler)
	handler = rest.RecoveryMiddleware(logger)(handler)

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server starting", "port", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	case err := <-errCh:
		return err
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown HTTP server: %w", err)
	}
	return nil
}

// newSealer builds the credential sealer. In stub mode a missing key is
// replaced by an ephemeral one, so stored credentials do not survive a restart.
func newSealer(cfg config.Config, logger *slog.Logger) (*sealer.Sealer, error) {
	if cfg.CredentialSealingKey != "" {
		s, err := sealer.NewFromBase64(cfg.CredentialSealingKey)
		if err != nil {
			return nil, fmt.Errorf("load credential sealing key: %w", err)
		}
		return s, nil
	}
	logger.Warn("CREDENTIAL_SEALING_KEY not set; using an ephemeral key")
	key, err := sealer.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate credential sealing key: %w", err)
	}
	return sealer.New(key)
}

// newAuthenticator returns nil when no key material is configured, leaving
// the link endpoint anonymous.
func newAuthenticator(cfg config.AuthConfig, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	jwtCfg := auth.JWTConfig{Issuer: cfg.JWTIssuer}
	switch {
	case cfg.JWTPublicKeyFile != "":
		keyData, err := auth.LoadKeyFromFile(cfg.JWTPublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(keyData)
	case cfg.JWTSecret != "":
		jwtCfg.Secret = cfg.JWTSecret
	default:
		logger.Warn("no JWT key configured; link endpoint accepts anonymous callers")
		return nil, nil
	}

	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, fmt.Errorf("init JWT service: %w", err)
	}
	return auth.Middleware(svc, cfg.Required, logger), nil
}
