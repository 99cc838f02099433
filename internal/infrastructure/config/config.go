// Package config loads the link service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/K4nnonn/FlowSightFi/pkg/openbanking"
)

// EnvironmentStub selects the in-process stub provider instead of Plaid.
const EnvironmentStub = "stub"

// Config holds all configuration for the link service.
type Config struct {
	HTTPPort    int
	ServiceName string
	LogLevel    string
	LogFormat   string
	// RateLimit caps inbound requests per second per client. Zero disables it.
	RateLimit int
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	Plaid    PlaidConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
	Tracing  TracingConfig

	// CredentialSealingKey is the base64 32-byte key sealing access credentials at rest.
	CredentialSealingKey string
}

// PlaidConfig holds aggregation provider settings.
type PlaidConfig struct {
	Environment  string
	ClientID     string
	Secret       string
	BaseURL      string
	ClientName   string
	Products     []string
	CountryCodes []string
	Language     string
	WebhookURL   string
	Timeout      time.Duration
	// RequestsPerSecond caps outbound calls to Plaid.
	RequestsPerSecond float64
	// TransactionsPageSize is the single page requested by get_transactions.
	TransactionsPageSize int
}

// Stub reports whether the stub provider is selected.
func (c PlaidConfig) Stub() bool {
	return strings.EqualFold(c.Environment, EnvironmentStub)
}

// OpenBanking converts to the provider-neutral Plaid settings.
func (c PlaidConfig) OpenBanking() openbanking.PlaidConfig {
	return openbanking.PlaidConfig{
		ClientID:     c.ClientID,
		Secret:       c.Secret,
		Environment:  c.Environment,
		BaseURL:      c.BaseURL,
		ClientName:   c.ClientName,
		WebhookURL:   c.WebhookURL,
		Language:     c.Language,
		Products:     c.Products,
		CountryCodes: c.CountryCodes,
	}
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int32
	// Timeout bounds each statement.
	Timeout time.Duration
	// Migrations is a golang-migrate source URL. Empty skips migrations at startup.
	Migrations string
}

// KafkaConfig holds Kafka connection settings. No brokers disables event publishing.
type KafkaConfig struct {
	Brokers      []string
	ClientID     string
	TLS          bool
	SASLUsername string
	SASLPassword string
}

// AuthConfig holds caller authentication settings.
type AuthConfig struct {
	JWTSecret        string
	JWTPublicKeyFile string
	JWTIssuer        string
	// Required rejects requests without a valid bearer token.
	Required bool
}

// TracingConfig holds OTLP trace export settings. No endpoint disables export.
type TracingConfig struct {
	Endpoint    string
	Insecure    bool
	SampleRatio float64
}

// Validate checks required configuration values and reports all problems at once.
func (c Config) Validate() error {
	var errs []error

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d is out of range", c.HTTPPort))
	}

	switch strings.ToLower(c.Plaid.Environment) {
	case EnvironmentStub:
	case openbanking.EnvironmentSandbox, openbanking.EnvironmentDevelopment, openbanking.EnvironmentProduction:
		if c.Plaid.ClientID == "" {
			errs = append(errs, errors.New("PLAID_CLIENT_ID environment variable is required"))
		}
		if c.Plaid.Secret == "" {
			errs = append(errs, errors.New("PLAID_SECRET environment variable is required"))
		}
		if c.CredentialSealingKey == "" {
			errs = append(errs, errors.New("CREDENTIAL_SEALING_KEY environment variable is required"))
		}
	default:
		errs = append(errs, fmt.Errorf("PLAID_ENV %q must be one of sandbox, development, production, stub", c.Plaid.Environment))
	}
	if len(c.Plaid.Products) == 0 {
		errs = append(errs, errors.New("PLAID_PRODUCTS must name at least one product"))
	}

	if c.Database.Password == "" {
		errs = append(errs, errors.New("DB_PASSWORD environment variable is required"))
	}

	if c.Auth.Required && c.Auth.JWTSecret == "" && c.Auth.JWTPublicKeyFile == "" {
		errs = append(errs, errors.New("JWT_REQUIRED needs JWT_SECRET or JWT_PUBLIC_KEY_FILE"))
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("OTEL_TRACES_SAMPLE_RATIO %v must be between 0 and 1", c.Tracing.SampleRatio))
	}

	return errors.Join(errs...)
}

// Load reads configuration from environment variables with defaults.
func Load() Config {
	return Config{
		HTTPPort:             getEnvInt("HTTP_PORT", 8080),
		ServiceName:          getEnv("SERVICE_NAME", "link-service"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "json"),
		RateLimit:            getEnvInt("RATE_LIMIT", 50),
		ShutdownTimeout:      getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
		CredentialSealingKey: getEnv("CREDENTIAL_SEALING_KEY", ""),
		Plaid: PlaidConfig{
			Environment:          strings.ToLower(getEnv("PLAID_ENV", openbanking.EnvironmentSandbox)),
			ClientID:             getEnv("PLAID_CLIENT_ID", ""),
			Secret:               getEnv("PLAID_SECRET", ""),
			BaseURL:              getEnv("PLAID_BASE_URL", ""),
			ClientName:           getEnv("PLAID_CLIENT_NAME", "FlowSightFI"),
			Products:             getEnvList("PLAID_PRODUCTS", []string{"transactions"}),
			CountryCodes:         getEnvList("PLAID_COUNTRY_CODES", []string{"US"}),
			Language:             getEnv("PLAID_LANGUAGE", "en"),
			WebhookURL:           getEnv("PLAID_WEBHOOK_URL", ""),
			Timeout:              getEnvDuration("PLAID_TIMEOUT", 15*time.Second),
			RequestsPerSecond:    getEnvFloat("PLAID_RPS", 10),
			TransactionsPageSize: getEnvInt("PLAID_TRANSACTIONS_PAGE_SIZE", openbanking.MaxTransactionsPageSize),
		},
		Database: DatabaseConfig{
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "flowsight"),
			Password:   getEnv("DB_PASSWORD", ""),
			Database:   getEnv("DB_NAME", "flowsight_link"),
			SSLMode:    getEnv("DB_SSLMODE", "require"),
			MaxConns:   int32(getEnvInt("DB_MAX_CONNS", 10)),
			Timeout:    getEnvDuration("DB_TIMEOUT", 5*time.Second),
			Migrations: getEnv("DB_MIGRATIONS", "file://internal/infrastructure/postgres/migrations"),
		},
		Kafka: KafkaConfig{
			Brokers:      getEnvList("KAFKA_BROKERS", nil),
			ClientID:     getEnv("KAFKA_CLIENT_ID", "link-service"),
			TLS:          getEnvBool("KAFKA_TLS", false),
			SASLUsername: getEnv("KAFKA_SASL_USERNAME", ""),
			SASLPassword: getEnv("KAFKA_SASL_PASSWORD", ""),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", ""),
			JWTPublicKeyFile: getEnv("JWT_PUBLIC_KEY_FILE", ""),
			JWTIssuer:        getEnv("JWT_ISSUER", "flowsight"),
			Required:         getEnvBool("JWT_REQUIRED", false),
		},
		Tracing: TracingConfig{
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: getEnvFloat("OTEL_TRACES_SAMPLE_RATIO", 0.1),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string, defaultVal []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
