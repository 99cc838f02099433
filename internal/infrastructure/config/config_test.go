package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "link-service", cfg.ServiceName)
	assert.Equal(t, "sandbox", cfg.Plaid.Environment)
	assert.Equal(t, "FlowSightFI", cfg.Plaid.ClientName)
	assert.Equal(t, []string{"transactions"}, cfg.Plaid.Products)
	assert.Equal(t, []string{"US"}, cfg.Plaid.CountryCodes)
	assert.Equal(t, "en", cfg.Plaid.Language)
	assert.Equal(t, 15*time.Second, cfg.Plaid.Timeout)
	assert.Equal(t, 500, cfg.Plaid.TransactionsPageSize)
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.Auth.Required)
	assert.Empty(t, cfg.Tracing.Endpoint)
	assert.Equal(t, 0.1, cfg.Tracing.SampleRatio)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("PLAID_ENV", "Production")
	t.Setenv("PLAID_PRODUCTS", "transactions, auth ,")
	t.Setenv("PLAID_TIMEOUT", "3s")
	t.Setenv("PLAID_RPS", "2.5")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JWT_REQUIRED", "true")
	t.Setenv("DB_TIMEOUT", "not-a-duration")

	cfg := Load()

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "production", cfg.Plaid.Environment)
	assert.Equal(t, []string{"transactions", "auth"}, cfg.Plaid.Products)
	assert.Equal(t, 3*time.Second, cfg.Plaid.Timeout)
	assert.Equal(t, 2.5, cfg.Plaid.RequestsPerSecond)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Auth.Required)
	assert.Equal(t, 5*time.Second, cfg.Database.Timeout)
	assert.Equal(t, "https://production.plaid.com", cfg.Plaid.OpenBanking().ResolvedBaseURL())
}

func validConfig() Config {
	cfg := Load()
	cfg.Plaid.ClientID = "client"
	cfg.Plaid.Secret = "secret"
	cfg.Database.Password = "pw"
	cfg.CredentialSealingKey = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="
	return cfg
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	t.Run("reports every missing value", func(t *testing.T) {
		cfg := validConfig()
		cfg.Plaid.ClientID = ""
		cfg.Plaid.Secret = ""
		cfg.Database.Password = ""

		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PLAID_CLIENT_ID")
		assert.Contains(t, err.Error(), "PLAID_SECRET")
		assert.Contains(t, err.Error(), "DB_PASSWORD")
	})

	t.Run("stub needs no plaid credentials or sealing key", func(t *testing.T) {
		cfg := validConfig()
		cfg.Plaid.Environment = EnvironmentStub
		cfg.Plaid.ClientID = ""
		cfg.Plaid.Secret = ""
		cfg.CredentialSealingKey = ""
		assert.NoError(t, cfg.Validate())
		assert.True(t, cfg.Plaid.Stub())
	})

	t.Run("real environment needs a sealing key", func(t *testing.T) {
		cfg := validConfig()
		cfg.CredentialSealingKey = ""
		assert.ErrorContains(t, cfg.Validate(), "CREDENTIAL_SEALING_KEY")
	})

	t.Run("unknown environment", func(t *testing.T) {
		cfg := validConfig()
		cfg.Plaid.Environment = "staging"
		assert.ErrorContains(t, cfg.Validate(), "PLAID_ENV")
	})

	t.Run("required auth needs key material", func(t *testing.T) {
		cfg := validConfig()
		cfg.Auth.Required = true
		assert.ErrorContains(t, cfg.Validate(), "JWT_REQUIRED")
	})

	t.Run("sample ratio out of range", func(t *testing.T) {
		cfg := validConfig()
		cfg.Tracing.SampleRatio = 1.5
		assert.ErrorContains(t, cfg.Validate(), "OTEL_TRACES_SAMPLE_RATIO")
	})
}
