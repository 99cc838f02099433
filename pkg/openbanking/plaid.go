package openbanking

import "strings"

// Plaid environments.
const (
	EnvironmentSandbox     = "sandbox"
	EnvironmentDevelopment = "development"
	EnvironmentProduction  = "production"
)

// MaxTransactionsPageSize is the largest page /transactions/get will return.
const MaxTransactionsPageSize = 500

var environmentBaseURLs = map[string]string{
	EnvironmentSandbox:     "https://sandbox.plaid.com",
	EnvironmentDevelopment: "https://development.plaid.com",
	EnvironmentProduction:  "https://production.plaid.com",
}

// PlaidConfig holds configuration for the Plaid client.
type PlaidConfig struct {
	ClientID     string
	Secret       string
	Environment  string
	BaseURL      string
	ClientName   string
	WebhookURL   string
	Language     string
	Products     []string
	CountryCodes []string
}

// DefaultPlaidConfig returns configuration defaults for the Plaid sandbox.
func DefaultPlaidConfig() PlaidConfig {
	return PlaidConfig{
		Environment:  EnvironmentSandbox,
		BaseURL:      environmentBaseURLs[EnvironmentSandbox],
		ClientName:   "FlowSightFI",
		Products:     []string{"transactions"},
		CountryCodes: []string{"US"},
		Language:     "en",
	}
}

// BaseURLForEnvironment returns the API host for a Plaid environment name.
// Unknown names fall back to the sandbox host.
func BaseURLForEnvironment(env string) string {
	if u, ok := environmentBaseURLs[strings.ToLower(env)]; ok {
		return u
	}
	return environmentBaseURLs[EnvironmentSandbox]
}

// ResolvedBaseURL returns BaseURL when set, otherwise the host for Environment.
func (c PlaidConfig) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return BaseURLForEnvironment(c.Environment)
}
