package kafka

import "time"

// Config holds Kafka connection parameters for publishing.
type Config struct {
	Brokers []string

	// ClientID identifies this service to the brokers.
	ClientID string

	// TLS enables TLS for Kafka connections.
	TLS bool

	// SASL PLAIN credentials; SASL is enabled when SASLUsername is set.
	SASLUsername string
	SASLPassword string

	// WriteTimeout bounds a single publish. Zero uses 10s.
	WriteTimeout time.Duration

	// AutoCreateTopics lets writers create missing topics on first publish.
	AutoCreateTopics bool
}

// Enabled reports whether any broker is configured.
func (c Config) Enabled() bool {
	for _, b := range c.Brokers {
		if b != "" {
			return true
		}
	}
	return false
}
