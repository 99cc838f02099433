package event

import "github.com/K4nnonn/FlowSightFi/pkg/events"

// LinkEventsTopic is the Kafka topic for bank link lifecycle events.
const LinkEventsTopic = "link-events"

const (
	EventTypeCredentialLinked = "credential.linked"

	AggregateTypeLinkedAccountCredential = "LinkedAccountCredential"
)

// CredentialLinked is emitted once a public token has been exchanged and the
// resulting credential stored. It never carries the access credential.
type CredentialLinked struct {
	events.BaseEvent
	OwnerID string `json:"owner_id"`
	ItemID  string `json:"item_id"`
}

// NewCredentialLinked creates a CredentialLinked event for the credential with the given id.
func NewCredentialLinked(credentialID, ownerID, itemID string) CredentialLinked {
	return CredentialLinked{
		BaseEvent: events.NewBaseEvent(EventTypeCredentialLinked, credentialID, AggregateTypeLinkedAccountCredential),
		OwnerID:   ownerID,
		ItemID:    itemID,
	}
}
