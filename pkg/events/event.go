package events

import (
	"strings"
	"time"
)

// Subject prefix shared by every event on the bus
const SubjectPrefix = "events."

const (
	RegistrationApproved = "REGISTRATION_APPROVED"
	RegistrationRejected = "REGISTRATION_REJECTED"
	RegistrationRestored = "REGISTRATION_RESTORED"
	RegistrationDeleted  = "REGISTRATION_DELETED"

	CategoryTransferRequested = "CATEGORY_TRANSFER_REQUESTED"
	CategoryTransferResolved  = "CATEGORY_TRANSFER_RESOLVED"

	ExpiryAlertsSurfaced = "EXPIRY_ALERTS_SURFACED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "REGISTRATION_APPROVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
	// Origin identifies the publishing instance. Empty for locally built events.
	Origin string
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Subject builds the NATS subject for an event type
func Subject(eventType string) string {
	return SubjectPrefix + eventType
}

// TypeFromSubject strips the subject prefix, leaving the event code
func TypeFromSubject(subject string) string {
	return strings.TrimPrefix(subject, SubjectPrefix)
}

// IsRegistrationChange reports whether an event code mutates the registrations table
func IsRegistrationChange(eventType string) bool {
	return strings.HasPrefix(eventType, "REGISTRATION_")
}
