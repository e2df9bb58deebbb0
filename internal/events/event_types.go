package events

import (
	"time"

	"github.com/civicdesk/petition-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventPetitionCreated       EventType = "petition_created"
	EventPetitionStatusChanged EventType = "petition_status_changed"
	EventDeadlineReminder      EventType = "deadline_reminder"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// PetitionCreatedPayload payload.
type PetitionCreatedPayload struct {
	Title          string              `json:"title"`
	Category       string              `json:"category"`
	Department     string              `json:"department"`
	Urgency        domain.UrgencyLevel `json:"urgency"`
	SubmitterName  string              `json:"submitter_name"`
	SubmitterEmail string              `json:"submitter_email"`
	Deadline       time.Time           `json:"deadline"`
}

// PetitionStatusChangedPayload payload.
type PetitionStatusChangedPayload struct {
	Title           string                `json:"title"`
	Department      string                `json:"department"`
	Urgency         domain.UrgencyLevel   `json:"urgency"`
	OldStatus       domain.PetitionStatus `json:"old_status"`
	NewStatus       domain.PetitionStatus `json:"new_status"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
	SubmitterName   string                `json:"submitter_name"`
	SubmitterEmail  string                `json:"submitter_email"`
}

// DeadlineReminderPayload payload.
type DeadlineReminderPayload struct {
	Title          string              `json:"title"`
	Department     string              `json:"department"`
	Urgency        domain.UrgencyLevel `json:"urgency"`
	HoursRemaining float64             `json:"hours_remaining"`
}
