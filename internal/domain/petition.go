package domain

import "time"

// PetitionStatus enumerates lifecycle states for petitions.
type PetitionStatus string

const (
	PetitionStatusPending    PetitionStatus = "pending"
	PetitionStatusInProgress PetitionStatus = "in_progress"
	PetitionStatusResolved   PetitionStatus = "resolved"
	PetitionStatusRejected   PetitionStatus = "rejected"
)

// KnownStatus reports whether the value is one of the four petition states.
func KnownStatus(s PetitionStatus) bool {
	switch s {
	case PetitionStatusPending, PetitionStatusInProgress, PetitionStatusResolved, PetitionStatusRejected:
		return true
	}
	return false
}

// UrgencyLevel enumerates deadline tiers.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// Petition is the aggregate for citizen submissions.
type Petition struct {
	ID              string
	TicketID        string
	UserID          string
	Title           string
	Category        string
	Department      string
	Description     string
	Location        string
	Urgency         UrgencyLevel
	FullName        string
	Email           string
	Phone           string
	Address         string
	Attachments     []string
	Status          PetitionStatus
	RejectionReason *string
	Deadline        time.Time
	LastReminderAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
