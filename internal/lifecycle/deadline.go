package lifecycle

import (
	"strings"
	"time"

	"github.com/civicdesk/petition-service/internal/domain"
)

// Deadline offsets per urgency tier.
const (
	deadlineCritical = 24 * time.Hour
	deadlineHigh     = 72 * time.Hour
	deadlineMedium   = 168 * time.Hour
	deadlineLow      = 336 * time.Hour
)

// DefaultReminderThreshold is the window before a deadline in which
// reminder scans pick a petition up.
const DefaultReminderThreshold = 48 * time.Hour

// ParseUrgency normalizes free-form urgency input. Unknown values map to
// medium, matching the default deadline tier.
func ParseUrgency(raw string) domain.UrgencyLevel {
	switch domain.UrgencyLevel(strings.ToLower(strings.TrimSpace(raw))) {
	case domain.UrgencyCritical:
		return domain.UrgencyCritical
	case domain.UrgencyHigh:
		return domain.UrgencyHigh
	case domain.UrgencyLow:
		return domain.UrgencyLow
	default:
		return domain.UrgencyMedium
	}
}

// ComputeDeadline derives the due-by timestamp from the urgency tier.
func ComputeDeadline(urgency domain.UrgencyLevel, createdAt time.Time) time.Time {
	return createdAt.Add(deadlineOffset(urgency))
}

func deadlineOffset(urgency domain.UrgencyLevel) time.Duration {
	switch urgency {
	case domain.UrgencyCritical:
		return deadlineCritical
	case domain.UrgencyHigh:
		return deadlineHigh
	case domain.UrgencyLow:
		return deadlineLow
	default:
		return deadlineMedium
	}
}

// DeadlineState summarizes where a petition stands relative to its deadline.
type DeadlineState struct {
	HoursRemaining float64
	Overdue        bool
}

// EvaluateDeadline computes remaining hours (negative once past due) and
// the overdue flag. A deadline equal to now is not overdue.
func EvaluateDeadline(deadline, now time.Time) DeadlineState {
	remaining := deadline.Sub(now)
	return DeadlineState{
		HoursRemaining: remaining.Hours(),
		Overdue:        remaining < 0,
	}
}

// NeedsReminder reports whether a petition falls inside the reminder
// window: still actionable and due within the threshold but not yet past
// due. Returns the remaining hours for use in the reminder message.
func NeedsReminder(p *domain.Petition, now time.Time, threshold time.Duration) (float64, bool) {
	if p.Status != domain.PetitionStatusPending && p.Status != domain.PetitionStatusInProgress {
		return 0, false
	}
	remaining := p.Deadline.Sub(now)
	if remaining <= 0 || remaining >= threshold {
		return 0, false
	}
	return remaining.Hours(), true
}

// IsOverdue reports whether an actionable petition has passed its deadline.
func IsOverdue(p *domain.Petition, now time.Time) bool {
	if p.Status != domain.PetitionStatusPending && p.Status != domain.PetitionStatusInProgress {
		return false
	}
	return p.Deadline.Before(now)
}
