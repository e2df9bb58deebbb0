package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/petition-service/internal/domain"
)

func TestComputeDeadlineByUrgency(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		urgency domain.UrgencyLevel
		hours   int
	}{
		{domain.UrgencyCritical, 24},
		{domain.UrgencyHigh, 72},
		{domain.UrgencyMedium, 168},
		{domain.UrgencyLow, 336},
	}
	for _, tc := range cases {
		t.Run(string(tc.urgency), func(t *testing.T) {
			deadline := ComputeDeadline(tc.urgency, created)
			assert.Equal(t, created.Add(time.Duration(tc.hours)*time.Hour), deadline)
		})
	}
}

func TestComputeDeadlineUnknownUrgencyDefaultsToMedium(t *testing.T) {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	deadline := ComputeDeadline(domain.UrgencyLevel("whenever"), created)
	assert.Equal(t, created.Add(168*time.Hour), deadline)
}

func TestParseUrgency(t *testing.T) {
	assert.Equal(t, domain.UrgencyCritical, ParseUrgency("CRITICAL"))
	assert.Equal(t, domain.UrgencyHigh, ParseUrgency(" High "))
	assert.Equal(t, domain.UrgencyLow, ParseUrgency("low"))
	assert.Equal(t, domain.UrgencyMedium, ParseUrgency("medium"))
	assert.Equal(t, domain.UrgencyMedium, ParseUrgency(""))
	assert.Equal(t, domain.UrgencyMedium, ParseUrgency("urgent-ish"))
}

func TestEvaluateDeadlineAtExactDeadline(t *testing.T) {
	now := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	state := EvaluateDeadline(now, now)
	assert.Equal(t, 0.0, state.HoursRemaining)
	assert.False(t, state.Overdue)
}

func TestEvaluateDeadlinePastDue(t *testing.T) {
	deadline := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	state := EvaluateDeadline(deadline, deadline.Add(90*time.Minute))
	assert.True(t, state.Overdue)
	assert.InDelta(t, -1.5, state.HoursRemaining, 1e-9)
}

func TestCriticalPetitionOverdueAfter25Hours(t *testing.T) {
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	deadline := ComputeDeadline(domain.UrgencyCritical, t0)
	require.Equal(t, t0.Add(24*time.Hour), deadline)

	state := EvaluateDeadline(deadline, t0.Add(25*time.Hour))
	assert.True(t, state.Overdue)
	assert.InDelta(t, -1.0, state.HoursRemaining, 1e-9)
}

func TestNeedsReminderWindow(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	dueSoon := &domain.Petition{
		Status:   domain.PetitionStatusPending,
		Deadline: now.Add(10 * time.Hour),
	}
	hours, ok := NeedsReminder(dueSoon, now, DefaultReminderThreshold)
	require.True(t, ok)
	assert.InDelta(t, 10.0, hours, 1e-9)

	farOut := &domain.Petition{
		Status:   domain.PetitionStatusInProgress,
		Deadline: now.Add(60 * time.Hour),
	}
	_, ok = NeedsReminder(farOut, now, DefaultReminderThreshold)
	assert.False(t, ok)

	resolved := &domain.Petition{
		Status:   domain.PetitionStatusResolved,
		Deadline: now.Add(10 * time.Hour),
	}
	_, ok = NeedsReminder(resolved, now, DefaultReminderThreshold)
	assert.False(t, ok)

	pastDue := &domain.Petition{
		Status:   domain.PetitionStatusPending,
		Deadline: now.Add(-1 * time.Hour),
	}
	_, ok = NeedsReminder(pastDue, now, DefaultReminderThreshold)
	assert.False(t, ok)
}

func TestIsOverdueIgnoresTerminalStatuses(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	past := now.Add(-2 * time.Hour)

	assert.True(t, IsOverdue(&domain.Petition{Status: domain.PetitionStatusPending, Deadline: past}, now))
	assert.True(t, IsOverdue(&domain.Petition{Status: domain.PetitionStatusInProgress, Deadline: past}, now))
	assert.False(t, IsOverdue(&domain.Petition{Status: domain.PetitionStatusResolved, Deadline: past}, now))
	assert.False(t, IsOverdue(&domain.Petition{Status: domain.PetitionStatusRejected, Deadline: past}, now))
}

func TestExtendAndRetractDeadlineRoundTrip(t *testing.T) {
	deadline := time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)
	extended := deadline.Add(36 * time.Hour)
	assert.Equal(t, deadline, extended.Add(-36*time.Hour))
}
