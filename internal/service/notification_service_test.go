package service

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/events"
	"github.com/civicdesk/petition-service/internal/mailer"
)

type captureMail struct {
	mu   sync.Mutex
	msgs []mailer.Message
}

func (c *captureMail) Enqueue(msg mailer.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, msg)
	return true
}

func (c *captureMail) kinds() []mailer.TemplateKind {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]mailer.TemplateKind, 0, len(c.msgs))
	for _, m := range c.msgs {
		out = append(out, m.Kind)
	}
	return out
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	entries []domain.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *n)
	return nil
}

func (f *fakeNotificationRepo) ListByDepartment(_ context.Context, department string) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for _, n := range f.entries {
		if n.Department == department {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) UnreadCount(_ context.Context, department string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.entries {
		if n.Department == department && !n.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, id, department string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id && f.entries[i].Department == department {
			f.entries[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, department string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var updated int64
	for i := range f.entries {
		if f.entries[i].Department == department && !f.entries[i].Read {
			f.entries[i].Read = true
			updated++
		}
	}
	return updated, nil
}

func newNotificationFixture(departments ...string) (*NotificationService, *fakeNotificationRepo, *captureMail, events.Dispatcher) {
	repo := &fakeNotificationRepo{}
	mail := &captureMail{}
	dispatcher := events.NewInMemoryDispatcher()
	svc := NewNotificationService(NotificationDependencies{
		NotificationRepo: repo,
		DepartmentRepo:   newFakeDepartmentRepo(departments...),
		Mail:             mail,
		Logger:           zap.NewNop(),
	})
	svc.RegisterHandlers(dispatcher)
	return svc, repo, mail, dispatcher
}

func TestCreatedEventRecordsInboxAndAcksSubmitter(t *testing.T) {
	_, repo, mail, dispatcher := newNotificationFixture("Public Works")

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventPetitionCreated,
		TicketID: "PET-AAAA1111",
		Payload: events.PetitionCreatedPayload{
			Title:          "Leaky hydrant",
			Department:     "Public Works",
			Urgency:        domain.UrgencyMedium,
			SubmitterName:  "Jordan",
			SubmitterEmail: "jordan@example.com",
		},
	})
	require.NoError(t, err)

	require.Len(t, repo.entries, 1)
	assert.Equal(t, domain.NotificationNewPetition, repo.entries[0].Type)
	assert.Equal(t, []mailer.TemplateKind{mailer.KindSubmissionAck}, mail.kinds())
}

func TestHighUrgencyCreatedAlsoAlertsDepartment(t *testing.T) {
	_, _, mail, dispatcher := newNotificationFixture("Public Works")

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:     events.EventPetitionCreated,
		TicketID: "PET-BBBB2222",
		Payload: events.PetitionCreatedPayload{
			Title:          "Gas smell near school",
			Department:     "Public Works",
			Urgency:        domain.UrgencyCritical,
			SubmitterName:  "Jordan",
			SubmitterEmail: "jordan@example.com",
		},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]mailer.TemplateKind{mailer.KindSubmissionAck, mailer.KindHighUrgencyAlert},
		mail.kinds())
}

func TestStatusChangePicksTemplateByOutcome(t *testing.T) {
	_, _, mail, dispatcher := newNotificationFixture("Public Works")

	base := events.PetitionStatusChangedPayload{
		Title:          "Leaky hydrant",
		Department:     "Public Works",
		Urgency:        domain.UrgencyMedium,
		OldStatus:      domain.PetitionStatusPending,
		SubmitterName:  "Jordan",
		SubmitterEmail: "jordan@example.com",
	}

	progress := base
	progress.NewStatus = domain.PetitionStatusInProgress
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventPetitionStatusChanged, TicketID: "PET-CCCC3333", Payload: progress,
	}))

	rejected := base
	rejected.NewStatus = domain.PetitionStatusRejected
	rejected.RejectionReason = "duplicate of PET-AAAA1111"
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventPetitionStatusChanged, TicketID: "PET-CCCC3333", Payload: rejected,
	}))

	assert.Equal(t, []mailer.TemplateKind{mailer.KindStatusChange, mailer.KindRejection}, mail.kinds())
}

func TestInboxReadFlow(t *testing.T) {
	svc, _, _, dispatcher := newNotificationFixture("Public Works")

	for i := 0; i < 3; i++ {
		require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
			Type:     events.EventDeadlineReminder,
			TicketID: "PET-DDDD4444",
			Payload: events.DeadlineReminderPayload{
				Title:          "Leaky hydrant",
				Department:     "Public Works",
				Urgency:        domain.UrgencyHigh,
				HoursRemaining: 12,
			},
		}))
	}

	unread, err := svc.UnreadCount(context.Background(), "Public Works")
	require.NoError(t, err)
	assert.Equal(t, int64(3), unread)

	items, err := svc.ListForDepartment(context.Background(), "Public Works")
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.NoError(t, svc.MarkRead(context.Background(), items[0].ID, "Public Works"))
	unread, err = svc.UnreadCount(context.Background(), "Public Works")
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)

	updated, err := svc.MarkAllRead(context.Background(), "Public Works")
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)
}
