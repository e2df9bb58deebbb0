package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/events"
	"github.com/civicdesk/petition-service/internal/repository"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

type fakePetitionRepo struct {
	mu         sync.Mutex
	byTicket   map[string]*domain.Petition
	duplicates int
}

func newFakePetitionRepo() *fakePetitionRepo {
	return &fakePetitionRepo{byTicket: map[string]*domain.Petition{}}
}

func (f *fakePetitionRepo) Create(_ context.Context, p *domain.Petition) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.duplicates > 0 {
		f.duplicates--
		return repository.ErrDuplicateTicket
	}
	if _, exists := f.byTicket[p.TicketID]; exists {
		return repository.ErrDuplicateTicket
	}
	p.ID = uuid.NewString()
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	clone := *p
	f.byTicket[p.TicketID] = &clone
	return nil
}

func (f *fakePetitionRepo) GetByTicket(_ context.Context, ticketID string) (*domain.Petition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byTicket[ticketID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (f *fakePetitionRepo) ListByUser(_ context.Context, userID string) ([]domain.Petition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Petition
	for _, p := range f.byTicket {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePetitionRepo) ListByDepartment(_ context.Context, department string) ([]domain.Petition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Petition
	for _, p := range f.byTicket {
		if p.Department == department {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePetitionRepo) ListWithFilter(_ context.Context, filter repository.PetitionFilter) ([]domain.Petition, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Petition
	for _, p := range f.byTicket {
		if filter.Department != nil && p.Department != *filter.Department {
			continue
		}
		if filter.UserID != nil && p.UserID != *filter.UserID {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, p.Status) {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakePetitionRepo) CountWithFilter(ctx context.Context, filter repository.PetitionFilter) (int64, error) {
	items, err := f.ListWithFilter(ctx, filter)
	return int64(len(items)), err
}

func (f *fakePetitionRepo) CategoryCounts(context.Context, string, int) ([]repository.CategoryCount, error) {
	return nil, nil
}

func (f *fakePetitionRepo) UpdateStatus(_ context.Context, ticketID string, status domain.PetitionStatus, rejectionReason *string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byTicket[ticketID]
	if !ok {
		return 0, nil
	}
	sameReason := rejectionReason == nil ||
		(p.RejectionReason != nil && *p.RejectionReason == *rejectionReason)
	if p.Status == status && sameReason {
		return 0, nil
	}
	p.Status = status
	if rejectionReason != nil {
		p.RejectionReason = rejectionReason
	}
	p.UpdatedAt = time.Now()
	return 1, nil
}

func (f *fakePetitionRepo) UpdateDeadline(_ context.Context, ticketID string, deadline time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byTicket[ticketID]
	if !ok {
		return 0, nil
	}
	p.Deadline = deadline
	return 1, nil
}

func (f *fakePetitionRepo) MarkReminderSent(_ context.Context, ticketID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.byTicket[ticketID]; ok {
		stamp := at
		p.LastReminderAt = &stamp
	}
	return nil
}

func containsStatus(list []domain.PetitionStatus, s domain.PetitionStatus) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

type fakeDepartmentRepo struct {
	byName map[string]*domain.Department
}

func newFakeDepartmentRepo(names ...string) *fakeDepartmentRepo {
	f := &fakeDepartmentRepo{byName: map[string]*domain.Department{}}
	for _, name := range names {
		f.byName[name] = &domain.Department{
			ID:            uuid.NewString(),
			Name:          name,
			Email:         strings.ToLower(name) + "@city.test",
			Notifications: domain.DefaultNotificationSettings(),
			SLA:           domain.DefaultSLASettings(),
		}
	}
	return f
}

func (f *fakeDepartmentRepo) Create(_ context.Context, d *domain.Department) error {
	d.ID = uuid.NewString()
	f.byName[d.Name] = d
	return nil
}

func (f *fakeDepartmentRepo) Update(_ context.Context, d *domain.Department) error {
	f.byName[d.Name] = d
	return nil
}

func (f *fakeDepartmentRepo) Delete(context.Context, string) error { return nil }

func (f *fakeDepartmentRepo) GetByID(_ context.Context, id string) (*domain.Department, error) {
	for _, d := range f.byName {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeDepartmentRepo) GetByEmail(_ context.Context, email string) (*domain.Department, error) {
	for _, d := range f.byName {
		if d.Email == email {
			return d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeDepartmentRepo) GetByName(_ context.Context, name string) (*domain.Department, error) {
	if d, ok := f.byName[name]; ok {
		return d, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeDepartmentRepo) List(context.Context) ([]domain.Department, error) {
	var out []domain.Department
	for _, d := range f.byName {
		out = append(out, *d)
	}
	return out, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (r *recordingDispatcher) byType(t events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func newTestService(now time.Time, departments ...string) (*PetitionService, *fakePetitionRepo, *recordingDispatcher) {
	repo := newFakePetitionRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewPetitionService(PetitionDependencies{
		PetitionRepo:   repo,
		DepartmentRepo: newFakeDepartmentRepo(departments...),
		Dispatcher:     dispatcher,
		Clock:          func() time.Time { return now },
	})
	return svc, repo, dispatcher
}

func validInput() PetitionCreateInput {
	return PetitionCreateInput{
		Title:       "Broken streetlight on Elm Street",
		Category:    "Infrastructure",
		Department:  "Public Works",
		Description: "The light at Elm and 5th has been out for a week.",
		Urgency:     "high",
		FullName:    "Jordan Reyes",
		Email:       "jordan@example.com",
	}
}

func TestCreateAssignsTicketAndDeadline(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, dispatcher := newTestService(now, "Public Works")

	petition, err := svc.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(petition.TicketID, "PET-"))
	assert.Len(t, petition.TicketID, 12)
	assert.Equal(t, domain.PetitionStatusPending, petition.Status)
	assert.Equal(t, domain.UrgencyHigh, petition.Urgency)
	assert.Equal(t, now.Add(72*time.Hour), petition.Deadline)

	created := dispatcher.byType(events.EventPetitionCreated)
	require.Len(t, created, 1)
	assert.Equal(t, petition.TicketID, created[0].TicketID)
}

func TestCreateUnknownUrgencyDefaultsToMedium(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now, "Public Works")

	input := validInput()
	input.Urgency = "whenever"
	petition, err := svc.Create(context.Background(), "user-1", input)
	require.NoError(t, err)
	assert.Equal(t, domain.UrgencyMedium, petition.Urgency)
	assert.Equal(t, now.Add(168*time.Hour), petition.Deadline)
}

func TestCreateRetriesOnDuplicateTicket(t *testing.T) {
	now := time.Now()
	svc, repo, _ := newTestService(now, "Public Works")
	repo.duplicates = 2

	petition, err := svc.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)
	assert.NotEmpty(t, petition.TicketID)
}

func TestCreateRejectsUnknownDepartment(t *testing.T) {
	svc, _, _ := newTestService(time.Now(), "Public Works")

	input := validInput()
	input.Department = "Bureau of Nothing"
	_, err := svc.Create(context.Background(), "user-1", input)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestUpdateStatusRejectionRequiresReason(t *testing.T) {
	svc, _, _ := newTestService(time.Now(), "Public Works")
	petition, err := svc.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "Public Works", petition.TicketID, domain.PetitionStatusRejected, "   ")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))
}

func TestUpdateStatusRejectionFlow(t *testing.T) {
	svc, _, dispatcher := newTestService(time.Now(), "Public Works")
	petition, err := svc.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	result, err := svc.UpdateStatus(context.Background(), "Public Works", petition.TicketID, domain.PetitionStatusRejected, "outside our jurisdiction")
	require.NoError(t, err)

	assert.Equal(t, domain.PetitionStatusPending, result.OldStatus)
	assert.Equal(t, domain.PetitionStatusRejected, result.NewStatus)
	require.NotNil(t, result.Petition.RejectionReason)
	assert.Equal(t, "outside our jurisdiction", *result.Petition.RejectionReason)

	changed := dispatcher.byType(events.EventPetitionStatusChanged)
	require.Len(t, changed, 1)
	payload, ok := changed[0].Payload.(events.PetitionStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, "outside our jurisdiction", payload.RejectionReason)
}

func TestUpdateStatusIdempotentRequestIsNoChange(t *testing.T) {
	svc, _, dispatcher := newTestService(time.Now(), "Public Works")
	petition, err := svc.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "Public Works", petition.TicketID, domain.PetitionStatusInProgress, "")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "Public Works", petition.TicketID, domain.PetitionStatusInProgress, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NO_CHANGE"))
	// only the first update emitted an event
	assert.Len(t, dispatcher.byType(events.EventPetitionStatusChanged), 1)
}

func TestUpdateStatusReasonOnlyEditDoesNotRenotify(t *testing.T) {
	svc, _, dispatcher := newTestService(time.Now(), "Public Works")
	petition, err := svc.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "Public Works", petition.TicketID, domain.PetitionStatusRejected, "first reason")
	require.NoError(t, err)

	// amending the reason persists but is not a transition
	result, err := svc.UpdateStatus(context.Background(), "Public Works", petition.TicketID, domain.PetitionStatusRejected, "second, different reason")
	require.NoError(t, err)
	require.NotNil(t, result.Petition.RejectionReason)
	assert.Equal(t, "second, different reason", *result.Petition.RejectionReason)

	changed := dispatcher.byType(events.EventPetitionStatusChanged)
	require.Len(t, changed, 1)
	payload, ok := changed[0].Payload.(events.PetitionStatusChangedPayload)
	require.True(t, ok)
	assert.NotEqual(t, payload.OldStatus, payload.NewStatus)
	assert.Equal(t, "first reason", payload.RejectionReason)
}

func TestUpdateStatusForeignDepartmentForbidden(t *testing.T) {
	svc, _, _ := newTestService(time.Now(), "Public Works", "Sanitation")
	petition, err := svc.Create(context.Background(), "user-1", validInput())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), "Sanitation", petition.TicketID, domain.PetitionStatusResolved, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestUpdateStatusUnknownTicketNotFound(t *testing.T) {
	svc, _, _ := newTestService(time.Now(), "Public Works")
	_, err := svc.UpdateStatus(context.Background(), "Public Works", "PET-MISSING1", domain.PetitionStatusResolved, "")
	require.Error(t, err)
}

func TestSendDeadlineRemindersWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, dispatcher := newTestService(now, "Public Works")

	seed := func(ticket string, status domain.PetitionStatus, deadline time.Time) {
		repo.byTicket[ticket] = &domain.Petition{
			TicketID:   ticket,
			Department: "Public Works",
			Status:     status,
			Urgency:    domain.UrgencyHigh,
			Deadline:   deadline,
		}
	}
	seed("PET-INWINDOW", domain.PetitionStatusPending, now.Add(10*time.Hour))
	seed("PET-INPROGRS", domain.PetitionStatusInProgress, now.Add(47*time.Hour))
	seed("PET-FARAWAYX", domain.PetitionStatusPending, now.Add(60*time.Hour))
	seed("PET-OVERDUEX", domain.PetitionStatusPending, now.Add(-1*time.Hour))
	seed("PET-RESOLVED", domain.PetitionStatusResolved, now.Add(10*time.Hour))

	sent, err := svc.SendDeadlineReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, sent)

	reminders := dispatcher.byType(events.EventDeadlineReminder)
	require.Len(t, reminders, 2)
	tickets := []string{reminders[0].TicketID, reminders[1].TicketID}
	assert.ElementsMatch(t, []string{"PET-INWINDOW", "PET-INPROGRS"}, tickets)
}

func TestSendDeadlineRemindersCooldownSuppressesRepeats(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	current := start
	repo := newFakePetitionRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewPetitionService(PetitionDependencies{
		PetitionRepo:   repo,
		DepartmentRepo: newFakeDepartmentRepo("Public Works"),
		Dispatcher:     dispatcher,
		Clock:          func() time.Time { return current },
	})
	repo.byTicket["PET-REPEATED"] = &domain.Petition{
		TicketID:   "PET-REPEATED",
		Department: "Public Works",
		Status:     domain.PetitionStatusPending,
		Urgency:    domain.UrgencyHigh,
		Deadline:   start.Add(40 * time.Hour),
	}

	sent, err := svc.SendDeadlineReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	// an hour later the ticket is still in the window but was just
	// reminded, so the scan skips it
	current = start.Add(time.Hour)
	sent, err = svc.SendDeadlineReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	// once the cooldown lapses it is reminded again
	current = start.Add(25 * time.Hour)
	sent, err = svc.SendDeadlineReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Len(t, dispatcher.byType(events.EventDeadlineReminder), 2)
}

func TestExtendDeadlineMovesOutOfReminderWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, dispatcher := newTestService(now, "Public Works")
	repo.byTicket["PET-SOONDUEX"] = &domain.Petition{
		TicketID:   "PET-SOONDUEX",
		Department: "Public Works",
		Status:     domain.PetitionStatusPending,
		Deadline:   now.Add(10 * time.Hour),
	}

	tracked, err := svc.ExtendDeadline(context.Background(), "Public Works", "PET-SOONDUEX", 72)
	require.NoError(t, err)
	assert.InDelta(t, 82.0, tracked.Deadline.HoursRemaining, 0.01)

	sent, err := svc.SendDeadlineReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, dispatcher.byType(events.EventDeadlineReminder))

	// retracting pulls it back inside the window
	_, err = svc.ExtendDeadline(context.Background(), "Public Works", "PET-SOONDUEX", -72)
	require.NoError(t, err)
	sent, err = svc.SendDeadlineReminders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestTrackReportsDeadlineState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestService(now, "Public Works")
	repo.byTicket["PET-TRACKED1"] = &domain.Petition{
		TicketID:   "PET-TRACKED1",
		Department: "Public Works",
		Status:     domain.PetitionStatusPending,
		Deadline:   now.Add(-90 * time.Minute),
	}

	tracked, err := svc.Track(context.Background(), "pet-tracked1")
	require.NoError(t, err)
	assert.True(t, tracked.Deadline.Overdue)
	assert.InDelta(t, -1.5, tracked.Deadline.HoursRemaining, 0.01)
}

func TestOverduePetitionsSkipsTerminalStatuses(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestService(now, "Public Works")
	repo.byTicket["PET-LATEOPEN"] = &domain.Petition{
		TicketID:   "PET-LATEOPEN",
		Department: "Public Works",
		Status:     domain.PetitionStatusPending,
		Deadline:   now.Add(-2 * time.Hour),
	}
	repo.byTicket["PET-LATEDONE"] = &domain.Petition{
		TicketID:   "PET-LATEDONE",
		Department: "Public Works",
		Status:     domain.PetitionStatusResolved,
		Deadline:   now.Add(-2 * time.Hour),
	}

	dept := "Public Works"
	overdue, err := svc.OverduePetitions(context.Background(), &dept)
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "PET-LATEOPEN", overdue[0].Petition.TicketID)
}

func TestOverduePetitionsNilDepartmentSpansAll(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _ := newTestService(now, "Public Works", "Sanitation")
	repo.byTicket["PET-LATEPUBW"] = &domain.Petition{
		TicketID:   "PET-LATEPUBW",
		Department: "Public Works",
		Status:     domain.PetitionStatusPending,
		Deadline:   now.Add(-2 * time.Hour),
	}
	repo.byTicket["PET-LATESANI"] = &domain.Petition{
		TicketID:   "PET-LATESANI",
		Department: "Sanitation",
		Status:     domain.PetitionStatusInProgress,
		Deadline:   now.Add(-30 * time.Minute),
	}
	repo.byTicket["PET-ONTIMEXX"] = &domain.Petition{
		TicketID:   "PET-ONTIMEXX",
		Department: "Sanitation",
		Status:     domain.PetitionStatusPending,
		Deadline:   now.Add(4 * time.Hour),
	}

	overdue, err := svc.OverduePetitions(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	tickets := []string{overdue[0].Petition.TicketID, overdue[1].Petition.TicketID}
	assert.ElementsMatch(t, []string{"PET-LATEPUBW", "PET-LATESANI"}, tickets)
}
