package service

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/events"
	"github.com/civicdesk/petition-service/internal/lifecycle"
	"github.com/civicdesk/petition-service/internal/repository"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

const maxTicketRetries = 5

// reminderCooldown suppresses repeat reminders for a ticket that was
// already notified in a recent scan.
const reminderCooldown = 24 * time.Hour

// PetitionService coordinates petition workflows.
type PetitionService struct {
	petitions   repository.PetitionRepository
	departments repository.DepartmentRepository
	dispatcher  events.Dispatcher
	now         func() time.Time
}

// PetitionDependencies bundles collaborators for the petition service.
type PetitionDependencies struct {
	PetitionRepo   repository.PetitionRepository
	DepartmentRepo repository.DepartmentRepository
	Dispatcher     events.Dispatcher
	Clock          func() time.Time
}

// PetitionCreateInput describes petition submission payload.
type PetitionCreateInput struct {
	Title       string
	Category    string
	Department  string
	Description string
	Location    string
	Urgency     string
	FullName    string
	Email       string
	Phone       string
	Address     string
	Attachments []string
}

// PetitionSearchFilter describes department/admin search parameters.
type PetitionSearchFilter struct {
	Department  *string
	Statuses    []domain.PetitionStatus
	Urgencies   []domain.UrgencyLevel
	Category    *string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// StatusUpdateResult reports the transition an update performed.
type StatusUpdateResult struct {
	Petition  *domain.Petition
	OldStatus domain.PetitionStatus
	NewStatus domain.PetitionStatus
}

// TrackedPetition pairs a petition with its live deadline state.
type TrackedPetition struct {
	Petition *domain.Petition
	Deadline lifecycle.DeadlineState
}

// NewPetitionService constructs the service.
func NewPetitionService(deps PetitionDependencies) *PetitionService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &PetitionService{
		petitions:   deps.PetitionRepo,
		departments: deps.DepartmentRepo,
		dispatcher:  deps.Dispatcher,
		now:         clock,
	}
}

// Create files a petition for a citizen, assigns its ticket number and
// computes the deadline from the requested urgency.
func (s *PetitionService) Create(ctx context.Context, userID string, input PetitionCreateInput) (*domain.Petition, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title is required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	if strings.TrimSpace(input.Department) == "" {
		return nil, apperrors.NewValidationError("department is required", nil)
	}
	if _, err := s.departments.GetByName(ctx, input.Department); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("unknown department", map[string]any{"department": input.Department})
		}
		return nil, err
	}

	urgency := lifecycle.ParseUrgency(input.Urgency)
	createdAt := s.now()

	petition := &domain.Petition{
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		Category:    strings.TrimSpace(input.Category),
		Department:  input.Department,
		Description: strings.TrimSpace(input.Description),
		Location:    strings.TrimSpace(input.Location),
		Urgency:     urgency,
		FullName:    strings.TrimSpace(input.FullName),
		Email:       strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:       strings.TrimSpace(input.Phone),
		Address:     strings.TrimSpace(input.Address),
		Attachments: input.Attachments,
		Status:      domain.PetitionStatusPending,
		Deadline:    lifecycle.ComputeDeadline(urgency, createdAt),
	}

	var err error
	for attempt := 0; attempt < maxTicketRetries; attempt++ {
		petition.TicketID = generateTicketID()
		err = s.petitions.Create(ctx, petition)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrDuplicateTicket) {
			return nil, err
		}
	}
	if err != nil {
		return nil, apperrors.NewInternalError(errors.New("exhausted ticket id attempts"))
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventPetitionCreated,
		TicketID: petition.TicketID,
		Payload: events.PetitionCreatedPayload{
			Title:          petition.Title,
			Category:       petition.Category,
			Department:     petition.Department,
			Urgency:        petition.Urgency,
			SubmitterName:  petition.FullName,
			SubmitterEmail: petition.Email,
			Deadline:       petition.Deadline,
		},
	})
	return petition, nil
}

// Track resolves a ticket number to its petition and deadline state.
// Tracking is public: anyone holding the ticket number may look it up.
func (s *PetitionService) Track(ctx context.Context, ticketID string) (*TrackedPetition, error) {
	petition, err := s.petitions.GetByTicket(ctx, strings.ToUpper(strings.TrimSpace(ticketID)))
	if err != nil {
		return nil, err
	}
	return &TrackedPetition{
		Petition: petition,
		Deadline: lifecycle.EvaluateDeadline(petition.Deadline, s.now()),
	}, nil
}

// ListForUser returns a citizen's own petitions, newest first.
func (s *PetitionService) ListForUser(ctx context.Context, userID string) ([]domain.Petition, error) {
	return s.petitions.ListByUser(ctx, userID)
}

// ListForDepartment returns every petition routed to a department.
func (s *PetitionService) ListForDepartment(ctx context.Context, department string) ([]domain.Petition, error) {
	return s.petitions.ListByDepartment(ctx, department)
}

// Search applies filters for department or admin views and reports the
// matching total for pagination.
func (s *PetitionService) Search(ctx context.Context, filter PetitionSearchFilter) ([]domain.Petition, int64, error) {
	repoFilter := repository.PetitionFilter{
		Department:  filter.Department,
		Statuses:    filter.Statuses,
		Urgencies:   filter.Urgencies,
		Category:    filter.Category,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	items, err := s.petitions.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.petitions.CountWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// UpdateStatus transitions a petition on behalf of its department.
// Rejections require a reason; re-applying the current status returns a
// NO_CHANGE error without touching the record.
func (s *PetitionService) UpdateStatus(ctx context.Context, department, ticketID string, requested domain.PetitionStatus, rejectionReason string) (*StatusUpdateResult, error) {
	petition, err := s.petitions.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if petition.Department != department {
		return nil, apperrors.NewForbidden("petition belongs to another department")
	}
	if err := lifecycle.ValidateTransition(petition.Status, requested, rejectionReason); err != nil {
		return nil, err
	}

	var reason *string
	if requested == domain.PetitionStatusRejected {
		trimmed := strings.TrimSpace(rejectionReason)
		reason = &trimmed
	}

	affected, err := s.petitions.UpdateStatus(ctx, ticketID, requested, reason)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, apperrors.NewNoChange("petition already has the requested status")
	}

	oldStatus := petition.Status
	petition.Status = requested
	petition.RejectionReason = reason
	petition.UpdatedAt = s.now()

	// A reason-only edit on an already-rejected petition persists but is
	// not a transition, so the citizen is not re-notified.
	if oldStatus != requested {
		payload := events.PetitionStatusChangedPayload{
			Title:          petition.Title,
			Department:     petition.Department,
			Urgency:        petition.Urgency,
			OldStatus:      oldStatus,
			NewStatus:      requested,
			SubmitterName:  petition.FullName,
			SubmitterEmail: petition.Email,
		}
		if reason != nil {
			payload.RejectionReason = *reason
		}
		s.publishEvent(ctx, events.Event{
			Type:     events.EventPetitionStatusChanged,
			TicketID: petition.TicketID,
			Payload:  payload,
		})
	}

	return &StatusUpdateResult{
		Petition:  petition,
		OldStatus: oldStatus,
		NewStatus: requested,
	}, nil
}

// DeadlineInfo returns the deadline state for a department's petition.
func (s *PetitionService) DeadlineInfo(ctx context.Context, department, ticketID string) (*TrackedPetition, error) {
	petition, err := s.petitions.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if petition.Department != department {
		return nil, apperrors.NewForbidden("petition belongs to another department")
	}
	return &TrackedPetition{
		Petition: petition,
		Deadline: lifecycle.EvaluateDeadline(petition.Deadline, s.now()),
	}, nil
}

// ExtendDeadline pushes a petition's deadline forward by whole hours.
// Negative values retract the deadline. Reminder and overdue
// evaluation follow the stored deadline, so an extension can move a
// petition out of the reminder window and a retraction back into it.
func (s *PetitionService) ExtendDeadline(ctx context.Context, department, ticketID string, hours int) (*TrackedPetition, error) {
	if hours == 0 {
		return nil, apperrors.NewValidationError("hours must be non-zero", nil)
	}
	petition, err := s.petitions.GetByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if petition.Department != department {
		return nil, apperrors.NewForbidden("petition belongs to another department")
	}
	newDeadline := petition.Deadline.Add(time.Duration(hours) * time.Hour)
	if _, err := s.petitions.UpdateDeadline(ctx, ticketID, newDeadline); err != nil {
		return nil, err
	}
	petition.Deadline = newDeadline
	return &TrackedPetition{
		Petition: petition,
		Deadline: lifecycle.EvaluateDeadline(newDeadline, s.now()),
	}, nil
}

// OverduePetitions lists open petitions whose deadline has passed. A
// nil department scans every department (the admin view).
func (s *PetitionService) OverduePetitions(ctx context.Context, department *string) ([]TrackedPetition, error) {
	items, err := s.petitions.ListWithFilter(ctx, repository.PetitionFilter{
		Department: department,
		Statuses:   []domain.PetitionStatus{domain.PetitionStatusPending, domain.PetitionStatusInProgress},
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	overdue := make([]TrackedPetition, 0)
	for i := range items {
		if !lifecycle.IsOverdue(&items[i], now) {
			continue
		}
		overdue = append(overdue, TrackedPetition{
			Petition: &items[i],
			Deadline: lifecycle.EvaluateDeadline(items[i].Deadline, now),
		})
	}
	return overdue, nil
}

// SendDeadlineReminders scans open petitions and emits a reminder event
// for each one inside the reminder window. Tickets reminded within the
// cooldown are skipped, so hourly scans do not re-notify the same
// petition all day. It returns how many reminders were dispatched.
func (s *PetitionService) SendDeadlineReminders(ctx context.Context) (int, error) {
	items, err := s.petitions.ListWithFilter(ctx, repository.PetitionFilter{
		Statuses: []domain.PetitionStatus{domain.PetitionStatusPending, domain.PetitionStatusInProgress},
	})
	if err != nil {
		return 0, err
	}

	now := s.now()
	sent := 0
	for i := range items {
		hours, due := lifecycle.NeedsReminder(&items[i], now, lifecycle.DefaultReminderThreshold)
		if !due {
			continue
		}
		if last := items[i].LastReminderAt; last != nil && now.Sub(*last) < reminderCooldown {
			continue
		}
		s.publishEvent(ctx, events.Event{
			Type:     events.EventDeadlineReminder,
			TicketID: items[i].TicketID,
			Payload: events.DeadlineReminderPayload{
				Title:          items[i].Title,
				Department:     items[i].Department,
				Urgency:        items[i].Urgency,
				HoursRemaining: hours,
			},
		})
		if err := s.petitions.MarkReminderSent(ctx, items[i].TicketID, now); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}

const ticketAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateTicketID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back to
		// a uuid-derived suffix just in case.
		return "PET-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	}
	for i, b := range buf {
		buf[i] = ticketAlphabet[int(b)%len(ticketAlphabet)]
	}
	return "PET-" + string(buf)
}

func (s *PetitionService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
