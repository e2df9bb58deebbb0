package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/events"
	"github.com/civicdesk/petition-service/internal/mailer"
	"github.com/civicdesk/petition-service/internal/repository"
)

// NotificationService turns domain events into durable department
// notifications and outbound email. Handler failures are logged and
// never surface to the operation that published the event.
type NotificationService struct {
	notifications repository.NotificationRepository
	departments   repository.DepartmentRepository
	mail          mailer.Dispatcher
	logger        *zap.Logger
}

// NotificationDependencies bundles collaborators.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	DepartmentRepo   repository.DepartmentRepository
	Mail             mailer.Dispatcher
	Logger           *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	return &NotificationService{
		notifications: deps.NotificationRepo,
		departments:   deps.DepartmentRepo,
		mail:          deps.Mail,
		logger:        deps.Logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventPetitionCreated, n.handlePetitionCreated)
	dispatcher.Subscribe(events.EventPetitionStatusChanged, n.handleStatusChanged)
	dispatcher.Subscribe(events.EventDeadlineReminder, n.handleDeadlineReminder)
}

func (n *NotificationService) handlePetitionCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PetitionCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("petition created",
		zap.String("ticket_id", event.TicketID),
		zap.String("department", payload.Department),
		zap.String("urgency", string(payload.Urgency)))

	n.record(ctx, domain.Notification{
		ID:         uuid.NewString(),
		TicketID:   event.TicketID,
		Title:      payload.Title,
		Department: payload.Department,
		Urgency:    payload.Urgency,
		Type:       domain.NotificationNewPetition,
	})

	n.enqueue(mailer.SubmissionAck(payload.SubmitterEmail, payload.SubmitterName, event.TicketID, payload.Title))

	if payload.Urgency != domain.UrgencyHigh && payload.Urgency != domain.UrgencyCritical {
		return nil
	}
	dept, err := n.lookupDepartment(ctx, payload.Department)
	if err != nil || dept == nil {
		return err
	}
	if dept.Notifications.PriorityAlerts {
		n.enqueue(mailer.HighUrgencyAlert(dept.Email, event.TicketID, payload.Title, payload.Category, payload.SubmitterName))
	}
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.PetitionStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("petition status changed",
		zap.String("ticket_id", event.TicketID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))

	n.record(ctx, domain.Notification{
		ID:         uuid.NewString(),
		TicketID:   event.TicketID,
		Title:      payload.Title,
		Department: payload.Department,
		Urgency:    payload.Urgency,
		Type:       domain.NotificationStatusChange,
	})

	if payload.NewStatus == domain.PetitionStatusRejected {
		n.enqueue(mailer.Rejection(payload.SubmitterEmail, payload.SubmitterName, event.TicketID, payload.Title, payload.RejectionReason))
		return nil
	}
	n.enqueue(mailer.StatusChange(payload.SubmitterEmail, payload.SubmitterName, event.TicketID,
		payload.Title, string(payload.OldStatus), string(payload.NewStatus)))
	return nil
}

func (n *NotificationService) handleDeadlineReminder(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.DeadlineReminderPayload)
	if !ok {
		return nil
	}
	n.logger.Info("deadline reminder",
		zap.String("ticket_id", event.TicketID),
		zap.Float64("hours_remaining", payload.HoursRemaining))

	n.record(ctx, domain.Notification{
		ID:         uuid.NewString(),
		TicketID:   event.TicketID,
		Title:      payload.Title,
		Department: payload.Department,
		Urgency:    payload.Urgency,
		Type:       domain.NotificationDeadlineAlert,
	})

	dept, err := n.lookupDepartment(ctx, payload.Department)
	if err != nil || dept == nil {
		return err
	}
	n.enqueue(mailer.DeadlineReminder(dept.Email, event.TicketID, payload.Title, payload.HoursRemaining))
	return nil
}

// ListForDepartment returns a department's inbox, newest first.
func (n *NotificationService) ListForDepartment(ctx context.Context, department string) ([]domain.Notification, error) {
	return n.notifications.ListByDepartment(ctx, department)
}

// UnreadCount reports pending inbox entries for a department.
func (n *NotificationService) UnreadCount(ctx context.Context, department string) (int64, error) {
	return n.notifications.UnreadCount(ctx, department)
}

// MarkRead marks one entry read, scoped to the owning department.
func (n *NotificationService) MarkRead(ctx context.Context, id, department string) error {
	return n.notifications.MarkRead(ctx, id, department)
}

// MarkAllRead marks the whole inbox read and returns how many entries
// changed.
func (n *NotificationService) MarkAllRead(ctx context.Context, department string) (int64, error) {
	return n.notifications.MarkAllRead(ctx, department)
}

func (n *NotificationService) record(ctx context.Context, notification domain.Notification) {
	if err := n.notifications.Create(ctx, &notification); err != nil {
		n.logger.Warn("failed to persist notification",
			zap.String("ticket_id", notification.TicketID),
			zap.String("type", string(notification.Type)),
			zap.Error(err))
	}
}

func (n *NotificationService) lookupDepartment(ctx context.Context, name string) (*domain.Department, error) {
	dept, err := n.departments.GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			n.logger.Warn("department missing for notification", zap.String("department", name))
			return nil, nil
		}
		n.logger.Warn("department lookup failed", zap.String("department", name), zap.Error(err))
		return nil, nil
	}
	return dept, nil
}

func (n *NotificationService) enqueue(msg mailer.Message) {
	if n.mail == nil {
		return
	}
	n.mail.Enqueue(msg)
}
