package domain

import "time"

// NotificationType identifies what triggered a department notification.
type NotificationType string

const (
	NotificationNewPetition   NotificationType = "new_petition"
	NotificationStatusChange  NotificationType = "status_change"
	NotificationDeadlineAlert NotificationType = "deadline_alert"
)

// Notification is a durable per-department inbox entry.
type Notification struct {
	ID         string
	TicketID   string
	Title      string
	Department string
	Urgency    UrgencyLevel
	Type       NotificationType
	Read       bool
	CreatedAt  time.Time
}
