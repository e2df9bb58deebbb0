package dto

import (
	"time"

	"github.com/civicdesk/petition-service/internal/domain"
)

// NotificationResponse is one department inbox entry.
type NotificationResponse struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	Title     string    `json:"title"`
	Urgency   string    `json:"urgency"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationListResponse converts inbox entries.
func NewNotificationListResponse(items []domain.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			TicketID:  n.TicketID,
			Title:     n.Title,
			Urgency:   string(n.Urgency),
			Type:      string(n.Type),
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
