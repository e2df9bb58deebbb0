package dto

import (
	"time"

	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/service"
)

// PetitionCreateRequest payload for filing a petition.
type PetitionCreateRequest struct {
	Title       string   `json:"title"`
	Category    string   `json:"category"`
	Department  string   `json:"department"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	Urgency     string   `json:"urgency"`
	FullName    string   `json:"full_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Address     string   `json:"address"`
	Attachments []string `json:"attachments"`
}

// StatusUpdateRequest payload for department status changes.
type StatusUpdateRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejection_reason"`
}

// DeadlineExtendRequest payload for adjusting a deadline.
type DeadlineExtendRequest struct {
	Hours int `json:"hours"`
}

// PetitionResponse is the serialized petition shape.
type PetitionResponse struct {
	TicketID        string    `json:"ticket_id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Department      string    `json:"department"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	Urgency         string    `json:"urgency"`
	FullName        string    `json:"full_name"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	Attachments     []string  `json:"attachments"`
	Status          string    `json:"status"`
	RejectionReason *string   `json:"rejection_reason,omitempty"`
	Deadline        time.Time `json:"deadline"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DeadlineResponse reports the live deadline state.
type DeadlineResponse struct {
	Deadline       time.Time `json:"deadline"`
	HoursRemaining float64   `json:"hours_remaining"`
	Overdue        bool      `json:"overdue"`
}

// NewPetitionResponse converts a domain petition.
func NewPetitionResponse(p *domain.Petition) PetitionResponse {
	return PetitionResponse{
		TicketID:        p.TicketID,
		Title:           p.Title,
		Category:        p.Category,
		Department:      p.Department,
		Description:     p.Description,
		Location:        p.Location,
		Urgency:         string(p.Urgency),
		FullName:        p.FullName,
		Email:           p.Email,
		Phone:           p.Phone,
		Address:         p.Address,
		Attachments:     p.Attachments,
		Status:          string(p.Status),
		RejectionReason: p.RejectionReason,
		Deadline:        p.Deadline,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// NewPetitionListResponse converts a slice of petitions.
func NewPetitionListResponse(items []domain.Petition) []PetitionResponse {
	out := make([]PetitionResponse, 0, len(items))
	for i := range items {
		out = append(out, NewPetitionResponse(&items[i]))
	}
	return out
}

// NewDeadlineResponse converts a tracked petition's deadline state.
func NewDeadlineResponse(t *service.TrackedPetition) DeadlineResponse {
	return DeadlineResponse{
		Deadline:       t.Petition.Deadline,
		HoursRemaining: t.Deadline.HoursRemaining,
		Overdue:        t.Deadline.Overdue,
	}
}
