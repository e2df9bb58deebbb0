package dto

import (
	"time"

	"github.com/civicdesk/petition-service/internal/domain"
)

// DepartmentRequest payload for admin create/update of a department.
type DepartmentRequest struct {
	Name       string   `json:"name"`
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	Categories []string `json:"categories"`
	Profile    string   `json:"profile"`
	Phone      string   `json:"phone"`
	Address    string   `json:"address"`
}

// SettingsRequest payload for department settings updates.
type SettingsRequest struct {
	Notifications domain.NotificationSettings `json:"notifications"`
	SLA           domain.SLASettings          `json:"sla"`
}

// DepartmentResponse is the serialized department shape. The password
// hash never leaves the service.
type DepartmentResponse struct {
	ID            string                      `json:"id"`
	Name          string                      `json:"name"`
	Email         string                      `json:"email"`
	Categories    []string                    `json:"categories"`
	Profile       string                      `json:"profile"`
	Phone         string                      `json:"phone"`
	Address       string                      `json:"address"`
	Notifications domain.NotificationSettings `json:"notifications"`
	SLA           domain.SLASettings          `json:"sla"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// PublicDepartment is the reduced shape shown on the intake form.
type PublicDepartment struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	Profile    string   `json:"profile"`
}

// NewDepartmentResponse converts a domain department.
func NewDepartmentResponse(d *domain.Department) DepartmentResponse {
	return DepartmentResponse{
		ID:            d.ID,
		Name:          d.Name,
		Email:         d.Email,
		Categories:    d.Categories,
		Profile:       d.Profile,
		Phone:         d.Phone,
		Address:       d.Address,
		Notifications: d.Notifications,
		SLA:           d.SLA,
		CreatedAt:     d.CreatedAt,
	}
}

// NewPublicDepartmentList converts departments for the public listing.
func NewPublicDepartmentList(items []domain.Department) []PublicDepartment {
	out := make([]PublicDepartment, 0, len(items))
	for i := range items {
		out = append(out, PublicDepartment{
			Name:       items[i].Name,
			Categories: items[i].Categories,
			Profile:    items[i].Profile,
		})
	}
	return out
}
