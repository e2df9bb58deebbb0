package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/civicdesk/petition-service/internal/auth"
	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/repository"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

// DepartmentService manages department accounts and settings.
type DepartmentService struct {
	departments repository.DepartmentRepository
	bcryptCost  int
}

// NewDepartmentService constructs the service.
func NewDepartmentService(departments repository.DepartmentRepository, bcryptCost int) *DepartmentService {
	return &DepartmentService{departments: departments, bcryptCost: bcryptCost}
}

// DepartmentInput describes creation/update payloads.
type DepartmentInput struct {
	Name       string
	Email      string
	Password   string
	Categories []string
	Profile    string
	Phone      string
	Address    string
}

// Create registers a department account with default settings.
// Admin-only.
func (s *DepartmentService) Create(ctx context.Context, input DepartmentInput) (*domain.Department, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	if email == "" {
		return nil, apperrors.NewValidationError("email is required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	if _, err := s.departments.GetByName(ctx, name); err == nil {
		return nil, apperrors.NewConflict("department name already in use", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if _, err := s.departments.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("department email already in use", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	dept := &domain.Department{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Categories:    input.Categories,
		Profile:       strings.TrimSpace(input.Profile),
		Phone:         strings.TrimSpace(input.Phone),
		Address:       strings.TrimSpace(input.Address),
		Notifications: domain.DefaultNotificationSettings(),
		SLA:           domain.DefaultSLASettings(),
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Update modifies a department's profile fields. Empty password keeps
// the current credential.
func (s *DepartmentService) Update(ctx context.Context, id string, input DepartmentInput) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		dept.Name = name
	}
	if email := normalizeEmail(input.Email); email != "" {
		dept.Email = email
	}
	if input.Password != "" {
		if len(input.Password) < 8 {
			return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
		}
		hash, err := auth.HashPassword(input.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		dept.PasswordHash = hash
	}
	if input.Categories != nil {
		dept.Categories = input.Categories
	}
	if profile := strings.TrimSpace(input.Profile); profile != "" {
		dept.Profile = profile
	}
	if phone := strings.TrimSpace(input.Phone); phone != "" {
		dept.Phone = phone
	}
	if address := strings.TrimSpace(input.Address); address != "" {
		dept.Address = address
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}

// Delete removes a department account. Admin-only.
func (s *DepartmentService) Delete(ctx context.Context, id string) error {
	return s.departments.Delete(ctx, id)
}

// Get fetches one department by id.
func (s *DepartmentService) Get(ctx context.Context, id string) (*domain.Department, error) {
	return s.departments.GetByID(ctx, id)
}

// List returns all departments. Used by the public intake form to
// populate the department selector.
func (s *DepartmentService) List(ctx context.Context) ([]domain.Department, error) {
	return s.departments.List(ctx)
}

// GetSettings returns the notification and SLA settings.
func (s *DepartmentService) GetSettings(ctx context.Context, id string) (domain.NotificationSettings, domain.SLASettings, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return domain.NotificationSettings{}, domain.SLASettings{}, err
	}
	return dept.Notifications, dept.SLA, nil
}

// UpdateSettings overwrites the notification and SLA settings.
func (s *DepartmentService) UpdateSettings(ctx context.Context, id string, notifications domain.NotificationSettings, sla domain.SLASettings) (*domain.Department, error) {
	dept, err := s.departments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sla.FirstResponseHours <= 0 || sla.ResolutionDays <= 0 {
		return nil, apperrors.NewValidationError("sla targets must be positive", nil)
	}
	dept.Notifications = notifications
	dept.SLA = sla
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, err
	}
	return dept, nil
}
