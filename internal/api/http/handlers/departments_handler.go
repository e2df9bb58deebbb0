package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/petition-service/internal/api/dto"
	"github.com/civicdesk/petition-service/internal/auth"
	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/service"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

// DepartmentsHandler exposes department-facing endpoints.
type DepartmentsHandler struct {
	auth        *service.AuthService
	petitions   *service.PetitionService
	departments *service.DepartmentService
	stats       *service.StatsService
	reports     *service.ReportService
}

// NewDepartmentsHandler constructs handler.
func NewDepartmentsHandler(authService *service.AuthService, petitionService *service.PetitionService, departmentService *service.DepartmentService, statsService *service.StatsService, reportService *service.ReportService) *DepartmentsHandler {
	return &DepartmentsHandler{
		auth:        authService,
		petitions:   petitionService,
		departments: departmentService,
		stats:       statsService,
		reports:     reportService,
	}
}

// Login handles POST /auth/departments/login. A correct password
// triggers an emailed code; VerifyLogin completes the login.
func (h *DepartmentsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	if err := h.auth.StartDepartmentLogin(c.UserContext(), req.Email, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "verification code sent"}})
}

// VerifyLogin handles POST /auth/departments/verify.
func (h *DepartmentsHandler) VerifyLogin(c *fiber.Ctx) error {
	var req dto.OTPVerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Code == "" {
		return apperrors.NewValidationError("email and code required", nil)
	}
	dept, token, exp, err := h.auth.VerifyDepartmentLogin(c.UserContext(), req.Email, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"department": fiber.Map{
				"id":    dept.ID,
				"name":  dept.Name,
				"email": dept.Email,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// Petitions handles GET /departments/petitions with optional filters.
func (h *DepartmentsHandler) Petitions(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}

	filter := service.PetitionSearchFilter{
		Department: &dept.Name,
		Limit:      c.QueryInt("limit", 50),
		Offset:     c.QueryInt("offset", 0),
	}
	if statuses := parseCSV(c.Query("status")); len(statuses) > 0 {
		for _, s := range statuses {
			filter.Statuses = append(filter.Statuses, domain.PetitionStatus(s))
		}
	}
	if urgencies := parseCSV(c.Query("urgency")); len(urgencies) > 0 {
		for _, u := range urgencies {
			filter.Urgencies = append(filter.Urgencies, domain.UrgencyLevel(u))
		}
	}
	if category := c.Query("category"); category != "" {
		filter.Category = &category
	}
	if term := c.Query("q"); term != "" {
		filter.SearchTerm = &term
	}

	items, total, err := h.petitions.Search(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewPetitionListResponse(items),
		"meta": fiber.Map{"total": total, "limit": filter.Limit, "offset": filter.Offset},
	})
}

// UpdateStatus handles PUT /departments/petitions/:ticket_id/status.
func (h *DepartmentsHandler) UpdateStatus(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}

	var req dto.StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status required", nil)
	}

	result, err := h.petitions.UpdateStatus(c.UserContext(), dept.Name, c.Params("ticket_id"),
		domain.PetitionStatus(req.Status), req.RejectionReason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"petition":   dto.NewPetitionResponse(result.Petition),
			"old_status": string(result.OldStatus),
			"new_status": string(result.NewStatus),
		},
	})
}

// Deadline handles GET /departments/petitions/:ticket_id/deadline.
func (h *DepartmentsHandler) Deadline(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	tracked, err := h.petitions.DeadlineInfo(c.UserContext(), dept.Name, c.Params("ticket_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDeadlineResponse(tracked)})
}

// ExtendDeadline handles PUT /departments/petitions/:ticket_id/deadline.
func (h *DepartmentsHandler) ExtendDeadline(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	var req dto.DeadlineExtendRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	tracked, err := h.petitions.ExtendDeadline(c.UserContext(), dept.Name, c.Params("ticket_id"), req.Hours)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDeadlineResponse(tracked)})
}

// Overdue handles GET /departments/petitions/overdue.
func (h *DepartmentsHandler) Overdue(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	items, err := h.petitions.OverduePetitions(c.UserContext(), &dept.Name)
	if err != nil {
		return err
	}
	out := make([]fiber.Map, 0, len(items))
	for i := range items {
		out = append(out, fiber.Map{
			"petition": dto.NewPetitionResponse(items[i].Petition),
			"deadline": dto.NewDeadlineResponse(&items[i]),
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// Analytics handles GET /departments/analytics.
func (h *DepartmentsHandler) Analytics(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	analytics, err := h.stats.ForDepartment(c.UserContext(), dept.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": analytics})
}

// GetSettings handles GET /departments/settings.
func (h *DepartmentsHandler) GetSettings(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	notifications, sla, err := h.departments.GetSettings(c.UserContext(), dept.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"notifications": notifications,
		"sla":           sla,
	}})
}

// UpdateSettings handles PUT /departments/settings.
func (h *DepartmentsHandler) UpdateSettings(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	var req dto.SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.departments.UpdateSettings(c.UserContext(), dept.ID, req.Notifications, req.SLA)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponse(updated)})
}

// SendDailySummary handles POST /departments/reports/daily. Sends the
// caller's own digest immediately, regardless of the opt-in setting.
func (h *DepartmentsHandler) SendDailySummary(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	if err := h.reports.SendDailySummaryFor(c.UserContext(), dept); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "daily summary queued"}})
}

// SendWeeklyReport handles POST /departments/reports/weekly.
func (h *DepartmentsHandler) SendWeeklyReport(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	if err := h.reports.SendWeeklyReportFor(c.UserContext(), dept); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "weekly report queued"}})
}

func requireDepartment(c *fiber.Ctx) (*domain.Department, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Department == nil {
		return nil, apperrors.NewUnauthorized("department context required")
	}
	return principal.Department, nil
}

func parseCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
