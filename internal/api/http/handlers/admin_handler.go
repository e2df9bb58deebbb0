package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/petition-service/internal/api/dto"
	"github.com/civicdesk/petition-service/internal/domain"
	"github.com/civicdesk/petition-service/internal/service"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

// AdminHandler exposes administrative endpoints.
type AdminHandler struct {
	auth        *service.AuthService
	departments *service.DepartmentService
	stats       *service.StatsService
	reports     *service.ReportService
	petitions   *service.PetitionService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, departmentService *service.DepartmentService, statsService *service.StatsService, reportService *service.ReportService, petitionService *service.PetitionService) *AdminHandler {
	return &AdminHandler{
		auth:        authService,
		departments: departmentService,
		stats:       statsService,
		reports:     reportService,
		petitions:   petitionService,
	}
}

// Login handles POST /auth/admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	admin, token, exp, err := h.auth.LoginAdmin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"admin": fiber.Map{
				"id":       admin.ID,
				"username": admin.Username,
				"email":    admin.Email,
			},
			"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// CreateDepartment handles POST /admin/departments.
func (h *AdminHandler) CreateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.departments.Create(c.UserContext(), service.DepartmentInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Categories: req.Categories,
		Profile:    req.Profile,
		Phone:      req.Phone,
		Address:    req.Address,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// UpdateDepartment handles PUT /admin/departments/:id.
func (h *AdminHandler) UpdateDepartment(c *fiber.Ctx) error {
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.departments.Update(c.UserContext(), c.Params("id"), service.DepartmentInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Categories: req.Categories,
		Profile:    req.Profile,
		Phone:      req.Phone,
		Address:    req.Address,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDepartmentResponse(dept)})
}

// DeleteDepartment handles DELETE /admin/departments/:id.
func (h *AdminHandler) DeleteDepartment(c *fiber.Ctx) error {
	if err := h.departments.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "department deleted"}})
}

// ListDepartments handles GET /admin/departments.
func (h *AdminHandler) ListDepartments(c *fiber.Ctx) error {
	items, err := h.departments.List(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]dto.DepartmentResponse, 0, len(items))
	for i := range items {
		out = append(out, dto.NewDepartmentResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Stats handles GET /admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.stats.ForAdmin(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// SendDailySummaries handles POST /admin/reports/daily.
func (h *AdminHandler) SendDailySummaries(c *fiber.Ctx) error {
	sent, err := h.reports.SendDailySummaries(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"queued": sent}})
}

// SendWeeklyReports handles POST /admin/reports/weekly.
func (h *AdminHandler) SendWeeklyReports(c *fiber.Ctx) error {
	sent, err := h.reports.SendWeeklyReports(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"queued": sent}})
}

// SendReminders handles POST /admin/reminders/scan.
// Petitions handles GET /admin/petitions: the cross-department search,
// with the same filters departments get plus an optional department.
func (h *AdminHandler) Petitions(c *fiber.Ctx) error {
	filter := service.PetitionSearchFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if department := c.Query("department"); department != "" {
		filter.Department = &department
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

// Overdue handles GET /admin/petitions/overdue across all departments.
func (h *AdminHandler) Overdue(c *fiber.Ctx) error {
	var department *string
	if name := c.Query("department"); name != "" {
		department = &name
	}
	items, err := h.petitions.OverduePetitions(c.UserContext(), department)
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

func (h *AdminHandler) SendReminders(c *fiber.Ctx) error {
	sent, err := h.petitions.SendDeadlineReminders(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"reminders_sent": sent}})
}
