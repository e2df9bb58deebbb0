package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/petition-service/internal/api/dto"
	"github.com/civicdesk/petition-service/internal/auth"
	"github.com/civicdesk/petition-service/internal/service"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

// PetitionsHandler exposes intake and tracking endpoints.
type PetitionsHandler struct {
	petitions   *service.PetitionService
	departments *service.DepartmentService
}

// NewPetitionsHandler constructs handler.
func NewPetitionsHandler(petitionService *service.PetitionService, departmentService *service.DepartmentService) *PetitionsHandler {
	return &PetitionsHandler{petitions: petitionService, departments: departmentService}
}

// Create handles POST /petitions.
func (h *PetitionsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("citizen context required")
	}

	var req dto.PetitionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.PetitionCreateInput{
		Title:       req.Title,
		Category:    req.Category,
		Department:  req.Department,
		Description: req.Description,
		Location:    req.Location,
		Urgency:     req.Urgency,
		FullName:    req.FullName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		Attachments: req.Attachments,
	}
	if input.FullName == "" {
		input.FullName = principal.User.Name
	}
	if input.Email == "" {
		input.Email = principal.User.Email
	}

	petition, err := h.petitions.Create(c.UserContext(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPetitionResponse(petition)})
}

// Track handles GET /petitions/track/:ticket_id. No authentication:
// the ticket number is the capability.
func (h *PetitionsHandler) Track(c *fiber.Ctx) error {
	ticketID := c.Params("ticket_id")
	if ticketID == "" {
		return apperrors.NewValidationError("ticket id required", nil)
	}
	tracked, err := h.petitions.Track(c.UserContext(), ticketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"petition": dto.NewPetitionResponse(tracked.Petition),
		"deadline": dto.NewDeadlineResponse(tracked),
	}})
}

// ListDepartments handles GET /departments. Public listing for the
// intake form.
func (h *PetitionsHandler) ListDepartments(c *fiber.Ctx) error {
	items, err := h.departments.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPublicDepartmentList(items)})
}
