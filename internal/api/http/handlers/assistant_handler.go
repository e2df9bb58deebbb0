package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/petition-service/internal/api/dto"
	"github.com/civicdesk/petition-service/internal/assistant"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

// AssistantHandler exposes the drafting assistant endpoints.
type AssistantHandler struct {
	client *assistant.Client
}

// NewAssistantHandler constructs handler.
func NewAssistantHandler(client *assistant.Client) *AssistantHandler {
	return &AssistantHandler{client: client}
}

// Improve handles POST /assistant/improve.
func (h *AssistantHandler) Improve(c *fiber.Ctx) error {
	var req dto.ImproveTextRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Text == "" {
		return apperrors.NewValidationError("text required", nil)
	}
	improved, err := h.client.ImproveText(c.UserContext(), req.Text, req.Title, req.Category)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"improved_text": improved}})
}

// SuggestTitles handles POST /assistant/suggest-titles.
func (h *AssistantHandler) SuggestTitles(c *fiber.Ctx) error {
	var req dto.SuggestTitlesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Description == "" {
		return apperrors.NewValidationError("description required", nil)
	}
	titles, err := h.client.SuggestTitles(c.UserContext(), req.Description, req.Category)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"suggested_titles": titles}})
}

// CheckClarity handles POST /assistant/check-clarity.
func (h *AssistantHandler) CheckClarity(c *fiber.Ctx) error {
	var req dto.CheckClarityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Text == "" {
		return apperrors.NewValidationError("text required", nil)
	}
	analysis, err := h.client.CheckClarity(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"clarity_analysis": analysis}})
}

// SuggestDetails handles POST /assistant/suggest-details.
func (h *AssistantHandler) SuggestDetails(c *fiber.Ctx) error {
	var req dto.SuggestDetailsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Text == "" {
		return apperrors.NewValidationError("text required", nil)
	}
	details, err := h.client.SuggestDetails(c.UserContext(), req.Text, req.Category, req.Location)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"detail_suggestions": details}})
}
