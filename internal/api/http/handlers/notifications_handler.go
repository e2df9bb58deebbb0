package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/petition-service/internal/api/dto"
	"github.com/civicdesk/petition-service/internal/service"
	apperrors "github.com/civicdesk/petition-service/pkg/util"
)

// NotificationsHandler exposes the department notification inbox.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notificationService *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notificationService}
}

// List handles GET /departments/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	items, err := h.notifications.ListForDepartment(c.UserContext(), dept.Name)
	if err != nil {
		return err
	}
	unread, err := h.notifications.UnreadCount(c.UserContext(), dept.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": dto.NewNotificationListResponse(items),
		"meta": fiber.Map{"unread": unread},
	})
}

// MarkRead handles PUT /departments/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if id == "" {
		return apperrors.NewValidationError("notification id required", nil)
	}
	if err := h.notifications.MarkRead(c.UserContext(), id, dept.Name); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"message": "notification marked read"}})
}

// MarkAllRead handles PUT /departments/notifications/read-all.
func (h *NotificationsHandler) MarkAllRead(c *fiber.Ctx) error {
	dept, err := requireDepartment(c)
	if err != nil {
		return err
	}
	updated, err := h.notifications.MarkAllRead(c.UserContext(), dept.Name)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"updated": updated}})
}
