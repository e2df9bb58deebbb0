package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicdesk/petition-service/internal/api/http/handlers"
	"github.com/civicdesk/petition-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Petitions      *handlers.PetitionsHandler
	Departments    *handlers.DepartmentsHandler
	Notifications  *handlers.NotificationsHandler
	Admin          *handlers.AdminHandler
	Assistant      *handlers.AssistantHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/citizens/register", cfg.Users.Register)
	authGroup.Post("/citizens/verify", cfg.Users.Verify)
	authGroup.Post("/citizens/resend-otp", cfg.Users.ResendOTP)
	authGroup.Post("/citizens/login", cfg.Users.Login)
	authGroup.Post("/departments/login", cfg.Departments.Login)
	authGroup.Post("/departments/verify", cfg.Departments.VerifyLogin)
	authGroup.Post("/admin/login", cfg.Admin.Login)

	// Public: department listing for the intake form and ticket tracking.
	app.Get("/departments", cfg.Petitions.ListDepartments)
	app.Get("/petitions/track/:ticket_id", cfg.Petitions.Track)

	// Drafting assistant.
	assistantGroup := app.Group("/assistant")
	assistantGroup.Post("/improve", cfg.Assistant.Improve)
	assistantGroup.Post("/suggest-titles", cfg.Assistant.SuggestTitles)
	assistantGroup.Post("/check-clarity", cfg.Assistant.CheckClarity)
	assistantGroup.Post("/suggest-details", cfg.Assistant.SuggestDetails)

	// Citizen routes.
	citizenGroup := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireCitizen())
	citizenGroup.Post("/petitions", cfg.Petitions.Create)
	citizenGroup.Get("/users/petitions", cfg.Users.MyPetitions)
	citizenGroup.Get("/users/profile", cfg.Users.Profile)
	citizenGroup.Put("/users/profile", cfg.Users.UpdateProfile)
	citizenGroup.Get("/users/dashboard", cfg.Users.Dashboard)

	// Department routes.
	deptGroup := app.Group("/departments", cfg.AuthMiddleware.Handle, auth.RequireDepartment())
	deptGroup.Get("/petitions", cfg.Departments.Petitions)
	deptGroup.Get("/petitions/overdue", cfg.Departments.Overdue)
	deptGroup.Put("/petitions/:ticket_id/status", cfg.Departments.UpdateStatus)
	deptGroup.Get("/petitions/:ticket_id/deadline", cfg.Departments.Deadline)
	deptGroup.Put("/petitions/:ticket_id/deadline", cfg.Departments.ExtendDeadline)
	deptGroup.Get("/analytics", cfg.Departments.Analytics)
	deptGroup.Get("/settings", cfg.Departments.GetSettings)
	deptGroup.Put("/settings", cfg.Departments.UpdateSettings)
	deptGroup.Post("/reports/daily", cfg.Departments.SendDailySummary)
	deptGroup.Post("/reports/weekly", cfg.Departments.SendWeeklyReport)
	deptGroup.Get("/notifications", cfg.Notifications.List)
	deptGroup.Put("/notifications/read-all", cfg.Notifications.MarkAllRead)
	deptGroup.Put("/notifications/:id/read", cfg.Notifications.MarkRead)

	// Admin routes.
	adminGroup := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	adminGroup.Get("/departments", cfg.Admin.ListDepartments)
	adminGroup.Post("/departments", cfg.Admin.CreateDepartment)
	adminGroup.Put("/departments/:id", cfg.Admin.UpdateDepartment)
	adminGroup.Delete("/departments/:id", cfg.Admin.DeleteDepartment)
	adminGroup.Get("/petitions", cfg.Admin.Petitions)
	adminGroup.Get("/petitions/overdue", cfg.Admin.Overdue)
	adminGroup.Get("/stats", cfg.Admin.Stats)
	adminGroup.Post("/reports/daily", cfg.Admin.SendDailySummaries)
	adminGroup.Post("/reports/weekly", cfg.Admin.SendWeeklyReports)
	adminGroup.Post("/reminders/scan", cfg.Admin.SendReminders)
}
