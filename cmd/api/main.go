package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/civicdesk/petition-service/internal/api/http"
	"github.com/civicdesk/petition-service/internal/api/http/handlers"
	"github.com/civicdesk/petition-service/internal/assistant"
	"github.com/civicdesk/petition-service/internal/auth"
	"github.com/civicdesk/petition-service/internal/config"
	"github.com/civicdesk/petition-service/internal/events"
	"github.com/civicdesk/petition-service/internal/mailer"
	"github.com/civicdesk/petition-service/internal/observability"
	"github.com/civicdesk/petition-service/internal/persistence"
	"github.com/civicdesk/petition-service/internal/repository"
	"github.com/civicdesk/petition-service/internal/service"
	"github.com/civicdesk/petition-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	departmentRepo := repository.NewDepartmentRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	petitionRepo := repository.NewPetitionRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	otpStore := repository.NewOTPStore(redis.Client)

	mailQueue := mailer.NewQueue(mailer.NewSMTPSender(cfg.SMTP), cfg.SMTP, logger, metrics)
	defer mailQueue.Close()

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg, service.AuthDependencies{
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
		AdminRepo:      adminRepo,
		OTPStore:       otpStore,
		Mail:           mailQueue,
	})
	petitionService := service.NewPetitionService(service.PetitionDependencies{
		PetitionRepo:   petitionRepo,
		DepartmentRepo: departmentRepo,
		Dispatcher:     dispatcher,
	})
	departmentService := service.NewDepartmentService(departmentRepo, cfg.Auth.BcryptCost)
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		DepartmentRepo:   departmentRepo,
		Mail:             mailQueue,
		Logger:           logger,
	})
	statsService := service.NewStatsService(service.StatsDependencies{
		PetitionRepo:   petitionRepo,
		UserRepo:       userRepo,
		DepartmentRepo: departmentRepo,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		PetitionRepo:   petitionRepo,
		DepartmentRepo: departmentRepo,
		Mail:           mailQueue,
		Logger:         logger,
	})
	assistantClient := assistant.NewClient(cfg.Assistant)

	worker.StartNotificationWorker(notificationService, dispatcher)
	scheduler := worker.NewScheduler(petitionService, reportService, logger)
	scheduler.Start()
	defer scheduler.Stop()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, departmentRepo, adminRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService, petitionService, statsService),
		Petitions:      handlers.NewPetitionsHandler(petitionService, departmentService),
		Departments:    handlers.NewDepartmentsHandler(authService, petitionService, departmentService, statsService, reportService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Admin:          handlers.NewAdminHandler(authService, departmentService, statsService, reportService, petitionService),
		Assistant:      handlers.NewAssistantHandler(assistantClient),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
