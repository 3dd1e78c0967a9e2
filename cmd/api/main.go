package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/scheduler"
	"github.com/spec-kit/helpdesk-service/internal/service"
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
	assignmentRepo := repository.NewRoleAssignmentRepository(pool)
	refreshRepo := repository.NewRefreshTokenRepository(pool)
	companyRepo := repository.NewCompanyRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	areaRepo := repository.NewAreaRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)
	announcementRepo := repository.NewAnnouncementRepository(pool)

	dispatcher := events.NewInMemoryDispatcher(logger)
	gate := auth.NewGate(assignmentRepo)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:           userRepo,
		RoleAssignmentRepo: assignmentRepo,
		RefreshTokenRepo:   refreshRepo,
	})
	roleService := service.NewRoleService(service.RoleDependencies{
		RoleAssignmentRepo: assignmentRepo,
		UserRepo:           userRepo,
		CompanyRepo:        companyRepo,
		Gate:               gate,
		Dispatcher:         dispatcher,
	})
	companyService := service.NewCompanyService(service.CompanyDependencies{
		CompanyRepo:  companyRepo,
		CategoryRepo: categoryRepo,
		AreaRepo:     areaRepo,
		Gate:         gate,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		ResponseRepo: responseRepo,
		CompanyRepo:  companyRepo,
		CategoryRepo: categoryRepo,
		AreaRepo:     areaRepo,
		Gate:         gate,
		Dispatcher:   dispatcher,
	})
	announcementService := service.NewAnnouncementService(service.AnnouncementDependencies{
		AnnouncementRepo: announcementRepo,
		CompanyRepo:      companyRepo,
		Gate:             gate,
	})

	queue := scheduler.NewRedisQueue(redis.Client)
	worker := scheduler.NewWorker(queue, logger, metrics, cfg.Escalation.PollInterval(), cfg.Escalation.Workers)
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		TicketRepo: ticketRepo,
		Queue:      queue,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Delay:      cfg.Escalation.Delay(),
	})
	escalationService.Register(dispatcher, worker)

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(ctx)
	}()

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Roles:          handlers.NewRolesHandler(roleService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Companies:      handlers.NewCompaniesHandler(companyService),
		Announcements:  handlers.NewAnnouncementsHandler(announcementService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
		RateLimit:      httptransport.RateLimitMiddleware(cfg.RateLimit.PerSecond, cfg.RateLimit.Burst),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	<-workerDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
