package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/repair-shop/internal/api/http"
	"github.com/spec-kit/repair-shop/internal/api/http/handlers"
	"github.com/spec-kit/repair-shop/internal/auth"
	"github.com/spec-kit/repair-shop/internal/config"
	"github.com/spec-kit/repair-shop/internal/domain"
	"github.com/spec-kit/repair-shop/internal/events"
	"github.com/spec-kit/repair-shop/internal/locking"
	"github.com/spec-kit/repair-shop/internal/observability"
	"github.com/spec-kit/repair-shop/internal/persistence"
	"github.com/spec-kit/repair-shop/internal/queue"
	"github.com/spec-kit/repair-shop/internal/repository"
	"github.com/spec-kit/repair-shop/internal/service"
	"github.com/spec-kit/repair-shop/internal/worker"
	"github.com/spec-kit/repair-shop/internal/workflow"
)

func main() {
	issueSystemToken := flag.Bool("issue-system-token", false, "print a bearer token for the system actor and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	if *issueSystemToken {
		token, expiresAt, err := tokens.GenerateToken(cfg.App.SystemActorID, domain.SubjectTypeSystem)
		if err != nil {
			log.Fatalf("failed to issue token: %v", err)
		}
		fmt.Printf("%s\n# expires %s\n", token, expiresAt.Format(time.RFC3339))
		return
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewRepairTicketRepository(pool)
	appointmentRepo := repository.NewAppointmentRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	cascadeRepo := repository.NewCascadeRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	var locker locking.Locker
	switch cfg.Lock.Backend {
	case "local":
		locker = locking.NewLocalLocker(cfg.Lock.Wait())
	default:
		locker = locking.NewRedisLocker(redis.Client, cfg.Lock.KeyPrefix, cfg.Lock.TTL(), cfg.Lock.Wait(), logger)
	}
	logger.Info("entity locks configured", zap.String("backend", cfg.Lock.Backend))

	dispatcher := events.NewInMemoryDispatcher(logger)
	if len(cfg.Kafka.Brokers) > 0 {
		forwarder, err := events.NewKafkaForwarder(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, logger)
		if err != nil {
			logger.Fatal("failed to init kafka forwarder", zap.Error(err))
		}
		defer forwarder.Close() //nolint:errcheck
		forwarder.Register(dispatcher)
	}

	notificationQueue := queue.NewNotificationQueue(redis.Client, cfg.Notification.Stream, cfg.Notification.ConsumerGroup, cfg.Notification.ConsumerName, logger)
	notificationWorker := worker.NewNotificationWorker(notificationQueue, notificationRepo, cfg.Notification.BatchSize, cfg.Notification.Block(), logger, metrics)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		if err := notificationWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("notification worker stopped", zap.Error(err))
		}
	}()

	auditService := service.NewAuditService(auditRepo, dispatcher, logger)
	notificationService := service.NewNotificationService(notificationQueue, logger, metrics)
	authority := workflow.NewAuthority()

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:      ticketRepo,
		AppointmentRepo: appointmentRepo,
		StaffRepo:       staffRepo,
		Authority:       authority,
		Locker:          locker,
		Notifier:        notificationService,
		Audit:           auditService,
		Logger:          logger,
		Metrics:         metrics,
	})
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		TicketRepo:      ticketRepo,
		AppointmentRepo: appointmentRepo,
		Authority:       authority,
		Locker:          locker,
		Notifier:        notificationService,
		Audit:           auditService,
		Logger:          logger,
		Metrics:         metrics,
	})
	cascadeService := service.NewCascadeService(service.CascadeDependencies{
		CustomerRepo: customerRepo,
		CascadeRepo:  cascadeRepo,
		Locker:       locker,
		Audit:        auditService,
		Logger:       logger,
		Metrics:      metrics,
		SampleSize:   cfg.Deletion.SampleSize,
	})

	authMiddleware := auth.NewAuthMiddleware(tokens, staffRepo, cfg.App.SystemActorID)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}),
		Assignments:    handlers.NewAssignmentHandler(assignmentService),
		Lifecycle:      handlers.NewLifecycleHandler(lifecycleService),
		Customers:      handlers.NewCustomersHandler(cascadeService),
		Audit:          handlers.NewAuditHandler(auditService),
		Staff:          handlers.NewStaffHandler(staffRepo),
		AuthMiddleware: authMiddleware.Handle,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	<-workerDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
