package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/config"
	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/notification"
	appHTTP "github.com/cmlabs-hris/workforce-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/workforce-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/queue"
	"github.com/cmlabs-hris/workforce-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/workforce-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/workforce-backend-go/internal/service/attendance"
	ledgerService "github.com/cmlabs-hris/workforce-backend-go/internal/service/ledger"
	notificationService "github.com/cmlabs-hris/workforce-backend-go/internal/service/notification"
	payrollService "github.com/cmlabs-hris/workforce-backend-go/internal/service/payroll"
	shiftService "github.com/cmlabs-hris/workforce-backend-go/internal/service/shift"
	"github.com/cmlabs-hris/workforce-backend-go/migrations"
)

const (
	appName    = "workforce-backend"
	appVersion = "v1.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	logger := appHTTP.NewLogger(appName, appVersion, cfg.App.Env, cfg.SlogLevel())
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	defaultLoc, err := time.LoadLocation(cfg.App.DefaultTimezone)
	if err != nil {
		return fmt.Errorf("load default timezone: %w", err)
	}

	transactor := postgresql.NewTransactor(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	shiftRepo := postgresql.NewShiftRepository(db)
	sessionRepo := postgresql.NewSessionRepository(db)
	linkRepo := postgresql.NewLinkRepository(db)
	ledgerRepo := postgresql.NewLedgerRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)

	hub := sse.NewHub(10)
	defer hub.Close()

	notifSvc := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{
		BatchSize:     cfg.Notification.BatchSize,
		FlushInterval: cfg.Notification.FlushInterval,
		WorkerCount:   cfg.Notification.WorkerCount,
		QueueSize:     cfg.Notification.QueueSize,
	})
	defer notifSvc.Stop()

	var publisher notification.Publisher
	if cfg.Redis.Addr != "" {
		redisClient, err := queue.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		publisher = queue.NewRedisPublisher(redisClient, cfg.Redis.QueueKey)
	} else {
		slog.Warn("REDIS_ADDR not set, outbound messages are only logged")
	}
	dispatcher := notificationService.NewDispatcher(publisher, notificationService.DispatcherConfig{})
	defer dispatcher.Stop()

	clk := clock.Real()
	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	resolver := shiftService.NewResolver(shiftRepo, employeeRepo)

	attendanceSvc := attendanceService.NewAttendanceService(
		transactor,
		sessionRepo,
		linkRepo,
		employeeRepo,
		resolver,
		notifSvc,
		dispatcher,
		clk,
		attendanceService.Config{
			PublicBaseURL:   cfg.App.PublicBaseURL,
			DefaultLocation: defaultLoc,
		},
	)
	ledgerSvc := ledgerService.NewLedgerService(transactor, ledgerRepo, employeeRepo, notifSvc, clk, defaultLoc)
	payrollSvc := payrollService.NewPayrollService(
		transactor,
		payrollRepo,
		employeeRepo,
		sessionRepo,
		ledgerRepo,
		notifSvc,
		clk,
		defaultLoc,
	)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(sessionRepo, linkRepo, clk, cfg.Jobs.StaleSessionAfter).RegisterJobs(scheduler, cfg.Jobs.AttendanceReportInterval)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{
			AllowedOrigins: cfg.App.AllowedOrigins,
			LogLevel:       cfg.SlogLevel(),
		},
		logger,
		JWTService,
		middleware.NewStoreMiddleware(employeeRepo, payrollRepo),
		appHTTP.NewAttendanceHandler(attendanceSvc),
		appHTTP.NewLedgerHandler(ledgerSvc),
		appHTTP.NewPayrollHandler(payrollSvc),
		appHTTP.NewNotificationHandler(notifSvc, JWTService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server running", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	// SSE streams stay open until the hub closes them.
	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
