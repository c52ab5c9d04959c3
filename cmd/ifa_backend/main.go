package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/SscSPs/invoice_finance_app/internal/adapters/events"
	portsrepo "github.com/SscSPs/invoice_finance_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/invoice_finance_app/internal/core/ports/services"
	"github.com/SscSPs/invoice_finance_app/internal/core/services"
	"github.com/SscSPs/invoice_finance_app/internal/handlers"
	"github.com/SscSPs/invoice_finance_app/internal/jobs"
	"github.com/SscSPs/invoice_finance_app/internal/middleware"
	"github.com/SscSPs/invoice_finance_app/internal/platform/config"
	"github.com/SscSPs/invoice_finance_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/invoice_finance_app/internal/repositories/memory"
	"github.com/SscSPs/invoice_finance_app/pkg/database"
)

// @title Invoice Finance API
// @version 1.0
// @description Supply-chain invoice financing: invoice lifecycle, double-entry ledger and credit facilities.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := handlers.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := setupRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepos()

	publisher, err := newEventPublisher(cfg, logger)
	if err != nil {
		return err
	}
	dispatcher := events.NewDispatcher(publisher, logger, events.WithBufferSize(cfg.EventBufferSize))
	defer func() {
		if err := dispatcher.Close(); err != nil {
			logger.Error("Error closing event dispatcher", slog.String("error", err.Error()))
		}
	}()

	container := services.NewServiceContainer(cfg, repos, dispatcher)

	maturityJob, err := jobs.NewMaturityJob(cfg.MaturitySweepSchedule, container.Maturity, dispatcher, logger)
	if err != nil {
		return err
	}
	maturityJob.Start()

	lim, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return err
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// Global middleware (logging, recovery, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, container, lim)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port),
			slog.String("storage", cfg.StorageDriver), slog.String("event_sink", cfg.EventSink))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			maturityJob.Stop(context.Background())
			return fmt.Errorf("server failed to run: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}
	maturityJob.Stop(shutdownCtx)
	logger.Info("Server stopped")
	return nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "X-Request-ID")
	c.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	c.MaxAge = 12 * time.Hour
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// setupRepositories opens the configured storage and returns a cleanup func.
func setupRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		store := memory.New()
		if err := store.Seed(ctx, cfg.BankOrganizationID, time.Now().UTC()); err != nil {
			return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to seed memory store: %w", err)
		}
		logger.Info("Using in-memory storage")
		return memory.NewRepositoryProvider(store), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, fmt.Errorf("failed to initialize database pool: %w", err)
	}
	logger.Info("Database connection pool established.")

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations", logger); err != nil {
		dbPool.Close()
		return portsrepo.RepositoryProvider{}, nil, err
	}

	return pgsql.NewRepositoryProvider(dbPool), dbPool.Close, nil
}

// newEventPublisher builds the transport selected by EVENT_SINK.
func newEventPublisher(cfg *config.Config, logger *slog.Logger) (portssvc.EventPublisher, error) {
	switch cfg.EventSink {
	case config.EventSinkKafka:
		logger.Info("Publishing domain events to Kafka", slog.String("topic", cfg.KafkaTopic))
		return events.NewKafkaProducer(cfg.KafkaBroker, cfg.KafkaTopic, logger), nil
	case config.EventSinkRabbitMQ:
		publisher, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQQueue, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		logger.Info("Publishing domain events to RabbitMQ", slog.String("queue", cfg.RabbitMQQueue))
		return publisher, nil
	case config.EventSinkEmail:
		logger.Info("Mailing domain events", slog.Int("recipients", len(cfg.NotifyTo)))
		return events.NewEmailNotifier(events.EmailConfig{
			Addr:     cfg.SMTPAddr,
			Host:     cfg.SMTPHost,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.NotifyFrom,
			To:       cfg.NotifyTo,
		}, logger), nil
	default:
		return events.NewLogPublisher(logger), nil
	}
}
