package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/agamariel/songorders/internal/auth"
	"github.com/agamariel/songorders/internal/config"
	"github.com/agamariel/songorders/internal/events"
	"github.com/agamariel/songorders/internal/handlers"
	"github.com/agamariel/songorders/internal/logger"
	"github.com/agamariel/songorders/internal/metrics"
	"github.com/agamariel/songorders/internal/migrations"
	"github.com/agamariel/songorders/internal/models"
	"github.com/agamariel/songorders/internal/numbering"
	"github.com/agamariel/songorders/internal/services"
	"github.com/agamariel/songorders/internal/storage"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// App структура для управления приложением и его зависимостями.
type App struct {
	cfg     *config.Config
	log     *zap.Logger
	dbPool  *pgxpool.Pool
	echo    *echo.Echo
	metrics *metrics.Metrics

	worker     *services.NotificationWorker
	workerDone <-chan struct{}
	publisher  *events.KafkaPublisher

	// Handlers
	orderHandler   *handlers.OrderHandler
	messageHandler *handlers.MessageHandler
	paymentHandler *handlers.PaymentHandler
	adminHandler   *handlers.AdminHandler
	healthHandler  *handlers.HealthHandler
}

// NewApp создаёт и инициализирует новое приложение.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	app := &App{
		cfg:     cfg,
		log:     log,
		metrics: metrics.New(),
	}

	if err := app.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initDependencies(); err != nil {
		app.dbPool.Close()
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}

	app.initServer()

	return app, nil
}

// initDatabase инициализирует подключение к базе данных и выполняет миграции.
func (app *App) initDatabase(ctx context.Context) error {
	if app.cfg.DatabaseURI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}

	// Применение миграций
	app.log.Info("running database migrations")
	sqlDB, err := sql.Open("pgx", app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to open database connection: %w", err)
	}
	defer sqlDB.Close()

	if err := migrations.Run(ctx, sqlDB, app.log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Подключение к базе данных через pgxpool
	dbPool, err := pgxpool.New(ctx, app.cfg.DatabaseURI)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return fmt.Errorf("unable to ping database: %w", err)
	}

	app.dbPool = dbPool
	app.log.Info("connected to database")

	return nil
}

// initDependencies инициализирует все зависимости приложения (storage, services, handlers).
func (app *App) initDependencies() error {
	// Storage layer
	orderStorage := storage.NewPostgresOrderStorage(app.dbPool, numbering.NewGenerator(nil))
	messageStorage := storage.NewPostgresMessageStorage(app.dbPool)
	paymentStorage := storage.NewPostgresPaymentStorage(app.dbPool)
	adminStorage := storage.NewPostgresAdminStorage(app.dbPool)
	eventStorage := storage.NewPostgresEventStorage(app.dbPool)

	// Service layer
	orderService := services.NewOrderService(orderStorage, messageStorage, paymentStorage, services.WithMetrics(app.metrics))
	messageService := services.NewMessageService(orderStorage, messageStorage)
	paymentService := services.NewPaymentService(orderStorage, paymentStorage)
	adminService := services.NewAdminService(adminStorage, app.cfg.JWTSecret, app.cfg.TokenExpiration)

	// Handler layer
	app.orderHandler = handlers.NewOrderHandler(orderService, app.log)
	app.messageHandler = handlers.NewMessageHandler(messageService, app.log)
	app.paymentHandler = handlers.NewPaymentHandler(paymentService, app.log)
	app.adminHandler = handlers.NewAdminHandler(adminService, orderService, app.cfg.TokenExpiration, app.log)
	app.healthHandler = handlers.NewHealthHandler(app.dbPool, app.log)

	// Воркер уведомлений
	brokers := events.ParseBrokers(app.cfg.KafkaBrokers)
	if len(brokers) == 0 {
		app.log.Warn("KAFKA_BROKERS is not configured, order events stay in the outbox")
		return nil
	}

	producer, err := events.NewSyncProducer(brokers)
	if err != nil {
		return fmt.Errorf("failed to create kafka producer: %w", err)
	}
	app.publisher = events.NewKafkaPublisher(producer, app.cfg.KafkaTopic, app.log)
	app.worker = services.NewNotificationWorker(eventStorage, app.publisher, app.metrics, app.cfg.NotifyInterval, app.log)
	app.log.Info("notification worker initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", app.cfg.KafkaTopic),
	)

	return nil
}

// initServer инициализирует HTTP-сервер и настраивает маршруты.
func (app *App) initServer() {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = handlers.NewHTTPErrorHandler(app.log)

	// Middleware
	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(app.log))
	e.Use(app.metrics.Middleware())
	e.Use(middleware.Recover())
	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
	}))

	// Публичные маршруты (не требуют аутентификации)
	e.POST("/api/orders", app.orderHandler.CreateOrder)
	e.POST("/api/admin/login", app.adminHandler.Login)
	e.GET("/api/health", app.healthHandler.Check)
	e.GET("/metrics", app.metrics.Handler())

	// Защищённые маршруты (требуют аутентификации)
	protected := e.Group("/api")
	protected.Use(auth.JWTMiddleware(app.cfg.JWTSecret))
	protected.GET("/orders", app.orderHandler.ListOrders)
	protected.GET("/orders/:id", app.orderHandler.GetOrder)
	protected.PATCH("/orders/:id", app.orderHandler.UpdateOrder)
	protected.POST("/orders/:id/messages", app.messageHandler.CreateMessage)
	protected.GET("/orders/:id/messages", app.messageHandler.ListMessages)
	protected.POST("/messages/:id/read", app.messageHandler.MarkRead)
	protected.POST("/orders/:id/payments", app.paymentHandler.CreatePayment)
	protected.PATCH("/payments/:id", app.paymentHandler.UpdatePayment)
	protected.GET("/admin/me", app.adminHandler.Me)
	protected.GET("/admin/dashboard", app.adminHandler.Dashboard)
	protected.POST("/admin/users", app.adminHandler.CreateAdmin, auth.RequireRole(models.AdminRoleSuperAdmin))

	app.echo = e
}

// Start запускает приложение.
func (app *App) Start(ctx context.Context) error {
	// Запуск воркера уведомлений
	if app.worker != nil {
		app.workerDone = app.worker.Start(ctx)
		app.log.Info("notification worker started")
	}

	// Запуск сервера
	app.log.Info("starting server", zap.String("address", app.cfg.RunAddress))
	if err := app.echo.Start(app.cfg.RunAddress); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped: %w", err)
	}

	return nil
}

// Shutdown корректно завершает работу приложения.
func (app *App) Shutdown(ctx context.Context) error {
	app.log.Info("shutting down server")

	if err := app.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	// Воркер останавливается по отмене корневого контекста.
	if app.workerDone != nil {
		select {
		case <-app.workerDone:
		case <-ctx.Done():
			app.log.Warn("notification worker did not stop in time")
		}
	}

	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.log.Error("failed to close kafka producer", zap.Error(err))
		}
	}

	if app.dbPool != nil {
		app.dbPool.Close()
	}

	app.log.Info("server gracefully stopped")
	return nil
}
