package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hospital-scheduler/config"
	deliveryHttp "hospital-scheduler/internal/delivery/http"
	"hospital-scheduler/internal/delivery/http/handler"
	"hospital-scheduler/internal/delivery/http/middleware"
	"hospital-scheduler/internal/infrastructure/cache"
	"hospital-scheduler/internal/infrastructure/database"
	"hospital-scheduler/internal/infrastructure/mail"
	"hospital-scheduler/internal/infrastructure/translate"
	"hospital-scheduler/internal/repository"
	"hospital-scheduler/internal/scheduling"
	"hospital-scheduler/internal/service"
	"hospital-scheduler/internal/usecase"
	"hospital-scheduler/pkg/jwt"
	"hospital-scheduler/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server

	lockService *service.SlotLockService
	rateLimiter *middleware.RateLimiter
	stop        chan struct{}
}

// Load sets up logging and reads configuration. Every subcommand starts here.
func Load() (*config.Config, error) {
	setupLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logrus.Info("Configuration loaded successfully")
	return cfg, nil
}

// OpenDatabase connects to PostgreSQL using cfg
func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logrus.Info("Database connected successfully")
	return db, nil
}

// New creates a new App instance with all dependencies initialized
func New(cfg *config.Config) (*App, error) {
	app := &App{Config: cfg, stop: make(chan struct{})}

	// Initialize database
	db, err := OpenDatabase(cfg)
	if err != nil {
		return nil, err
	}
	app.DB = db

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis, logrus.StandardLogger())
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	app.Server = app.initializeServer(cfg, db, redisClient)

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// GridFromConfig builds the hospital-wide slot grid
func GridFromConfig(cfg config.SchedulingConfig) scheduling.Grid {
	return scheduling.Grid{
		SlotLength:  cfg.SlotLength,
		LunchStart:  cfg.LunchStart,
		LunchLength: cfg.LunchLength,
	}
}

// initializeServer creates and configures the HTTP server
func (app *App) initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *http.Server {
	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	staffRepo := repository.NewStaffRepository()
	doctorRepo := repository.NewDoctorRepository()
	leaveRepo := repository.NewDoctorLeaveRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	app.lockService = service.NewSlotLockService(redisClient, cfg.Scheduling.LockTTL, log)
	notifier := service.NewNotificationService(mail.NewSMTPMailer(cfg.SMTP), cfg.App.ClientBaseURL)
	translator := translate.NewCachedTranslator(
		translate.NewHTTPTranslator(cfg.Translate),
		translate.NewRedisStore(redisClient),
		cfg.Translate.CacheTTL,
		log,
	)

	// Initialize usecases
	grid := GridFromConfig(cfg.Scheduling)
	slotUsecase := usecase.NewSlotUsecase(db, log, grid, doctorRepo, leaveRepo, appointmentRepo)
	disruptionUsecase := usecase.NewDisruptionUsecase(db, log, doctorRepo, appointmentRepo, notifier, auditService,
		cfg.Scheduling.TokenTTL, cfg.Scheduling.NotifyConcurrency)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, slotUsecase, doctorRepo, appointmentRepo,
		app.lockService, notifier, auditService)
	rescheduleUsecase := usecase.NewRescheduleUsecase(db, log, slotUsecase, doctorRepo, appointmentRepo,
		app.lockService, notifier, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, staffRepo, disruptionUsecase, translator, auditService)
	leaveUsecase := usecase.NewLeaveUsecase(db, log, doctorRepo, leaveRepo, app.lockService, auditService)
	authUsecase := usecase.NewAuthUsecase(db, log, staffRepo, jwtService, redisClient, auditService)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)
	webhookUsecase := usecase.NewWebhookUsecase(db, log, doctorRepo, leaveRepo, appointmentRepo, translator)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	slotHandler := handler.NewSlotHandler(slotUsecase, customValidator)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	rescheduleHandler := handler.NewRescheduleHandler(rescheduleUsecase, customValidator)
	disruptionHandler := handler.NewDisruptionHandler(disruptionUsecase, customValidator)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, customValidator)
	leaveHandler := handler.NewLeaveHandler(leaveUsecase, customValidator)
	auditLogHandler := handler.NewAuditLogHandler(auditLogUsecase)
	webhookHandler := handler.NewWebhookHandler(webhookUsecase)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.ClientBaseURL)
	app.rateLimiter = middleware.NewRateLimiter(cfg.App.RateLimitRPS, cfg.App.RateLimitBurst)

	// Initialize router
	router := deliveryHttp.NewRouter(
		authHandler,
		slotHandler,
		appointmentHandler,
		rescheduleHandler,
		disruptionHandler,
		doctorHandler,
		leaveHandler,
		auditLogHandler,
		webhookHandler,
		authMiddleware,
		corsMiddleware,
		app.rateLimiter,
	)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	return &http.Server{
		Addr:              serverAddr,
		Handler:           httpRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	go app.rateLimiter.Run(app.stop)

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close stops background workers and closes all connections
func (app *App) Close() {
	if app.stop != nil {
		select {
		case <-app.stop:
		default:
			close(app.stop)
		}
	}

	if app.lockService != nil {
		app.lockService.Stop()
	}

	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
