package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-rise-platform/config"
	_ "go-rise-platform/docs" // Important for Swagger
	v1 "go-rise-platform/internal/delivery/http/v1"
	"go-rise-platform/internal/domain"
	"go-rise-platform/internal/events"
	"go-rise-platform/internal/metrics"
	"go-rise-platform/internal/repository/postgres"
	"go-rise-platform/internal/usecase"
	"go-rise-platform/pkg/auth"
	"go-rise-platform/pkg/database"
	"go-rise-platform/pkg/email"
	"go-rise-platform/pkg/logger"
	"go-rise-platform/pkg/midtrans"
	"go-rise-platform/pkg/redis"
	"go-rise-platform/pkg/security"
	"go-rise-platform/pkg/security/antivirus"
	"go-rise-platform/pkg/storage"
	"go-rise-platform/pkg/validation"
)

type pinger interface {
	domain.FileStorage
	Ping(ctx context.Context) error
}

// @title           Rise Platform API
// @version         1.0
// @description     Job board, academy catalog, RYLS registrations and payments.
// @host            localhost:8080
// @BasePath        /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Loggers
	logger.Init(cfg.LogLevel)
	logger.Log.Info("Starting rise platform API", "port", cfg.Port, "env", cfg.ServiceEnvironment)
	auditLog := security.InitSecurityLogger("rise-api", cfg.ServiceEnvironment)
	defer func() { _ = auditLog.Sync() }()

	ctx := context.Background()

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	if cfg.MigrateOnBoot {
		if err := postgres.Migrate(ctx, dbPool); err != nil {
			logger.Log.Error("Failed to apply schema", "error", err)
			os.Exit(1)
		}
	}

	// 4. Setup Redis (optional)
	if cfg.UpstashRedisURL != "" {
		if err := redis.Initialize(redis.Config{URL: cfg.UpstashRedisURL, Password: cfg.UpstashRedisPassword}); err != nil {
			logger.Log.Warn("Redis unavailable, using in-memory fallbacks", "error", err)
		}
	}
	defer func() { _ = redis.Close() }()

	// 5. Setup Repositories
	userRepo := postgres.NewUserRepository(dbPool)
	jobRepo := postgres.NewJobRepository(dbPool)
	catalogRepo := postgres.NewCatalogRepository(dbPool)
	enrollmentRepo := postgres.NewEnrollmentRepository(dbPool)
	uploadRepo := postgres.NewUploadRepository(dbPool)
	registrationRepo := postgres.NewRegistrationRepository(dbPool)
	paymentRepo := postgres.NewPaymentRepository(dbPool)

	// 6. Setup Infrastructure
	emailService := email.NewEmailService(cfg)
	if !emailService.IsConfigured() {
		logger.Log.Warn("Email service not fully configured - confirmation emails are disabled")
	}

	var fileStorage pinger
	if cfg.S3Enabled() {
		fileStorage, err = storage.NewS3Storage(ctx, storage.S3Config{
			Provider:        storage.Provider(cfg.S3Provider),
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Endpoint:        cfg.S3Endpoint,
			PublicBaseURL:   cfg.S3PublicBaseURL,
		})
	} else {
		logger.Log.Warn("S3 not configured, storing uploads on disk", "dir", cfg.UploadDir)
		fileStorage, err = storage.NewLocalStorage(cfg.UploadDir, cfg.UploadPublicURL)
	}
	if err != nil {
		logger.Log.Error("Failed to set up file storage", "error", err)
		os.Exit(1)
	}

	publisher, closeEvents, err := events.New(cfg.NatsURL)
	if err != nil {
		logger.Log.Warn("NATS unavailable, events are dropped", "error", err)
	}
	defer closeEvents()

	gateway := midtrans.NewClient(cfg.MidtransServerKey, cfg.MidtransClientKey, cfg.MidtransMode)
	gateway.SetRateLimit(10)

	jwksProvider := auth.NewProvider(cfg.AuthJWKSURL)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL, jwksProvider)
	revocations := auth.NewRevocationList()

	loginTracker := security.NewLoginTracker(security.LoginTrackerConfig{
		MaxAttempts:   cfg.FailedLoginMaxAttempts,
		AttemptWindow: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		BlockDuration: time.Duration(cfg.FailedLoginBlockMinutes) * time.Minute,
		UseIPTracking: true,
	}, auditLog)

	if cfg.MetricsEnabled {
		metrics.Register()
	}

	// 7. Setup UseCases
	validate := validation.New()
	authUC := usecase.NewAuthUsecase(userRepo, tokens, revocations, loginTracker, validate)
	jobUC := usecase.NewJobUsecase(jobRepo)
	catalogUC := usecase.NewCatalogUsecase(catalogRepo, cfg.CatalogCacheTTL)
	enrollmentUC := usecase.NewEnrollmentUsecase(enrollmentRepo, catalogRepo)
	uploadUC := usecase.NewUploadUsecase(
		uploadRepo,
		fileStorage,
		antivirus.NewScanner(cfg.ClamAVAddress),
		security.NewUploadLimiter(cfg.UploadsPerMinute, cfg.UploadsPerDay),
		auditLog,
		cfg.UploadMaxBytes,
	)
	registrationUC := usecase.NewRegistrationUsecase(registrationRepo, uploadRepo, validate, emailService, publisher)
	paymentUC := usecase.NewPaymentUsecase(paymentRepo, registrationRepo, uploadRepo, gateway, publisher, auditLog, usecase.PaymentSettings{
		FeeSelfFunded:  cfg.FeeSelfFunded,
		FeeFullyFunded: cfg.FeeFullyFunded,
		Currency:       cfg.PaymentCurrency,
		Expiry:         cfg.PaymentExpiry,
	})
	healthUC := usecase.NewHealthUsecase(map[string]usecase.HealthCheck{
		"database": dbPool.Ping,
		"storage":  fileStorage.Ping,
		"redis":    redisCheck(),
	})

	// 8. Background jobs
	expirer, err := usecase.NewPaymentExpirer(paymentUC, cfg.PaymentSweepSpec)
	if err != nil {
		logger.Log.Error("Invalid payment sweep schedule", "spec", cfg.PaymentSweepSpec, "error", err)
		os.Exit(1)
	}
	expirer.Start()
	defer expirer.Stop()

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		AuthUC:         authUC,
		JobUC:          jobUC,
		CatalogUC:      catalogUC,
		EnrollmentUC:   enrollmentUC,
		UploadUC:       uploadUC,
		RegistrationUC: registrationUC,
		PaymentUC:      paymentUC,
		HealthUC:       healthUC,
		Tokens:         tokens,
		Revocations:    revocations,
		Config:         cfg,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}

// redisCheck reports "disabled" when Redis was never configured.
func redisCheck() usecase.HealthCheck {
	if redis.Client() == nil {
		return nil
	}
	return redis.HealthCheck
}
