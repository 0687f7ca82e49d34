package v1

import (
	"net/http"
	"time"

	"go-rise-platform/config"
	"go-rise-platform/internal/delivery/http/middleware"
	"go-rise-platform/internal/delivery/http/response"
	"go-rise-platform/internal/domain"
	"go-rise-platform/internal/metrics"
	"go-rise-platform/internal/usecase"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	AuthUC         domain.AuthUsecase
	JobUC          domain.JobUsecase
	CatalogUC      domain.CatalogUsecase
	EnrollmentUC   domain.EnrollmentUsecase
	UploadUC       domain.UploadUsecase
	RegistrationUC domain.RegistrationUsecase
	PaymentUC      domain.PaymentUsecase
	HealthUC       usecase.HealthUsecase
	Tokens         middleware.TokenParser
	Revocations    middleware.RevocationChecker
	Config         *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second

	r := gin.New()

	// CORS must be first
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL, cfg.ServiceEnvironment == "production"))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.ErrorHandler())
	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	health := func(c *gin.Context) {
		report := deps.HealthUC.Check(c.Request.Context())
		if report.Status != "ok" {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", report)
			return
		}
		response.Success(c, http.StatusOK, "System operational", report)
	}
	r.GET("/health", health)

	if !cfg.S3Enabled() {
		r.Static("/files", cfg.UploadDir)
	}

	v1 := r.Group("/v1")
	v1.Use(middleware.RateLimitMiddleware(middleware.GlobalRateLimit(cfg.RateLimitGlobalThreshold, window)))
	v1.GET("/health", health)
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.Revocations, deps.AuthUC))

	admin := protected.Group("")
	admin.Use(middleware.RequireRole(domain.RoleAdmin))

	loginLimit := middleware.RateLimitMiddleware(middleware.LoginRateLimit(cfg.RateLimitLoginThreshold, window))
	uploadLimit := middleware.RateLimitMiddleware(middleware.UploadRateLimit(cfg.RateLimitUploadThreshold, window))
	webhookLimit := middleware.RateLimitMiddleware(middleware.WebhookRateLimit(cfg.RateLimitGlobalThreshold, window))

	NewAuthHandler(v1, protected, deps.AuthUC, loginLimit)
	NewJobHandler(v1, admin, deps.JobUC)
	NewCatalogHandler(v1, admin, deps.CatalogUC)
	NewEnrollmentHandler(protected, deps.EnrollmentUC)
	NewUploadHandler(v1, deps.UploadUC, cfg.UploadMaxBytes, uploadLimit)
	NewRegistrationHandler(v1, admin, deps.RegistrationUC)
	NewPaymentHandler(v1, admin, deps.PaymentUC, webhookLimit)
	NewAdminHandler(admin, deps.AuthUC)

	return r
}
