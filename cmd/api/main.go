package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/smartclaim/backend/internal/auth"
	"github.com/smartclaim/backend/internal/claims"
	"github.com/smartclaim/backend/internal/documents"
	"github.com/smartclaim/backend/internal/fraud"
	"github.com/smartclaim/backend/internal/ocr"
	"github.com/smartclaim/backend/internal/policies"
	"github.com/smartclaim/backend/internal/readiness"
	"github.com/smartclaim/backend/internal/timeline"
	"github.com/smartclaim/backend/internal/validation"
	"github.com/smartclaim/backend/internal/workflow"
	"github.com/smartclaim/backend/pkg/common"
	"github.com/smartclaim/backend/pkg/config"
	"github.com/smartclaim/backend/pkg/database"
	"github.com/smartclaim/backend/pkg/logger"
	"github.com/smartclaim/backend/pkg/middleware"
	"github.com/smartclaim/backend/pkg/ratelimit"
	"github.com/smartclaim/backend/pkg/redis"
	"github.com/smartclaim/backend/pkg/storage"
)

const serviceVersion = "1.0.0"

func main() {
	cfg, err := config.Load("claims-api")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Server.Environment); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Run database migrations
	if err := database.RunMigrations(&cfg.Database); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	pool, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(pool)
	logger.Info("Connected to PostgreSQL")

	// Redis backs rate limiting; the API still serves without it.
	var redisClient *redis.Client
	if cfg.RateLimit.Enabled {
		redisClient, err = redis.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Warn("Redis unavailable, rate limiting disabled", zap.Error(err))
			cfg.RateLimit.Enabled = false
		} else {
			defer redisClient.Close()
			logger.Info("Connected to Redis")
		}
	}

	store, err := buildStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize storage", zap.Error(err))
	}

	// Repositories
	userRepo := auth.NewRepository(pool)
	policyRepo := policies.NewRepository(pool)
	claimRepo := claims.NewRepository(pool)
	documentRepo := documents.NewRepository(pool)
	timelineRepo := timeline.NewRepository(pool)

	// Services
	authService := auth.NewService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	timelineService := timeline.NewService(timelineRepo)
	policyService := policies.NewService(policyRepo)
	claimService := claims.NewService(claimRepo, policyRepo)
	readinessService := readiness.NewService(claimRepo, documentRepo, timelineService)
	documentService := documents.NewService(documentRepo, claimRepo, store, timelineService, readinessService, documents.ServiceConfig{
		MaxFileSizeMB: cfg.Storage.MaxFileSizeMB,
	})
	validationService := validation.NewService(policyRepo, documentRepo)

	extractor := ocr.NewHeuristicExtractor(nil)
	ocrService := ocr.NewService(documentRepo, claimRepo, store, extractor, timelineService)

	fraudService := fraud.NewService(policyRepo, documentRepo, claimRepo)
	workflowService := workflow.NewService(claimRepo, documentRepo, readinessService, validationService, fraudService, ocrService, timelineService)

	// Handlers
	authHandler := auth.NewHandler(authService)
	policyHandler := policies.NewHandler(policyService)
	claimHandler := claims.NewHandler(claimService)
	documentHandler := documents.NewHandler(documentService)
	timelineHandler := timeline.NewHandler(timelineService, claimRepo)
	ocrHandler := ocr.NewHandler(ocrService)
	workflowHandler := workflow.NewHandler(workflowService)

	healthChecks := map[string]func(context.Context) error{
		"database": pool.Ping,
	}

	router := buildRouter(cfg, redisClient, healthChecks, &handlers{
		auth:      authHandler,
		policies:  policyHandler,
		claims:    claimHandler,
		documents: documentHandler,
		timeline:  timelineHandler,
		ocr:       ocrHandler,
		workflow:  workflowHandler,
	})

	addr := ":" + cfg.Server.Port
	logger.Info("Claims API starting", zap.String("port", cfg.Server.Port))
	if err := router.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func buildStorage(cfg *config.Config) (storage.Storage, error) {
	if storage.Provider(cfg.Storage.Provider) == storage.ProviderS3 {
		return storage.NewS3Storage(context.Background(), storage.S3Config{
			Bucket:    cfg.Storage.Bucket,
			Region:    cfg.Storage.Region,
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			BaseURL:   cfg.Storage.BaseURL,
		})
	}
	return storage.NewLocalStorage(cfg.Storage.LocalPath, cfg.Storage.BaseURL)
}

type handlers struct {
	auth      *auth.Handler
	policies  *policies.Handler
	claims    *claims.Handler
	documents *documents.Handler
	timeline  *timeline.Handler
	ocr       *ocr.Handler
	workflow  *workflow.Handler
}

func buildRouter(cfg *config.Config, redisClient *redis.Client, healthChecks map[string]func(context.Context) error, h *handlers) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.Metrics(cfg.Server.ServiceName))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.Server.CORSOrigins, ",")
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", common.HealthCheckWithDeps(cfg.Server.ServiceName, serviceVersion, healthChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Expensive write paths get rate limited when Redis is around.
	var limited gin.HandlerFunc
	if cfg.RateLimit.Enabled && redisClient != nil {
		limiter := ratelimit.NewLimiter(redisClient.Client, cfg.RateLimit)
		limited = ratelimit.Middleware(limiter)
	} else {
		limited = func(c *gin.Context) { c.Next() }
	}

	public := router.Group("/api/v1")
	{
		public.POST("/auth/register", limited, h.auth.Register)
		public.POST("/auth/login", limited, h.auth.Login)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	{
		api.GET("/auth/me", h.auth.Me)

		api.POST("/policies", h.policies.LinkPolicy)
		api.GET("/policies", h.policies.ListPolicies)
		api.GET("/policies/:id", h.policies.GetPolicy)

		api.POST("/claims", h.claims.CreateClaim)
		api.GET("/claims", h.claims.ListClaims)
		api.GET("/claims/:id", h.claims.GetClaim)
		api.PATCH("/claims/:id", h.claims.UpdateClaim)

		api.POST("/claims/:id/documents", limited, h.documents.UploadDocument)
		api.GET("/claims/:id/documents", h.documents.ListDocuments)

		api.POST("/claims/:id/submit", limited, h.workflow.SubmitClaim)
		api.GET("/claims/:id/risk", h.workflow.GetRiskAssessment)
		api.GET("/claims/:id/timeline", h.timeline.GetTimeline)

		if cfg.OCR.Enabled {
			api.POST("/documents/:id/ocr", h.ocr.ExtractDocument)
		}
	}

	return router
}
