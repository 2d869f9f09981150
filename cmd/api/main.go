package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-resume-feedback/config"
	_ "go-resume-feedback/docs" // Important for Swagger
	v1 "go-resume-feedback/internal/delivery/http/v1"
	"go-resume-feedback/internal/domain"
	redisrepo "go-resume-feedback/internal/repository/redis"
	"go-resume-feedback/internal/usecase"
	"go-resume-feedback/pkg/ai/gemini"
	"go-resume-feedback/pkg/ai/ollama"
	"go-resume-feedback/pkg/ai/openrouter"
	"go-resume-feedback/pkg/auth"
	"go-resume-feedback/pkg/logger"
	"go-resume-feedback/pkg/raster"
	"go-resume-feedback/pkg/redis"
	"go-resume-feedback/pkg/storage"
)

// @title           Resume Feedback API
// @version         1.0
// @description     AI-powered resume feedback service using Clean Architecture.
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

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting resume feedback backend", "port", cfg.Port)

	// 3. Setup Redis (record store)
	redisClient, err := redis.New(redis.Config{URL: cfg.RedisURL, Password: cfg.RedisPassword})
	if err != nil {
		logger.Log.Error("Failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// 4. Setup Blob Store
	var blobs domain.BlobStore
	switch cfg.StorageProvider {
	case "s3":
		s3Store, err := storage.NewS3Store(context.Background(), storage.S3Config{
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.StorageBucket,
			Endpoint:        cfg.S3Endpoint,
		})
		if err != nil {
			logger.Log.Error("Failed to configure S3 storage", "error", err)
			os.Exit(1)
		}
		blobs = s3Store
	default:
		blobs = storage.NewSupabaseStore(cfg.SupabaseUrl, cfg.SupabaseKey, cfg.StorageBucket)
	}

	// 5. Setup AI providers
	var primary domain.ChatProvider
	switch cfg.PrimaryProvider {
	case "openrouter":
		if cfg.OpenRouterAPIKey != "" {
			primary = openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.OpenRouterModel)
		}
	case "gemini":
		if cfg.GeminiAPIKey != "" {
			client, err := gemini.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				logger.Log.Error("Failed to configure Gemini client", "error", err)
				os.Exit(1)
			}
			primary = client
		}
	}
	if primary == nil {
		logger.Log.Warn("No primary AI provider configured; all analyses will use the local fallback")
	}

	secondary := ollama.New(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTemperature)

	// Bounded readiness probe: a miss is logged, never fatal. The
	// resolver degrades to synthesized defaults when the model is gone.
	readyCtx, cancelReady := context.WithTimeout(context.Background(), time.Duration(cfg.ProviderReadySeconds)*time.Second)
	if err := secondary.Ready(readyCtx); err != nil {
		logger.Log.Warn("Local fallback model not reachable at startup", "url", cfg.OllamaURL, "error", err)
	}
	cancelReady()

	// 6. Setup Repositories and UseCases
	resumeRepo := redisrepo.NewResumeRepository(redisClient)
	rasterizer := raster.NewChromeRasterizer(cfg.PreviewMaxDimension, cfg.PreviewJPEGQuality)
	analysisUC := usecase.NewAnalysisUsecase(primary, secondary, blobs)
	resumeUC := usecase.NewResumeUsecase(resumeRepo, blobs, rasterizer, analysisUC)

	// 7. Setup Auth Provider (JWKS)
	jwksURL := cfg.SupabaseUrl + "/auth/v1/.well-known/jwks.json"
	jwksProvider := auth.NewProvider(jwksURL)

	// 8. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		ResumeUC:     resumeUC,
		Secondary:    secondary,
		JWKSProvider: jwksProvider,
		RedisClient:  redisClient,
		Config:       cfg,
	})

	// 9. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
