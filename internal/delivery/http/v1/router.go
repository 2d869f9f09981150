package v1

import (
	"net/http"
	"time"

	"go-resume-feedback/config"
	"go-resume-feedback/internal/delivery/http/middleware"
	"go-resume-feedback/internal/delivery/http/response"
	"go-resume-feedback/internal/domain"
	"go-resume-feedback/pkg/auth"
	"go-resume-feedback/pkg/redis"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type RouterDeps struct {
	ResumeUC     domain.ResumeUsecase
	Secondary    domain.CompletionProvider
	JWKSProvider *auth.Provider
	RedisClient  *goredis.Client
	Config       *config.Config
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// CORS must run before anything that can short-circuit.
	r.Use(middleware.CORSMiddleware(deps.Config.FrontendURL))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.RequestID())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(deps.RedisClient, middleware.DefaultRateLimitConfig()))

	v1 := r.Group("/v1")

	v1.GET("/health", healthHandler(deps))

	// Swagger
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWKSProvider, deps.Config))
	{
		submitLimiter := middleware.RateLimitMiddleware(deps.RedisClient, middleware.SubmitRateLimitConfig(
			deps.Config.RateLimitSubmitThreshold,
			time.Duration(deps.Config.RateLimitWindowSeconds)*time.Second,
		))
		NewResumeHandler(protected, submitLimiter, deps.ResumeUC)
	}

	return r
}

// healthHandler reports liveness plus the state of the two runtime
// dependencies the service degrades without: the record store and the
// local fallback model.
func healthHandler(deps RouterDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		components := gin.H{"redis": "ok", "fallback_model": "ok"}
		healthy := true

		if err := redis.HealthCheck(c.Request.Context(), deps.RedisClient); err != nil {
			components["redis"] = err.Error()
			healthy = false
		}
		if deps.Secondary != nil {
			if err := deps.Secondary.Ready(c.Request.Context()); err != nil {
				// Degraded but serviceable: the primary provider can
				// still answer analysis requests.
				components["fallback_model"] = err.Error()
			}
		}

		if !healthy {
			response.Error(c, http.StatusServiceUnavailable, "Service degraded", components)
			return
		}
		response.Success(c, http.StatusOK, "System operational", components)
	}
}
