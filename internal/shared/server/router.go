package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	googleauth "resume-builder/internal/auth"
	"resume-builder/internal/documents"
	"resume-builder/internal/shared/auth"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/users"
)

const redisRateWindow = time.Minute

// RouterDeps holds everything the router mounts.
type RouterDeps struct {
	Config          config.Config
	Verifier        auth.Verifier
	Redis           *redis.Client
	DocumentHandler *documents.Handler
	UserHandler     *users.Handler
	GoogleAuth      *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Metrics(),
	)

	r.GET("/metrics", metrics.Handler())

	limit := rateLimiter(deps)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	// Anonymous routes. Public document reads and the login flow.
	public := api.Group("")
	public.Use(limit)
	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(public)
	}

	// Owner routes sit behind the auth gate so the limiter keys on the user.
	owner := api.Group("")
	owner.Use(middleware.Auth(deps.Verifier), limit)
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(owner)
	}
	if deps.DocumentHandler != nil {
		deps.DocumentHandler.RegisterRoutes(owner, public)
	}

	return r
}

func rateLimiter(deps RouterDeps) gin.HandlerFunc {
	rule := middleware.RateLimitRule{
		Rate:  deps.Config.RateLimitRPS,
		Burst: deps.Config.RateLimitBurst,
	}
	if deps.Redis != nil {
		return middleware.RedisRateLimit(deps.Redis, rule, redisRateWindow)
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{"DEFAULT": rule},
	})
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
