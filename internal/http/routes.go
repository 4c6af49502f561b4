package http

import (
	"net/http"
	"path/filepath"
	"time"

	"task_manager/internal/config"
	"task_manager/internal/http/handlers"
	"task_manager/internal/http/middleware"
	"task_manager/internal/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	redis "github.com/redis/go-redis/v9"
)

// Deps are the constructed components the router wires together.
type Deps struct {
	Config  *config.Config
	Handler *handlers.Handler
	Health  *handlers.HealthHandler
	Tokens  middleware.TokenVerifier
	Hub     *ws.Hub
	// Redis backs the rate limiters; nil keeps counters in memory.
	Redis *redis.Client
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	cfg := d.Config

	// match on the escaped path so a title like "a/b" sent as a%2Fb stays one segment;
	// UnescapePathValues (default true) still hands handlers the decoded value
	r.UseRawPath = true

	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authLimiter := middleware.NewRateLimiter(d.Redis, "auth", cfg.AuthRateLimit, cfg.AuthRateWindow, middleware.ByIP)
	apiLimiter := middleware.NewRateLimiter(d.Redis, "api", cfg.APIRateLimit, cfg.APIRateWindow, middleware.ByIdentity)

	h := d.Handler

	user := r.Group("/user")
	user.Use(authLimiter.Handler())
	{
		user.POST("/signup", h.Signup)
		user.POST("/login", h.Login)
	}

	api := r.Group("")
	api.Use(middleware.Authenticate(d.Tokens), apiLimiter.Handler())
	{
		api.GET("/me", h.Me)
		api.GET("/me/activity", h.Activity)

		api.POST("/task/newtask", h.CreateTask)
		api.GET("/tasks", h.ListTasks)
		api.PUT("/task/:title", h.UpdateTask)
		api.DELETE("/task/deletetask", h.DeleteTask)
	}

	r.GET("/ws", ws.HandleWS(d.Hub, d.Tokens, cfg.WSAllowedOrigin))

	if cfg.FrontendDir != "" {
		r.StaticFS("/assets", gin.Dir(filepath.Join(cfg.FrontendDir, "assets"), false))
		index := filepath.Join(cfg.FrontendDir, "index.html")
		r.NoRoute(func(c *gin.Context) {
			c.File(index)
		})
		return
	}
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{Code: "NOT_FOUND", Message: "route not found"})
	})
}

func corsConfig(origins []string) cors.Config {
	cc := cors.DefaultConfig()
	if len(origins) == 1 && origins[0] == "*" {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	cc.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	cc.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"Authorization",
		middleware.RequestIDHeader,
	}
	cc.ExposeHeaders = []string{middleware.RequestIDHeader, "X-RateLimit-Remaining"}
	cc.MaxAge = 12 * time.Hour
	return cc
}
