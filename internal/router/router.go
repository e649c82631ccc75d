package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/dromero/barberbot/internal/handler"
	"github.com/dromero/barberbot/internal/middleware"
)

// Handler registers routes on a group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

type Router struct {
	engine *gin.Engine
	h      *handler.Handler
	oauthH Handler
	ownerH Handler
	config Config
}

func NewRouter(h *handler.Handler, oauthH, ownerH Handler, config Config) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if config.RateLimit == 0 {
		config.RateLimit = 50
	}
	if config.RateBurst == 0 {
		config.RateBurst = 100
	}

	return &Router{
		engine: engine,
		h:      h,
		oauthH: oauthH,
		ownerH: ownerH,
		config: config,
	}
}

func (r *Router) Setup() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.Logger())
	r.engine.Use(middleware.Recovery())

	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  r.config.RateLimit,
		Burst: r.config.RateBurst,
	})
	r.engine.Use(limiter.RateLimit())

	r.engine.GET("/", r.h.Home)
	r.engine.GET("/healthz", r.h.HealthCheck)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Browser-facing OAuth pages live at the root, not under /api.
	r.oauthH.RegisterRoutes(r.engine.Group(""))

	api := r.engine.Group("/api/v1")
	r.ownerH.RegisterRoutes(api)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
