package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"orgatlas.app/api-server/internal/cache"
	"orgatlas.app/api-server/internal/http/handler"
	"orgatlas.app/api-server/internal/http/middleware"
	"orgatlas.app/api-server/internal/metrics"
)

type Options struct {
	Cache     cache.Store // nil disables the response cache
	APIKey    string
	CacheTTL  time.Duration
	Telemetry bool
}

// New assembles the full engine. Health and metrics stay outside the API key
// check; everything under /organizations requires it.
func New(h *handler.OrganizationHandler, opts Options) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	if opts.Telemetry {
		engine.Use(otelgin.Middleware("orgatlas-api"))
	}
	engine.Use(middleware.RequestLogger(), middleware.Metrics())

	engine.GET("/health", handler.Health)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	orgs := engine.Group("/organizations", middleware.APIKeyAuth(opts.APIKey))
	if opts.Cache != nil {
		orgs.Use(middleware.ResponseCache(opts.Cache, opts.CacheTTL))
	}
	OrganizationRouter(orgs, h)

	return engine
}
