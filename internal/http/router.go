// Package httpapi wires the HTTP transport (Gin) to the interception
// boundaries, middleware, and the demo routes. It owns the layering that the
// demo exists to show:
//
//	transport (access log + supervisor)
//	  └─ engine: otelgin → RequestID → Metrics → CORS → security →
//	     rate limiter → [Absorb, middleware variant only] → Dispatch → routes
//
// The condition table claims well-known conditions in both variants. The
// handler variant additionally registers a catch-all in the table — which the
// supervisor executes and then re-signals, producing the duplicate raw
// traceback. The middleware variant installs the absorbing boundary instead,
// so unanticipated conditions never leave the engine.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/mkarlsen/go-error-boundaries/internal/boundary"
	"github.com/mkarlsen/go-error-boundaries/internal/config"
	"github.com/mkarlsen/go-error-boundaries/internal/http/handlers"
	"github.com/mkarlsen/go-error-boundaries/internal/http/middleware"
	"github.com/mkarlsen/go-error-boundaries/internal/httperr"
)

// NewTable builds the condition table for the configured variant. Well-known
// conditions are always claimed; the catch-all default is registered only for
// the handler variant.
func NewTable(cfg config.Config) *boundary.Table {
	table := boundary.NewTable()
	table.Register(handlers.MatchWellKnown, handlers.WellKnown())
	if cfg.Variant == config.VariantHandler {
		table.RegisterDefault(handlers.CatchAll())
	}
	return table
}

// RegisterRoutes attaches all middleware and endpoints to the given engine.
//
// Middleware order matters: correlation and instrumentation first, then the
// edge protections, and the interception boundaries innermost so that
// everything raised by a route or fallback passes through Dispatch before it
// can escape toward the transport.
func RegisterRoutes(r *gin.Engine, table *boundary.Table, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests (opt-in)
	if cfg.OTEL.Enabled {
		r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	}

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Prometheus instrumentation
	r.Use(middleware.Metrics())

	// 4) CORS posture (allow all when no origins configured)
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{middleware.HeaderRequestID, "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// 5) Security headers
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// 6) Token-bucket rate limiter per client IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByIP())
	r.Use(rl.Handler())

	// 7) Interception boundaries, innermost
	if cfg.Variant == config.VariantMiddleware {
		r.Use(boundary.Absorb())
	}
	r.Use(boundary.Dispatch(table))

	// Fallbacks raise well-known conditions like any route would.
	r.NoRoute(func(c *gin.Context) {
		_ = c.Error(httperr.New(http.StatusNotFound))
	})
	r.NoMethod(func(c *gin.Context) {
		_ = c.Error(httperr.New(http.StatusMethodNotAllowed))
	})

	// Operational endpoints, compressed. The demo routes stay uncompressed:
	// their responses may be written at the transport edge, past the
	// compressing writer's scope.
	ops := r.Group("", gzip.Gzip(gzip.DefaultCompression))
	ops.GET("/health", handlers.Health)
	ops.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Demo routes
	r.GET("/404", handlers.RaiseNotFound)
	r.GET("/500", handlers.RaiseUnanticipated)
}
