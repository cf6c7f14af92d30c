// Command server runs the error-boundary demo service.
//
// The service exposes two routes — GET /404 raises a well-known condition,
// GET /500 raises an unanticipated one — and installs one of two interception
// strategies selected by VARIANT:
//
//	VARIANT=handler     catch-all registered in the condition table; the
//	                    outer supervisory layer re-signals every condition it
//	                    answers, so each /500 is logged twice.
//	VARIANT=middleware  absorbing middleware between table dispatch and the
//	                    supervisor; each /500 is logged exactly once.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/mkarlsen/go-error-boundaries/internal/config"
	httpapi "github.com/mkarlsen/go-error-boundaries/internal/http"
	"github.com/mkarlsen/go-error-boundaries/internal/observability"
	"github.com/mkarlsen/go-error-boundaries/internal/sysutil"

	"github.com/gin-gonic/gin"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	if err := httpapi.NewServer(cfg).Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
