package cmd

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/dukex/leadflow/pkg/metrics"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
)

// ServeMetrics serves /metrics and the liveness probe for workers without
// an API. It returns when ctx is done.
func ServeMetrics(ctx context.Context, port int, m *metrics.Metrics, logger *slog.Logger) {
	app := fiber.New()
	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	go func() {
		<-ctx.Done()

		if err := app.Shutdown(); err != nil {
			logger.ErrorContext(ctx, "Failed to stop metrics server", "error", err)
		}
	}()

	err := app.Listen(":"+strconv.Itoa(port), fiber.ListenConfig{DisableStartupMessage: true})
	if err != nil {
		logger.ErrorContext(ctx, "Metrics server failed", "error", err)
	}
}
