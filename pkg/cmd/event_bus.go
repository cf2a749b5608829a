package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/leadflow/pkg/channels/gochannel"
	"github.com/dukex/leadflow/pkg/channels/kafka"
	"github.com/dukex/leadflow/pkg/eventbus"
	"github.com/dukex/leadflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/trace"
)

type EventBusConfig struct {
	Provider    string
	ServiceName string
	Brokers     string
	OTELEnabled bool
}

// NewEventBus builds the event bus named by cfg.Provider. The memory bus
// only delivers inside the current process.
func NewEventBus(cfg EventBusConfig, logger *slog.Logger) eventbus.EventBus {
	wmLogger := watermill.NewSlogLogger(logger)

	switch cfg.Provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(wmLogger, kafka.ParseBrokers(cfg.Brokers), cfg.ServiceName, cfg.OTELEnabled)
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	case "memory", "":
		pub, sub, err := gochannel.CreateChannel(wmLogger)
		if err != nil {
			panic(fmt.Errorf("failed to create in-memory pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	default:
		panic("Unsupported event bus provider: " + cfg.Provider)
	}
}

// NewTracer returns an OTLP tracer when enabled and a no-op tracer otherwise.
// The shutdown func is always safe to call.
// nolint:ireturn
func NewTracer(ctx context.Context, enabled bool, serviceName string, logger *slog.Logger) (trace.Tracer, func(context.Context) error) {
	if !enabled {
		return otelhelper.NoopTracer(), func(context.Context) error { return nil }
	}

	tracer, shutdown, err := otelhelper.NewTracer(ctx, serviceName)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to set up tracing, continuing without it", "error", err)

		return otelhelper.NoopTracer(), func(context.Context) error { return nil }
	}

	return tracer, shutdown
}
