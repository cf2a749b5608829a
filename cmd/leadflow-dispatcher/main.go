// Package main runs the action dispatcher: it consumes ActionsResolved
// events and hands every action to its executor.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dukex/leadflow/pkg/assignment"
	"github.com/dukex/leadflow/pkg/cmd"
	"github.com/dukex/leadflow/pkg/dispatcher"
	"github.com/dukex/leadflow/pkg/log"
	"github.com/dukex/leadflow/pkg/metrics"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

func main() {
	command := &cli.Command{
		Name:                  "leadflow-dispatcher",
		Usage:                 "Route resolved automation actions to executors",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "dispatcher-id",
				Aliases: []string{"id"},
				Usage:   "Custom dispatcher ID (auto-generated if not provided)",
				Value:   "",
				Sources: cli.EnvVars("DISPATCHER_ID"),
			},
			&cli.StringFlag{
				Name:     "roster-path",
				Usage:    "YAML file mapping roles and territories to users",
				Required: true,
				Sources:  cli.EnvVars("ROSTER_PATH"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for round robin cursors and workload counts (in-memory when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (memory, kafka)",
				Value:   "kafka",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.StringFlag{
				Name:    "kafka-brokers",
				Usage:   "Comma separated Kafka brokers",
				Value:   "localhost:9092",
				Sources: cli.EnvVars("KAFKA_BROKERS"),
			},
			&cli.IntFlag{
				Name:    "metrics-port",
				Usage:   "Port serving /metrics, 0 disables it",
				Value:   9093,
				Sources: cli.EnvVars("METRICS_PORT"),
			},
			&cli.BoolFlag{
				Name:    "otel-enabled",
				Usage:   "Export traces over OTLP/HTTP",
				Sources: cli.EnvVars("OTEL_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (text, json, tint)",
				Value:   "text",
				Sources: cli.EnvVars("LOG_FORMAT"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"), command.String("log-format"))

			dispatcherID := command.String("dispatcher-id")
			if dispatcherID == "" {
				dispatcherID = "dispatcher-" + uuid.New().String()[:8]
			}

			logger := log.WithModule("leadflow-dispatcher").With("dispatcher_id", dispatcherID)

			logger.InfoContext(ctx, "Initializing leadflow dispatcher")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tracer, shutdown := cmd.NewTracer(ctx, command.Bool("otel-enabled"), "leadflow-dispatcher", logger)
			defer func() {
				if err := shutdown(context.WithoutCancel(ctx)); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			rosters, err := assignment.NewRosterFile(command.String("roster-path"), logger)
			if err != nil {
				return err
			}

			go func() {
				if err := rosters.Watch(ctx); err != nil {
					logger.ErrorContext(ctx, "Roster watcher stopped", "error", err)
				}
			}()

			store, closeStore, err := newStore(ctx, command.String("redis-url"), logger)
			if err != nil {
				return err
			}
			defer closeStore()

			eventBus := cmd.NewEventBus(cmd.EventBusConfig{
				Provider:    command.String("event-bus"),
				ServiceName: "leadflow-dispatcher",
				Brokers:     command.String("kafka-brokers"),
				OTELEnabled: command.Bool("otel-enabled"),
			}, logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			m := metrics.New()

			d := dispatcher.New(m, tracer, logger)
			d.Register(dispatcher.NewAssignExecutor(assignment.NewPicker(rosters, store), eventBus, logger))
			d.SetFallback(dispatcher.NewLogExecutor(logger))

			if err := d.Subscribe(eventBus); err != nil {
				return fmt.Errorf("failed to register dispatcher handler: %w", err)
			}

			if err := eventBus.Subscribe(ctx); err != nil {
				return fmt.Errorf("failed to subscribe to events: %w", err)
			}

			if port := command.Int("metrics-port"); port > 0 {
				go cmd.ServeMetrics(ctx, port, m, logger)
			}

			logger.InfoContext(ctx, "Dispatcher started")

			<-ctx.Done()
			logger.Info("Shutting down gracefully...")

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}

func newStore(ctx context.Context, redisURL string, logger *slog.Logger) (assignment.Store, func(), error) {
	if redisURL == "" {
		logger.WarnContext(ctx, "REDIS_URL not set, assignment cursors are kept in memory")

		return assignment.NewMemoryStore(), func() {}, nil
	}

	store, err := assignment.NewRedisStoreFromURL(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}

	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close Redis store", "error", err)
		}
	}, nil
}
