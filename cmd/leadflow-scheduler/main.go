// Package main runs the time-based rule sweeper.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukex/leadflow/pkg/cmd"
	"github.com/dukex/leadflow/pkg/log"
	"github.com/dukex/leadflow/pkg/metrics"
	"github.com/dukex/leadflow/pkg/scheduler"
	"github.com/dukex/leadflow/pkg/services"
	cli "github.com/urfave/cli/v3"
)

const shutdownTimeout = 30 * time.Second

func main() {
	command := &cli.Command{
		Name:                  "leadflow-scheduler",
		Usage:                 "Evaluate time_based automation rules on a schedule",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "entities-path",
				Usage:   "Directory holding <EntityType>.json entity snapshots",
				Value:   "./entities",
				Sources: cli.EnvVars("ENTITIES_PATH"),
			},
			&cli.StringFlag{
				Name:    "schedule",
				Usage:   "Sweep cron expression or @every duration",
				Value:   "@every 1h",
				Sources: cli.EnvVars("SWEEP_SCHEDULE"),
			},
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single sweep and exit",
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (memory, kafka)",
				Value:   "memory",
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
				Value:   9092,
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

			logger := log.WithModule("leadflow-scheduler")

			logger.InfoContext(ctx, "Initializing leadflow scheduler")

			tracer, shutdown := cmd.NewTracer(ctx, command.Bool("otel-enabled"), "leadflow-scheduler", logger)
			defer func() {
				if err := shutdown(context.WithoutCancel(ctx)); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			persistence := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			defer func() {
				if err := persistence.Close(context.WithoutCancel(ctx)); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(cmd.EventBusConfig{
				Provider:    command.String("event-bus"),
				ServiceName: "leadflow-scheduler",
				Brokers:     command.String("kafka-brokers"),
				OTELEnabled: command.Bool("otel-enabled"),
			}, logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			m := metrics.New()

			automation := services.NewAutomation(persistence,
				services.WithLogger(logger),
				services.WithPublisher(eventBus),
				services.WithMetrics(m),
				services.WithTracer(tracer),
			)

			sweeper, err := scheduler.NewSweeper(
				persistence,
				scheduler.NewFileSource(command.String("entities-path")),
				automation,
				command.String("schedule"),
				m,
				logger,
			)
			if err != nil {
				return err
			}

			if command.Bool("once") {
				_, err := sweeper.Sweep(ctx)

				return err
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if port := command.Int("metrics-port"); port > 0 {
				go cmd.ServeMetrics(ctx, port, m, logger)
			}

			if err := sweeper.Start(ctx); err != nil {
				return err
			}

			<-ctx.Done()
			logger.Info("Shutting down gracefully...")

			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			return sweeper.Stop(stopCtx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
