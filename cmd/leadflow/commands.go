package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dukex/leadflow/pkg/cmd"
	"github.com/dukex/leadflow/pkg/log"
	"github.com/dukex/leadflow/pkg/models"
	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/services"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

var (
	errMissingArgument = errors.New("missing argument")
	errLintIssues      = errors.New("registry has lint issues")
)

// withPersistence opens the configured persistence for the duration of fn.
func withPersistence(ctx context.Context, command *cli.Command, fn func(persistence.Persistence) error) error {
	log.Setup(command.String("log-level"), command.String("log-format"))

	logger := log.WithModule("leadflow-cli")
	p := cmd.NewPersistence(ctx, logger, command.String("database-url"))

	defer func() {
		if err := p.Close(ctx); err != nil {
			logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
		}
	}()

	return fn(p)
}

func NewSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Seed the default Lead workflow and assignment rules into an empty registry",
		Action: func(ctx context.Context, command *cli.Command) error {
			return withPersistence(ctx, command, func(p persistence.Persistence) error {
				result, err := services.SeedDefaults(ctx, p)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(command.Root().Writer, "seeded %d statuses and %d assignment rules\n",
					result.Statuses, result.AssignmentRules)

				return err
			})
		},
	}
}

func NewImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import statuses from a YAML or JSON file, replacing statuses with the same id",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, command *cli.Command) error {
			path := command.Args().First()
			if path == "" {
				return fmt.Errorf("%w: FILE", errMissingArgument)
			}

			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			statuses, err := ParseStatuses(data)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", path, err)
			}

			return withPersistence(ctx, command, func(p persistence.Persistence) error {
				count, err := services.NewStatuses(p).Import(ctx, statuses)
				if err != nil {
					return err
				}

				_, err = fmt.Fprintf(command.Root().Writer, "imported %d statuses\n", count)

				return err
			})
		},
	}
}

func NewLintCommand() *cli.Command {
	return &cli.Command{
		Name:  "lint",
		Usage: "Report dangling transitions, duplicate names and unknown rule references",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "Exit with an error when issues are found",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			return withPersistence(ctx, command, func(p persistence.Persistence) error {
				issues, err := services.NewStatuses(p).Lint(ctx)
				if err != nil {
					return err
				}

				w := command.Root().Writer
				for _, issue := range issues {
					fmt.Fprintf(w, "%s\t%s\t%s\n", issue.Kind, issue.StatusID, issue.Message)
				}

				fmt.Fprintf(w, "%d issues\n", len(issues))

				if command.Bool("strict") && len(issues) > 0 {
					return errLintIssues
				}

				return nil
			})
		},
	}
}

func NewTransitionsCommand() *cli.Command {
	return &cli.Command{
		Name:      "transitions",
		Usage:     "List the statuses reachable from a status",
		ArgsUsage: "STATUS_ID",
		Action: func(ctx context.Context, command *cli.Command) error {
			statusID := command.Args().First()
			if statusID == "" {
				return fmt.Errorf("%w: STATUS_ID", errMissingArgument)
			}

			return withPersistence(ctx, command, func(p persistence.Persistence) error {
				targets, err := services.NewStatuses(p).Transitions(ctx, statusID)
				if err != nil {
					return err
				}

				for _, target := range targets {
					fmt.Fprintf(command.Root().Writer, "%s\t%s\n", target.ID, target.Name)
				}

				return nil
			})
		},
	}
}

func NewResolveCommand() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Usage:     "Print the actions a trigger would produce for an entity, without side effects",
		ArgsUsage: "STATUS_ID",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "trigger",
				Usage: "Trigger kind (status_change, time_based, field_update)",
				Value: string(models.TriggerStatusChange),
			},
			&cli.StringFlag{
				Name:  "entity",
				Usage: "Entity snapshot as a JSON object",
				Value: "{}",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			statusID := command.Args().First()
			if statusID == "" {
				return fmt.Errorf("%w: STATUS_ID", errMissingArgument)
			}

			var entity models.Entity
			if err := json.Unmarshal([]byte(command.String("entity")), &entity); err != nil {
				return fmt.Errorf("invalid --entity: %w", err)
			}

			return withPersistence(ctx, command, func(p persistence.Persistence) error {
				resolution, err := services.NewAutomation(p).ResolveActions(ctx, statusID, entity,
					models.TriggerKind(command.String("trigger")))
				if err != nil {
					return err
				}

				encoder := json.NewEncoder(command.Root().Writer)
				encoder.SetIndent("", "  ")

				return encoder.Encode(resolution)
			})
		},
	}
}

// ParseStatuses reads a list of statuses from YAML (a JSON document is
// valid YAML too). Keys follow the JSON field names.
func ParseStatuses(data []byte) ([]models.WorkflowStatus, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	if wrapped, ok := doc.(map[string]any); ok {
		doc = wrapped["statuses"]
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var statuses []models.WorkflowStatus
	if err := json.Unmarshal(raw, &statuses); err != nil {
		return nil, err
	}

	return statuses, nil
}
