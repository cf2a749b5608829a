package services

import (
	"context"
	"fmt"

	"github.com/dukex/leadflow/pkg/persistence"
	"github.com/dukex/leadflow/pkg/workflow"
)

type SeedResult struct {
	Statuses        int `json:"statuses"`
	AssignmentRules int `json:"assignmentRules"`
}

// SeedDefaults stores the default Lead workflow and assignment rules. Each
// collection is seeded only when it is empty, so running it twice is a no-op.
func SeedDefaults(ctx context.Context, p persistence.Persistence) (SeedResult, error) {
	var result SeedResult

	statuses, err := p.StatusRepository().GetAll(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list statuses: %w", err)
	}

	if len(statuses) == 0 {
		for _, status := range workflow.DefaultLeadStatuses() {
			if err := p.StatusRepository().Save(ctx, &status); err != nil {
				return result, fmt.Errorf("failed to seed status %s: %w", status.ID, err)
			}

			result.Statuses++
		}
	}

	rules, err := p.AssignmentRuleRepository().GetAll(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list assignment rules: %w", err)
	}

	if len(rules) == 0 {
		for _, rule := range workflow.DefaultAssignmentRules() {
			if err := p.AssignmentRuleRepository().Save(ctx, &rule); err != nil {
				return result, fmt.Errorf("failed to seed assignment rule %s: %w", rule.ID, err)
			}

			result.AssignmentRules++
		}
	}

	return result, nil
}

// HealthCheck reports whether the persistence layer is reachable.
func HealthCheck(ctx context.Context, p persistence.Persistence) (string, bool) {
	if err := p.HealthCheck(ctx); err != nil {
		return "Persistence layer unhealthy", false
	}

	return "leadflow is healthy", true
}
