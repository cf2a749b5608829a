package workflow

import (
	"fmt"

	"github.com/dukex/leadflow/pkg/models"
)

// IssueKind classifies a lint finding.
type IssueKind string

const (
	IssueDanglingTransition    IssueKind = "dangling_transition"
	IssueSelfTransition        IssueKind = "self_transition"
	IssueCrossEntityTransition IssueKind = "cross_entity_transition"
	IssueDuplicateName         IssueKind = "duplicate_name"
	IssueUnknownTrigger        IssueKind = "unknown_trigger"
	IssueUnknownOperator       IssueKind = "unknown_operator"
)

// Issue is a data-quality finding. Issues never block evaluation.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	StatusID string    `json:"statusId"`
	RuleID   string    `json:"ruleId,omitempty"`
	Message  string    `json:"message"`
}

// Lint inspects a registry snapshot for references the write path does not
// validate. The result is in snapshot order.
func Lint(statuses []models.WorkflowStatus) []Issue {
	issues := []Issue{}
	names := make(map[models.EntityType]map[string]string)

	for _, s := range statuses {
		if names[s.EntityType] == nil {
			names[s.EntityType] = make(map[string]string)
		}

		if firstID, seen := names[s.EntityType][s.Name]; seen {
			issues = append(issues, Issue{
				Kind:     IssueDuplicateName,
				StatusID: s.ID,
				Message:  fmt.Sprintf("name %q already used by %s", s.Name, firstID),
			})
		} else {
			names[s.EntityType][s.Name] = s.ID
		}

		for _, target := range s.AllowedTransitions {
			issues = append(issues, lintTransition(s, target, statuses)...)
		}

		for _, r := range s.AutomationRules {
			issues = append(issues, lintRule(s, r)...)
		}
	}

	return issues
}

func lintTransition(s models.WorkflowStatus, target string, statuses []models.WorkflowStatus) []Issue {
	if target == s.ID {
		return []Issue{{
			Kind:     IssueSelfTransition,
			StatusID: s.ID,
			Message:  "status lists itself as a transition target",
		}}
	}

	t, ok := StatusByID(target, statuses)
	if !ok {
		return []Issue{{
			Kind:     IssueDanglingTransition,
			StatusID: s.ID,
			Message:  fmt.Sprintf("transition target %q does not exist", target),
		}}
	}

	if t.EntityType != s.EntityType {
		return []Issue{{
			Kind:     IssueCrossEntityTransition,
			StatusID: s.ID,
			Message:  fmt.Sprintf("transition target %q belongs to %s, not %s", target, t.EntityType, s.EntityType),
		}}
	}

	return nil
}

func lintRule(s models.WorkflowStatus, r models.AutomationRule) []Issue {
	var issues []Issue

	if !r.Trigger.IsValid() {
		issues = append(issues, Issue{
			Kind:     IssueUnknownTrigger,
			StatusID: s.ID,
			RuleID:   r.ID,
			Message:  fmt.Sprintf("trigger %q never matches", r.Trigger),
		})
	}

	for _, c := range r.Conditions {
		if !c.Operator.IsValid() {
			issues = append(issues, Issue{
				Kind:     IssueUnknownOperator,
				StatusID: s.ID,
				RuleID:   r.ID,
				Message:  fmt.Sprintf("operator %q on field %q always evaluates false", c.Operator, c.Field),
			})
		}
	}

	return issues
}
