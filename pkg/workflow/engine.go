package workflow

import "github.com/dukex/leadflow/pkg/models"

// FiredRule is a rule whose trigger matched and whose conditions all passed.
type FiredRule struct {
	RuleID   string              `json:"ruleId"`
	RuleName string              `json:"ruleName"`
	Actions  []models.RuleAction `json:"actions"`
}

// FireRules selects the active rules of status matching trigger and
// returns, in stored order, those whose conditions pass against entity.
func FireRules(status *models.WorkflowStatus, entity models.Entity, trigger models.TriggerKind) []FiredRule {
	if status == nil {
		return nil
	}

	var fired []FiredRule

	for _, rule := range status.AutomationRules {
		if !rule.IsActive || rule.Trigger != trigger {
			continue
		}

		if !EvaluateAll(rule.Conditions, entity) {
			continue
		}

		fired = append(fired, FiredRule{
			RuleID:   rule.ID,
			RuleName: rule.Name,
			Actions:  append([]models.RuleAction(nil), rule.Actions...),
		})
	}

	return fired
}

// ResolveActions returns the actions to execute for trigger on status,
// in rule order then action order. Equivalent actions from different rules
// are all kept. The result is never nil.
func ResolveActions(status *models.WorkflowStatus, entity models.Entity, trigger models.TriggerKind) []models.RuleAction {
	actions := []models.RuleAction{}

	for _, rule := range FireRules(status, entity, trigger) {
		actions = append(actions, rule.Actions...)
	}

	return actions
}
