package workflow

import "github.com/dukex/leadflow/pkg/models"

const (
	roleCustomerCare    = "Customer Care Executive"
	roleFieldExecutive  = "Field Executive"
	roleFunctionalTeam  = "Functional Team"
	roleSalesManager    = "Sales Manager"
	roleAdmin           = "Admin"
	colorBlue           = "#3b82f6"
	colorViolet         = "#8b5cf6"
	colorAmber          = "#f59e0b"
	colorPink           = "#ec4899"
	colorEmerald        = "#10b981"
	colorCyan           = "#06b6d4"
	colorGreen          = "#22c55e"
	colorGray           = "#6b7280"
	colorRed            = "#ef4444"
	priorityHigh        = "High"
	priorityUrgent      = "Urgent"
	followUpAfterDays   = 2
	staleActivityInDays = 7
)

func leadStatus(id, name, color string, order int, transitions []string, rules ...models.AutomationRule) models.WorkflowStatus {
	if transitions == nil {
		transitions = []string{}
	}

	if rules == nil {
		rules = []models.AutomationRule{}
	}

	return models.WorkflowStatus{
		ID:                 id,
		Name:               name,
		EntityType:         models.EntityTypeLead,
		Color:              color,
		Order:              order,
		IsActive:           true,
		AllowedTransitions: transitions,
		AutomationRules:    rules,
	}
}

func rule(id, name string, trigger models.TriggerKind, conditions []models.RuleCondition, actions ...models.RuleAction) models.AutomationRule {
	if conditions == nil {
		conditions = []models.RuleCondition{}
	}

	return models.AutomationRule{
		ID:         id,
		Name:       name,
		Trigger:    trigger,
		Conditions: conditions,
		Actions:    actions,
		IsActive:   true,
	}
}

func daysSince(field string, days int) []models.RuleCondition {
	return []models.RuleCondition{{Field: field, Operator: models.OperatorGreaterThan, Value: days}}
}

// DefaultLeadStatuses returns a fresh copy of the stock Lead pipeline.
func DefaultLeadStatuses() []models.WorkflowStatus {
	return []models.WorkflowStatus{
		leadStatus("lead-new", "New", colorBlue, 1,
			[]string{"lead-contacted", "lead-not-interested"},
			rule("auto-assign-cce", "Auto-assign to CCE", models.TriggerStatusChange, nil,
				models.NewAssignTo(roleCustomerCare, string(models.AssignmentRoundRobin)),
				models.NewCreateTask(models.CreateTask{
					Title:       "Contact New Lead",
					Description: "Make initial contact with the lead",
					Priority:    priorityHigh,
				}),
			),
		),
		leadStatus("lead-contacted", "Contacted", colorViolet, 2,
			[]string{"lead-qualified", "lead-not-responding", "lead-callback", "lead-not-interested"}),
		leadStatus("lead-not-responding", "Not Responding", colorAmber, 3,
			[]string{"lead-contacted", "lead-callback", "lead-not-interested"},
			rule("reminder-follow-up", "Follow-up Reminder", models.TriggerTimeBased,
				daysSince("days_since_last_contact", followUpAfterDays),
				models.NewSendNotification("Follow-up required for non-responding lead"),
			),
		),
		leadStatus("lead-callback", "Call Back Requested", colorPink, 4,
			[]string{"lead-contacted", "lead-qualified"}),
		leadStatus("lead-qualified", "Qualified", colorEmerald, 5,
			[]string{"lead-appointment-scheduled", "lead-not-interested"}),
		leadStatus("lead-appointment-scheduled", "Appointment Scheduled", colorCyan, 6,
			[]string{"lead-visit-completed", "lead-qualified"},
			rule("assign-field-executive", "Assign to Field Executive", models.TriggerStatusChange, nil,
				models.NewCreateTask(models.CreateTask{
					Title:        "Conduct Field Visit",
					AssignToRole: roleFieldExecutive,
					Priority:     priorityHigh,
				}),
			),
		),
		leadStatus("lead-visit-completed", "Visit Completed", colorViolet, 7,
			[]string{"lead-demo-request", "lead-quotation-request", "lead-follow-up", "lead-not-interested"}),
		leadStatus("lead-demo-request", "Demo Request", colorAmber, 8,
			[]string{"lead-demo-completed", "lead-quotation-request"},
			rule("assign-functional-team", "Assign to Functional Team", models.TriggerStatusChange, nil,
				models.NewCreateTask(models.CreateTask{
					Title:        "Prepare Demo",
					AssignToRole: roleFunctionalTeam,
					Priority:     priorityHigh,
				}),
			),
		),
		leadStatus("lead-demo-completed", "Demo Completed", colorViolet, 9,
			[]string{"lead-quotation-request", "lead-follow-up", "lead-not-interested"},
			rule("demo-follow-up", "Demo Follow-up Reminder", models.TriggerTimeBased,
				daysSince("days_since_demo", followUpAfterDays),
				models.NewSendNotification("Follow-up required after demo"),
			),
		),
		leadStatus("lead-quotation-request", "Quotation Request", colorAmber, 10,
			[]string{"lead-quotation-sent"},
			rule("create-quotation", "Create Quotation", models.TriggerStatusChange, nil,
				models.NewCreateTask(models.CreateTask{
					Title:        "Prepare Quotation",
					AssignToRole: roleFunctionalTeam,
					Priority:     priorityHigh,
				}),
			),
		),
		leadStatus("lead-quotation-sent", "Quotation Sent", colorCyan, 11,
			[]string{"lead-waiting-po", "lead-negotiation", "lead-not-interested"},
			rule("quotation-follow-up", "Quotation Follow-up", models.TriggerTimeBased,
				daysSince("days_since_quote", followUpAfterDays),
				models.NewSendNotification("Follow-up required after quotation sent", roleSalesManager, roleAdmin),
				models.NewCreateTask(models.CreateTask{
					Title:        "Create Work Order",
					AssignToRole: roleAdmin,
					Priority:     priorityUrgent,
				}),
			),
		),
		leadStatus("lead-negotiation", "Negotiation", colorAmber, 12,
			[]string{"lead-quotation-sent", "lead-waiting-po", "lead-not-interested"}),
		leadStatus("lead-waiting-po", "Waiting for PO", colorViolet, 13,
			[]string{"lead-po-received", "lead-on-hold", "lead-not-interested"}),
		leadStatus("lead-po-received", "PO Received", colorEmerald, 14,
			[]string{"lead-converted"},
			rule("po-received-actions", "PO Received Actions", models.TriggerStatusChange, nil,
				models.NewSendNotification("PO received - Notify accounts & operations", roleSalesManager, roleAdmin),
				models.NewCreateTask(models.CreateTask{
					Title:        "Create Work Order",
					AssignToRole: roleAdmin,
					Priority:     priorityUrgent,
				}),
			),
		),
		leadStatus("lead-converted", "Converted", colorGreen, 15, nil),
		leadStatus("lead-on-hold", "On Hold", colorGray, 16,
			[]string{"lead-qualified", "lead-follow-up", "lead-not-interested"}),
		leadStatus("lead-follow-up", "Follow-up", colorAmber, 17,
			[]string{"lead-qualified", "lead-appointment-scheduled", "lead-not-interested"},
			rule("follow-up-reminder", "Follow-up Reminder", models.TriggerTimeBased,
				daysSince("days_since_last_activity", staleActivityInDays),
				models.NewSendNotification("Follow-up required - No activity for 7 days"),
			),
		),
		leadStatus("lead-not-interested", "Not Interested", colorRed, 18, nil),
		leadStatus("lead-lost-competitor", "Lost to Competitor", colorRed, 19, nil),
		leadStatus("lead-lost-budget", "Lost - Budget Issue", colorRed, 20, nil),
		leadStatus("lead-lost-fake", "Fake Inquiry", colorRed, 21, nil),
	}
}

// DefaultAssignmentRules returns a fresh copy of the stock assignment rules.
func DefaultAssignmentRules() []models.AssignmentRule {
	return []models.AssignmentRule{
		{
			ID:         "assign-cce-round-robin",
			Name:       "Auto-assign New Leads to CCE (Round Robin)",
			EntityType: models.EntityTypeLead,
			Method:     models.AssignmentRoundRobin,
			IsActive:   true,
			Criteria: []models.RuleCondition{
				{Field: "status", Operator: models.OperatorEquals, Value: "New"},
			},
			AssignToRole: roleCustomerCare,
		},
		{
			ID:           "assign-fe-territory",
			Name:         "Assign Visits to FE by Territory",
			EntityType:   models.EntityTypeVisit,
			Method:       models.AssignmentTerritory,
			IsActive:     true,
			Criteria:     []models.RuleCondition{},
			AssignToRole: roleFieldExecutive,
		},
	}
}
