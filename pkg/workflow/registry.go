// Package workflow implements the status registry queries, transition
// validation, condition evaluation and automation rule resolution.
//
// Every function is a pure computation over the snapshot passed in by the
// caller. Nothing here performs I/O, caches, or returns errors for bad data.
package workflow

import (
	"slices"
	"sort"

	"github.com/dukex/leadflow/pkg/models"
)

// StatusByID finds a status in the snapshot. Absence is a normal outcome.
func StatusByID(id string, statuses []models.WorkflowStatus) (*models.WorkflowStatus, bool) {
	for i := range statuses {
		if statuses[i].ID == id {
			return &statuses[i], true
		}
	}

	return nil, false
}

// AvailableTransitions returns the statuses reachable in one hop from
// currentID, in snapshot order rather than edge order. An unknown or
// terminal status yields an empty list.
func AvailableTransitions(currentID string, statuses []models.WorkflowStatus) []models.WorkflowStatus {
	current, ok := StatusByID(currentID, statuses)
	if !ok {
		return []models.WorkflowStatus{}
	}

	targets := make([]models.WorkflowStatus, 0, len(current.AllowedTransitions))

	for _, s := range statuses {
		if slices.Contains(current.AllowedTransitions, s.ID) {
			targets = append(targets, s)
		}
	}

	return targets
}

// CanTransitionTo reports whether toID is a direct target of fromID.
// Unknown fromID is false. Inactive targets are not filtered here.
func CanTransitionTo(fromID, toID string, statuses []models.WorkflowStatus) bool {
	current, ok := StatusByID(fromID, statuses)
	if !ok {
		return false
	}

	return slices.Contains(current.AllowedTransitions, toID)
}

// StatusesFor returns the statuses of one entity type, keeping snapshot order.
func StatusesFor(entityType models.EntityType, statuses []models.WorkflowStatus) []models.WorkflowStatus {
	out := make([]models.WorkflowStatus, 0, len(statuses))

	for _, s := range statuses {
		if s.EntityType == entityType {
			out = append(out, s)
		}
	}

	return out
}

// SortByOrder sorts statuses by display order. Ties keep their relative
// position since order values need not be unique.
func SortByOrder(statuses []models.WorkflowStatus) {
	sort.SliceStable(statuses, func(i, j int) bool {
		return statuses[i].Order < statuses[j].Order
	})
}
