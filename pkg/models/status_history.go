package models

import "time"

// StatusHistoryEntry records one status change of an entity.
type StatusHistoryEntry struct {
	ID         string     `json:"id"`
	EntityType EntityType `json:"entityType"`
	EntityID   string     `json:"entityId"`
	FromStatus string     `json:"fromStatus,omitempty"`
	ToStatus   string     `json:"toStatus"`
	ChangedBy  string     `json:"changedBy"`
	Timestamp  time.Time  `json:"timestamp"`
	Notes      string     `json:"notes,omitempty"`
	// Duration is the number of days spent in the previous status.
	Duration *float64 `json:"duration,omitempty"`
}
