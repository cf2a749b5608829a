// Package models defines the core domain models for CRM workflow statuses and automation rules.
package models

// EntityType identifies the kind of business record governed by a workflow.
type EntityType string

const (
	EntityTypeLead      EntityType = "Lead"
	EntityTypeVisit     EntityType = "Visit"
	EntityTypeEnquiry   EntityType = "Enquiry"
	EntityTypeQuotation EntityType = "Quotation"
	EntityTypeDemo      EntityType = "Demo"
	EntityTypeService   EntityType = "Service"
)

// EntityTypes lists every supported entity type in display order.
func EntityTypes() []EntityType {
	return []EntityType{
		EntityTypeLead,
		EntityTypeVisit,
		EntityTypeEnquiry,
		EntityTypeQuotation,
		EntityTypeDemo,
		EntityTypeService,
	}
}

// IsValid reports whether the entity type belongs to the closed set.
func (e EntityType) IsValid() bool {
	switch e {
	case EntityTypeLead, EntityTypeVisit, EntityTypeEnquiry,
		EntityTypeQuotation, EntityTypeDemo, EntityTypeService:
		return true
	default:
		return false
	}
}

func (e EntityType) String() string {
	return string(e)
}

// Entity is a snapshot of an external business record. Field lookup is flat.
type Entity map[string]any

// Lookup returns the named field and whether it is present at all.
// A present field may still hold nil.
func (e Entity) Lookup(field string) (any, bool) {
	if e == nil {
		return nil, false
	}

	v, ok := e[field]

	return v, ok
}
