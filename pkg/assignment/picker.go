package assignment

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dukex/leadflow/pkg/models"
)

// ErrManualAssignment means the method leaves the choice to a person.
var ErrManualAssignment = errors.New("assignment method requires a manual choice")

// ErrNoSpecificUsers means the specific method was given nobody to pick from.
var ErrNoSpecificUsers = errors.New("specific assignment lists no users")

// Entity fields read by the territory and source methods.
const (
	territoryField = "territory"
	sourceField    = "source"
)

// RosterProvider returns the roster in effect.
type RosterProvider interface {
	Roster() *Roster
}

// StaticRoster serves a fixed roster.
type StaticRoster struct{ R *Roster }

func (s StaticRoster) Roster() *Roster { return s.R }

type Picker struct {
	rosters RosterProvider
	store   Store
}

func NewPicker(rosters RosterProvider, store Store) *Picker {
	return &Picker{rosters: rosters, store: store}
}

// Pick selects one holder of target.Role for entity. An empty method is round
// robin. When target.Users is set, only those role holders are candidates.
func (p *Picker) Pick(ctx context.Context, target models.AssignTo, entity models.Entity) (string, error) {
	roster := p.rosters.Roster()
	role := target.Role

	switch models.AssignmentMethod(target.Method) {
	case "", models.AssignmentRoundRobin:
		return p.roundRobin(ctx, role, restrict(roster.Members(role), target.Users))
	case models.AssignmentTerritory:
		name := stringField(entity, territoryField)

		return p.roundRobin(ctx, name+"/"+role, restrict(roster.TerritoryMembers(name, role), target.Users))
	case models.AssignmentSource:
		name := stringField(entity, sourceField)

		return p.roundRobin(ctx, "source:"+name+"/"+role, restrict(roster.SourceMembers(name, role), target.Users))
	case models.AssignmentWorkload:
		return p.leastLoaded(ctx, role, restrict(roster.Members(role), target.Users))
	case models.AssignmentSpecific:
		if len(target.Users) == 0 {
			return "", fmt.Errorf("%s: %w", role, ErrNoSpecificUsers)
		}

		return p.roundRobin(ctx, "specific:"+role, restrict(roster.Members(role), target.Users))
	case models.AssignmentManual:
		return "", ErrManualAssignment
	default:
		return "", fmt.Errorf("unknown assignment method %q", target.Method)
	}
}

// restrict keeps the members listed in users, in users order. No users keeps
// every member.
func restrict(members, users []string) []string {
	if len(users) == 0 {
		return members
	}

	kept := make([]string, 0, len(users))
	for _, user := range users {
		if slices.Contains(members, user) {
			kept = append(kept, user)
		}
	}

	return kept
}

func stringField(entity models.Entity, field string) string {
	value, _ := entity.Lookup(field)
	name, _ := value.(string)

	return name
}

func (p *Picker) roundRobin(ctx context.Context, key string, members []string) (string, error) {
	if len(members) == 0 {
		return "", fmt.Errorf("%s: %w", key, ErrEmptyRole)
	}

	cursor, err := p.store.Next(ctx, key)
	if err != nil {
		return "", fmt.Errorf("failed to advance cursor %s: %w", key, err)
	}

	return members[(cursor-1)%int64(len(members))], nil
}

// leastLoaded picks the member with the fewest assignments; ties go to the
// first in roster order.
func (p *Picker) leastLoaded(ctx context.Context, role string, members []string) (string, error) {
	if len(members) == 0 {
		return "", fmt.Errorf("%s: %w", role, ErrEmptyRole)
	}

	loads, err := p.store.Loads(ctx, role, members)
	if err != nil {
		return "", fmt.Errorf("failed to read loads for %s: %w", role, err)
	}

	best := 0
	for i := range loads {
		if loads[i] < loads[best] {
			best = i
		}
	}

	if err := p.store.Assigned(ctx, role, members[best]); err != nil {
		return "", fmt.Errorf("failed to record assignment: %w", err)
	}

	return members[best], nil
}
