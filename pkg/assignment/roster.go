// Package assignment picks the user an assign_to action lands on.
package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

var ErrEmptyRole = errors.New("role has no members")

// Roster lists the users holding each role, optionally split by territory.
type Roster struct {
	Roles map[string][]string `yaml:"roles"`
	// Territories maps territory -> role -> users.
	Territories map[string]map[string][]string `yaml:"territories"`
	// Sources maps lead source -> role -> users.
	Sources map[string]map[string][]string `yaml:"sources"`
}

func (r *Roster) Members(role string) []string {
	if r == nil {
		return nil
	}

	return r.Roles[role]
}

// TerritoryMembers returns the role holders of territory, falling back to
// every holder of the role.
func (r *Roster) TerritoryMembers(territory, role string) []string {
	if r == nil {
		return nil
	}

	if members := r.Territories[territory][role]; len(members) > 0 {
		return members
	}

	return r.Roles[role]
}

// SourceMembers returns the role holders handling source, falling back to
// every holder of the role.
func (r *Roster) SourceMembers(source, role string) []string {
	if r == nil {
		return nil
	}

	if members := r.Sources[source][role]; len(members) > 0 {
		return members
	}

	return r.Roles[role]
}

func ParseRoster(data []byte) (*Roster, error) {
	var roster Roster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	return &roster, nil
}

func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster %s: %w", path, err)
	}

	return ParseRoster(data)
}

// RosterFile serves the roster loaded from a YAML file and reloads it when
// the file changes.
type RosterFile struct {
	path    string
	current atomic.Pointer[Roster]
	logger  *slog.Logger
}

func NewRosterFile(path string, logger *slog.Logger) (*RosterFile, error) {
	roster, err := LoadRoster(path)
	if err != nil {
		return nil, err
	}

	rf := &RosterFile{path: path, logger: logger.With("module", "roster", "path", path)}
	rf.current.Store(roster)

	return rf, nil
}

func (rf *RosterFile) Roster() *Roster {
	return rf.current.Load()
}

// Watch reloads the roster on writes until ctx is done. The directory is
// watched because editors often replace the file instead of writing it.
// A roster that fails to parse keeps the previous one.
func (rf *RosterFile) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create roster watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(rf.path)); err != nil {
		return fmt.Errorf("failed to watch roster directory: %w", err)
	}

	target := filepath.Clean(rf.path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}

			roster, err := LoadRoster(rf.path)
			if err != nil {
				rf.logger.WarnContext(ctx, "Keeping previous roster", "error", err)

				continue
			}

			rf.current.Store(roster)
			rf.logger.InfoContext(ctx, "Roster reloaded", "roles", len(roster.Roles))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			rf.logger.ErrorContext(ctx, "Roster watcher error", "error", err)
		}
	}
}
