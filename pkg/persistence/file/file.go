// Package file provides file-based persistence of the workflow registry as JSON snapshots.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/dukex/leadflow/pkg/persistence"
)

const (
	statusesFile        = "statuses.json"
	assignmentRulesFile = "assignment_rules.json"
	historyFile         = "status_history.json"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root        string
	statusRepo  *StatusRepository
	ruleRepo    *AssignmentRuleRepository
	historyRepo *HistoryRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) persistence.Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:        cleanRoot,
		statusRepo:  NewStatusRepository(cleanRoot),
		ruleRepo:    NewAssignmentRuleRepository(cleanRoot),
		historyRepo: NewHistoryRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) StatusRepository() persistence.StatusRepository {
	return fp.statusRepo
}

func (fp *Persistence) AssignmentRuleRepository() persistence.AssignmentRuleRepository {
	return fp.ruleRepo
}

func (fp *Persistence) HistoryRepository() persistence.HistoryRepository {
	return fp.historyRepo
}
