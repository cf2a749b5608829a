package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dukex/leadflow/pkg/models"
)

// Record is one entity snapshot evaluated by a sweep.
// StatusID empty means the current status is read from history.
type Record struct {
	ID       string        `json:"id"`
	StatusID string        `json:"statusId,omitempty"`
	Fields   models.Entity `json:"fields"`
}

// EntitySource lists the records of an entity type.
type EntitySource interface {
	Records(ctx context.Context, entityType models.EntityType) ([]Record, error)
}

// FileSource reads <root>/<EntityType>.json, a JSON array of records.
// A missing file is an empty entity type.
type FileSource struct {
	root string
}

func NewFileSource(root string) *FileSource {
	return &FileSource{root: strings.Replace(root, "file://", "", 1)}
}

func (s *FileSource) Records(_ context.Context, entityType models.EntityType) ([]Record, error) {
	path := filepath.Join(s.root, string(entityType)+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Record{}, nil
		}

		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return records, nil
}

// MemorySource keeps records in memory.
type MemorySource struct {
	mu      sync.RWMutex
	records map[models.EntityType][]Record
}

func NewMemorySource() *MemorySource {
	return &MemorySource{records: make(map[models.EntityType][]Record)}
}

// Put replaces the records of entityType.
func (s *MemorySource) Put(entityType models.EntityType, records ...Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[entityType] = append([]Record(nil), records...)
}

func (s *MemorySource) Records(_ context.Context, entityType models.EntityType) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]Record{}, s.records[entityType]...), nil
}
