package memory

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"sync"

	"github.com/aretw0/stagegen/pkg/domain"
	"github.com/aretw0/stagegen/pkg/spec"
)

// Records implements ports.RecordSource over a fixed slice.
type Records []domain.SampleRecord

// Records returns a copy of the slice.
func (r Records) Records(_ context.Context) ([]domain.SampleRecord, error) {
	return slices.Clone(r), nil
}

// Store implements ports.TableSink and ports.ReferenceSource in memory.
// Tables written to it are served back as references.
// Safe for concurrent use.
type Store struct {
	tables map[string]*domain.Table
	mu     sync.RWMutex
}

// NewStore creates a store pre-loaded with tables.
func NewStore(tables ...*domain.Table) *Store {
	s := &Store{tables: make(map[string]*domain.Table)}
	for _, t := range tables {
		s.tables[t.Stage] = t.Clone()
	}
	return s
}

// Write stores a copy of t.
func (s *Store) Write(_ context.Context, t *domain.Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[t.Stage] = t.Clone()
	return nil
}

// Reference returns a copy of the stored table.
func (s *Store) Reference(_ context.Context, stage string) (*domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tables[stage]
	if !ok {
		return nil, fmt.Errorf("reference for stage %q: %w", stage, fs.ErrNotExist)
	}
	return t.Clone(), nil
}

// Stages lists the stored stage ids in natural order.
func (s *Store) Stages() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, spec.NaturalCompare)
	return ids
}
