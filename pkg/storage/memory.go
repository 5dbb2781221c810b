package storage

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/matzehuels/sheetcalc/pkg/errors"
	"github.com/matzehuels/sheetcalc/pkg/workbook"
)

// MemoryStore keeps workbooks in memory.
type MemoryStore struct {
	mu        sync.RWMutex
	workbooks map[string]*workbook.Workbook
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{workbooks: make(map[string]*workbook.Workbook)}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*workbook.Workbook, error) {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	wb, ok := s.workbooks[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeWorkbookNotFound, "workbook %s not found", id)
	}
	return clone(wb), nil
}

func (s *MemoryStore) Save(ctx context.Context, id string, wb *workbook.Workbook) error {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workbooks[id] = clone(wb)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateWorkbookID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workbooks, id)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.workbooks)), nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Repository = (*MemoryStore)(nil)
