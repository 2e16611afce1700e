package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matthewbaird/cruder/internal/schema"
)

// MemoryStore implements Store using an insertion-ordered slice.
// Intended for demos and testing — no database required. Insertion order
// is the stable iteration order the list engine relies on. Fields
// declared unique in the schema are enforced the same way a database
// constraint would be.
type MemoryStore struct {
	mu      sync.RWMutex
	res     *schema.Resource
	records []Record
	index   map[uuid.UUID]int
}

// NewMemoryStore creates a new empty MemoryStore for res.
func NewMemoryStore(res *schema.Resource) *MemoryStore {
	return &MemoryStore{res: res, index: make(map[uuid.UUID]int)}
}

func (s *MemoryStore) Insert(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[rec.ID]; exists {
		return &ConstraintError{Column: "id", Message: "duplicate record id"}
	}
	if err := s.checkUnique(rec); err != nil {
		return err
	}
	s.index[rec.ID] = len(s.records)
	s.records = append(s.records, rec.Clone())
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return s.records[i].Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[rec.ID]
	if !ok {
		return ErrNotFound
	}
	if err := s.checkUnique(rec); err != nil {
		return err
	}
	updated := rec.Clone()
	updated.CreatedAt = s.records[i].CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	s.records[i] = updated
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return ErrNotFound
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.records); j++ {
		s.index[s.records[j].ID] = j
	}
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Clone()
	}
	return out, nil
}

// checkUnique enforces unique field declarations against all other
// records. Callers must hold the lock.
func (s *MemoryStore) checkUnique(rec Record) error {
	if s.res == nil {
		return nil
	}
	for _, fd := range s.res.Fields() {
		if !fd.Unique {
			continue
		}
		v, ok := rec.Values[fd.Name]
		if !ok || v == nil || v == "" {
			continue
		}
		for _, other := range s.records {
			if other.ID == rec.ID {
				continue
			}
			if other.Values[fd.Name] == v {
				return &ConstraintError{
					Column:  fd.Name,
					Message: "UNIQUE constraint failed: " + s.res.Name + "." + fd.Name,
				}
			}
		}
	}
	return nil
}
