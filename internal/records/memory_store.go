package records

import (
	"context"
	"regexp"
	"sync"
)

// MemoryStore keeps records in insertion order in process memory
type MemoryStore struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemoryStore creates a store preloaded with recs
func NewMemoryStore(recs ...Record) *MemoryStore {
	s := &MemoryStore{}
	_, _ = s.Insert(context.Background(), recs...)
	return s
}

// FindAll returns every record in insertion order
func (s *MemoryStore) FindAll(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.recs))
	copy(out, s.recs)
	return out, nil
}

// FindByID returns the first record whose patient_id equals id
func (s *MemoryStore) FindByID(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.recs {
		if v, ok := r["patient_id"].(string); ok && v == id {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

// FindByCondition returns the first record whose condition matches pattern, ignoring case
func (s *MemoryStore) FindByCondition(ctx context.Context, pattern string) (Record, error) {
	return s.findMatching(pattern, conditionPaths)
}

// FindByName returns the first record whose name matches pattern, ignoring case
func (s *MemoryStore) FindByName(ctx context.Context, pattern string) (Record, error) {
	return s.findMatching(pattern, namePaths)
}

// Insert appends recs; duplicates are stored again
func (s *MemoryStore) Insert(ctx context.Context, recs ...Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range recs {
		dup := make(Record, len(r))
		for k, v := range r {
			dup[k] = v
		}
		s.recs = append(s.recs, dup)
	}
	return len(recs), nil
}

// Len reports how many records are stored
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recs)
}

func (s *MemoryStore) findMatching(pattern string, paths [][]string) (Record, error) {
	re, _, err := caseInsensitive(pattern)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.recs {
		if anyMatch(re, r.stringLeaves(paths...)) {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func anyMatch(re *regexp.Regexp, values []string) bool {
	for _, v := range values {
		if re.MatchString(v) {
			return true
		}
	}
	return false
}
