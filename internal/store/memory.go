package store

import (
	"context"
	"sort"
	"sync"

	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
)

type memoryKey struct {
	scope   string
	keyword string
}

// MemoryStore is a process-local classification store used by the CLI and
// tests. Records are copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[memoryKey]*models.IntentClassification
	byID    map[string]memoryKey
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[memoryKey]*models.IntentClassification),
		byID:    make(map[string]memoryKey),
	}
}

func (s *MemoryStore) Get(_ context.Context, scope, keyword string) (*models.IntentClassification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[memoryKey{scope, keyword}]
	if !ok {
		return nil, nil
	}
	return cloneClassification(r), nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*models.IntentClassification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NewNotFoundError(id)
	}
	return cloneClassification(s.records[key]), nil
}

// Save upserts on (project, keyword). The first id stored for a keyword wins,
// and an unverified record never replaces a manually verified one.
func (s *MemoryStore) Save(_ context.Context, c *models.IntentClassification) (*models.IntentClassification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memoryKey{c.ProjectID, c.Keyword}
	stored := cloneClassification(c)
	if existing, ok := s.records[key]; ok {
		if existing.ManuallyVerified && !c.ManuallyVerified {
			return cloneClassification(existing), nil
		}
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	s.records[key] = stored
	s.byID[stored.ID] = key
	return cloneClassification(stored), nil
}

func (s *MemoryStore) Query(_ context.Context, scope string, f intent.Filter) ([]*models.IntentClassification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.IntentClassification, 0)
	for key, r := range s.records {
		if key.scope == scope && f.Matches(r) {
			out = append(out, cloneClassification(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if f.SortByConfidence && out[i].Confidence != out[j].Confidence {
			return out[i].Confidence < out[j].Confidence
		}
		return out[i].Keyword < out[j].Keyword
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneClassification(c *models.IntentClassification) *models.IntentClassification {
	if c == nil {
		return nil
	}
	out := *c
	if c.IntentProbabilities != nil {
		out.IntentProbabilities = make(map[models.Intent]float64, len(c.IntentProbabilities))
		for k, v := range c.IntentProbabilities {
			out.IntentProbabilities[k] = v
		}
	}
	if c.Recommendations != nil {
		out.Recommendations = append(make([]string, 0, len(c.Recommendations)), c.Recommendations...)
	}
	return &out
}
