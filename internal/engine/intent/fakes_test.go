package intent

import (
	"context"
	"sort"
	"sync"

	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/models"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[string]*models.IntentClassification
	saves   int
	getErr  error
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*models.IntentClassification)}
}

func fakeKey(scope, keyword string) string { return scope + "\x00" + keyword }

func (s *fakeStore) Get(_ context.Context, scope, keyword string) (*models.IntentClassification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.records[fakeKey(scope, keyword)], nil
}

func (s *fakeStore) GetByID(_ context.Context, id string) (*models.IntentClassification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.NewNotFoundError(id)
}

func (s *fakeStore) Save(_ context.Context, c *models.IntentClassification) (*models.IntentClassification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	s.saves++
	key := fakeKey(c.ProjectID, c.Keyword)
	if existing, ok := s.records[key]; ok && existing.ManuallyVerified && !c.ManuallyVerified {
		return existing, nil
	}
	s.records[key] = c
	return c, nil
}

func (s *fakeStore) Query(_ context.Context, scope string, f Filter) ([]*models.IntentClassification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.IntentClassification
	for _, r := range s.records {
		if r.ProjectID == scope && f.Matches(r) {
			out = append(out, r)
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
