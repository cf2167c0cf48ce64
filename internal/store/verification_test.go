package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
)

// verifyOnGetStore runs a hook after the first Get, emulating a reviewer who
// verifies the record while a recompute is in flight.
type verifyOnGetStore struct {
	*MemoryStore
	once  sync.Once
	onGet func(ctx context.Context, rec *models.IntentClassification)
}

func (s *verifyOnGetStore) Get(ctx context.Context, scope, keyword string) (*models.IntentClassification, error) {
	rec, err := s.MemoryStore.Get(ctx, scope, keyword)
	if err != nil || rec == nil {
		return rec, err
	}
	s.once.Do(func() { s.onGet(ctx, rec) })
	return rec, nil
}

// ==========================
// Concurrent verification
// ==========================

func TestClassify_RecomputeDoesNotOverwriteConcurrentVerification(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	log := logger.NewTestLogger(t)

	seeded, err := intent.NewClassifier(mem, nil, log).Classify(ctx, "p1", "seo guide", intent.ClassifyOptions{})
	require.NoError(t, err)
	require.NotEqual(t, models.IntentTransactional, seeded.Intent)

	racing := &verifyOnGetStore{MemoryStore: mem}
	c := intent.NewClassifier(racing, nil, log)
	racing.onGet = func(ctx context.Context, rec *models.IntentClassification) {
		_, err := c.VerifyClassification(ctx, rec.ID, models.IntentTransactional, "alice")
		require.NoError(t, err)
	}

	got, err := c.Classify(ctx, "p1", "seo guide", intent.ClassifyOptions{SkipCache: true})
	require.NoError(t, err)
	assert.Equal(t, models.IntentTransactional, got.Intent)
	assert.True(t, got.ManuallyVerified)

	stored, err := mem.Get(ctx, "p1", "seo guide")
	require.NoError(t, err)
	assert.Equal(t, models.IntentTransactional, stored.Intent)
	assert.True(t, stored.ManuallyVerified)
	assert.Equal(t, "alice", stored.VerifiedBy)
}
