package intent

import (
	"context"

	"keyword-intelligence/internal/models"
)

// Store persists classifications. Get returns (nil, nil) when the keyword
// has never been classified; GetByID returns an error matching
// errors.ErrNotFound for unknown ids. Save must not replace a manually
// verified record with an unverified one; it returns the stored record instead.
type Store interface {
	Get(ctx context.Context, scope, keyword string) (*models.IntentClassification, error)
	GetByID(ctx context.Context, id string) (*models.IntentClassification, error)
	Save(ctx context.Context, c *models.IntentClassification) (*models.IntentClassification, error)
	Query(ctx context.Context, scope string, filter Filter) ([]*models.IntentClassification, error)
}

// Filter narrows a Query. Zero values match everything.
type Filter struct {
	Intents []models.Intent
	// MaxConfidence is an exclusive upper bound on confidence.
	MaxConfidence *float64
	Verified      *bool
	// SortByConfidence orders results by ascending confidence instead of keyword.
	SortByConfidence bool
	Limit            int
}

// Matches applies the filter predicates to a single record. Stores that cannot
// push a filter down use it directly.
func (f Filter) Matches(c *models.IntentClassification) bool {
	if len(f.Intents) > 0 {
		found := false
		for _, intent := range f.Intents {
			if c.Intent == intent {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MaxConfidence != nil && c.Confidence >= *f.MaxConfidence {
		return false
	}
	if f.Verified != nil && c.ManuallyVerified != *f.Verified {
		return false
	}
	return true
}
