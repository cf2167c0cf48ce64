package store

import (
	"context"

	"keyword-intelligence/internal/models"
)

// StaticKeywordSource serves fixed keyword and ranking lists regardless of
// scope.
type StaticKeywordSource struct {
	Keywords []models.Keyword
	Rankings []models.KeywordRanking
}

func (s *StaticKeywordSource) ListKeywords(_ context.Context, scope string) ([]models.Keyword, error) {
	out := make([]models.Keyword, len(s.Keywords))
	for i, k := range s.Keywords {
		k.ProjectID = scope
		out[i] = k
	}
	return out, nil
}

func (s *StaticKeywordSource) ListRankings(_ context.Context, _ string) ([]models.KeywordRanking, error) {
	return append([]models.KeywordRanking(nil), s.Rankings...), nil
}
