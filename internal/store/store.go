// Package store holds the persistence and data-source adapters around the
// engine: classification stores, the model checkpoint repository and keyword
// sources.
package store

import (
	"context"
	"time"

	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
)

// KeywordSource supplies the keyword sets and ranking URLs a project tracks.
type KeywordSource interface {
	ListKeywords(ctx context.Context, scope string) ([]models.Keyword, error)
	ListRankings(ctx context.Context, scope string) ([]models.KeywordRanking, error)
}

// ModelCheckpoint is a stored model snapshot.
type ModelCheckpoint struct {
	Version   string
	Snapshot  intent.Snapshot
	Accuracy  float64
	CreatedAt time.Time
}

// ModelRepository persists model checkpoints. Latest returns (nil, nil) when
// nothing has been saved yet.
type ModelRepository interface {
	Save(ctx context.Context, snapshot intent.Snapshot, accuracy float64) (*ModelCheckpoint, error)
	Latest(ctx context.Context) (*ModelCheckpoint, error)
}

var (
	_ intent.Store    = (*MemoryStore)(nil)
	_ intent.Store    = (*PostgresStore)(nil)
	_ intent.Store    = (*CachedStore)(nil)
	_ KeywordSource   = (*StaticKeywordSource)(nil)
	_ KeywordSource   = (*ElasticsearchKeywordSource)(nil)
	_ ModelRepository = (*PostgresModelRepository)(nil)
)
