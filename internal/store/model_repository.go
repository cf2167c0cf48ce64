package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/engine/intent"
)

const ModelSnapshotsSchema = `
CREATE TABLE IF NOT EXISTS intent_model_snapshots (
	version    TEXT PRIMARY KEY,
	snapshot   JSONB NOT NULL,
	accuracy   DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
`

// PostgresModelRepository checkpoints trained models. Saving a version twice
// replaces the earlier checkpoint.
type PostgresModelRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresModelRepository(db *sql.DB) *PostgresModelRepository {
	return &PostgresModelRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *PostgresModelRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, ModelSnapshotsSchema); err != nil {
		return apperrors.NewModelSnapshotFailedError(err)
	}
	return nil
}

func (r *PostgresModelRepository) Save(ctx context.Context, snapshot intent.Snapshot, accuracy float64) (*ModelCheckpoint, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, apperrors.NewModelSnapshotFailedError(err)
	}

	cp := &ModelCheckpoint{
		Version:   snapshot.Version,
		Snapshot:  snapshot,
		Accuracy:  accuracy,
		CreatedAt: r.now(),
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO intent_model_snapshots (version, snapshot, accuracy, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (version) DO UPDATE SET
			snapshot = EXCLUDED.snapshot,
			accuracy = EXCLUDED.accuracy,
			created_at = EXCLUDED.created_at`,
		cp.Version, raw, cp.Accuracy, cp.CreatedAt)
	if err != nil {
		return nil, apperrors.NewModelSnapshotFailedError(err)
	}
	return cp, nil
}

func (r *PostgresModelRepository) Latest(ctx context.Context) (*ModelCheckpoint, error) {
	var (
		cp  ModelCheckpoint
		raw []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT version, snapshot, accuracy, created_at
		FROM intent_model_snapshots
		ORDER BY created_at DESC
		LIMIT 1`).Scan(&cp.Version, &raw, &cp.Accuracy, &cp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewModelSnapshotFailedError(err)
	}
	if err := json.Unmarshal(raw, &cp.Snapshot); err != nil {
		return nil, apperrors.NewModelSnapshotFailedError(err)
	}
	return &cp, nil
}
