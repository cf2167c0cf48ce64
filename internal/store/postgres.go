package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/engine/intent"
	"keyword-intelligence/internal/models"
)

// ClassificationsSchema creates the classification table. It is idempotent.
const ClassificationsSchema = `
CREATE TABLE IF NOT EXISTS keyword_intent_classifications (
	id                   UUID PRIMARY KEY,
	project_id           TEXT NOT NULL,
	keyword              TEXT NOT NULL,
	intent               TEXT NOT NULL,
	confidence           DOUBLE PRECISION NOT NULL,
	confidence_level     TEXT NOT NULL,
	intent_probabilities JSONB NOT NULL,
	features             JSONB,
	recommendations      JSONB NOT NULL DEFAULT '[]',
	model_version        TEXT NOT NULL,
	manually_verified    BOOLEAN NOT NULL DEFAULT FALSE,
	verified_by          TEXT,
	verified_at          TIMESTAMPTZ,
	search_volume        INTEGER,
	created_at           TIMESTAMPTZ NOT NULL,
	updated_at           TIMESTAMPTZ NOT NULL,
	UNIQUE (project_id, keyword)
);
CREATE INDEX IF NOT EXISTS idx_kic_project_intent ON keyword_intent_classifications (project_id, intent);
`

const classificationColumns = `id, project_id, keyword, intent, confidence, confidence_level,
	intent_probabilities, features, recommendations, model_version, manually_verified,
	verified_by, verified_at, search_volume, created_at, updated_at`

const upsertClassification = `
INSERT INTO keyword_intent_classifications (` + classificationColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (project_id, keyword) DO UPDATE SET
	intent = EXCLUDED.intent,
	confidence = EXCLUDED.confidence,
	confidence_level = EXCLUDED.confidence_level,
	intent_probabilities = EXCLUDED.intent_probabilities,
	features = EXCLUDED.features,
	recommendations = EXCLUDED.recommendations,
	model_version = EXCLUDED.model_version,
	manually_verified = EXCLUDED.manually_verified,
	verified_by = EXCLUDED.verified_by,
	verified_at = EXCLUDED.verified_at,
	search_volume = EXCLUDED.search_volume,
	updated_at = EXCLUDED.updated_at
WHERE NOT keyword_intent_classifications.manually_verified OR EXCLUDED.manually_verified
RETURNING id, created_at`

// PostgresStore keeps classifications in keyword_intent_classifications,
// one row per (project, keyword).
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the table and indexes when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, ClassificationsSchema); err != nil {
		return apperrors.NewStoreOperationFailedError("migrate", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, scope, keyword string) (*models.IntentClassification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+classificationColumns+` FROM keyword_intent_classifications WHERE project_id = $1 AND keyword = $2`,
		scope, keyword)

	c, err := scanClassification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreOperationFailedError("get classification", err)
	}
	return c, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (*models.IntentClassification, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+classificationColumns+` FROM keyword_intent_classifications WHERE id = $1`, id)

	c, err := scanClassification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewStoreOperationFailedError("get classification by id", err)
	}
	return c, nil
}

func (s *PostgresStore) Save(ctx context.Context, c *models.IntentClassification) (*models.IntentClassification, error) {
	probs, err := json.Marshal(c.IntentProbabilities)
	if err != nil {
		return nil, apperrors.NewStoreOperationFailedError("encode probabilities", err)
	}
	var feats []byte
	if c.Features != nil {
		if feats, err = json.Marshal(c.Features); err != nil {
			return nil, apperrors.NewStoreOperationFailedError("encode features", err)
		}
	}
	recs := c.Recommendations
	if recs == nil {
		recs = []string{}
	}
	recJSON, err := json.Marshal(recs)
	if err != nil {
		return nil, apperrors.NewStoreOperationFailedError("encode recommendations", err)
	}

	var searchVolume sql.NullInt64
	if c.SearchVolume != nil {
		searchVolume = sql.NullInt64{Int64: int64(*c.SearchVolume), Valid: true}
	}
	var verifiedAt sql.NullTime
	if c.VerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: *c.VerifiedAt, Valid: true}
	}

	saved := *c
	err = s.db.QueryRowContext(ctx, upsertClassification,
		c.ID, c.ProjectID, c.Keyword, string(c.Intent), c.Confidence, string(c.ConfidenceLevel),
		probs, nullableJSON(feats), recJSON, c.ModelVersion, c.ManuallyVerified,
		sql.NullString{String: c.VerifiedBy, Valid: c.VerifiedBy != ""}, verifiedAt,
		searchVolume, c.CreatedAt, c.UpdatedAt,
	).Scan(&saved.ID, &saved.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// The stored row is manually verified and the incoming one is not.
		stored, getErr := s.Get(ctx, c.ProjectID, c.Keyword)
		if getErr != nil {
			return nil, getErr
		}
		if stored == nil {
			return nil, apperrors.NewStoreOperationFailedError("save classification", err)
		}
		return stored, nil
	}
	if err != nil {
		return nil, apperrors.NewStoreOperationFailedError("save classification", err)
	}
	return &saved, nil
}

func (s *PostgresStore) Query(ctx context.Context, scope string, f intent.Filter) ([]*models.IntentClassification, error) {
	query, args := buildQuery(scope, f)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewStoreOperationFailedError("query classifications", err)
	}
	defer rows.Close()

	out := make([]*models.IntentClassification, 0)
	for rows.Next() {
		c, err := scanClassification(rows)
		if err != nil {
			return nil, apperrors.NewStoreOperationFailedError("scan classification", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStoreOperationFailedError("query classifications", err)
	}
	return out, nil
}

// buildQuery pushes the filter down into SQL.
func buildQuery(scope string, f intent.Filter) (string, []interface{}) {
	args := []interface{}{scope}
	where := []string{"project_id = $1"}

	if len(f.Intents) > 0 {
		intents := make([]string, len(f.Intents))
		for i, in := range f.Intents {
			intents[i] = string(in)
		}
		args = append(args, pq.Array(intents))
		where = append(where, fmt.Sprintf("intent = ANY($%d)", len(args)))
	}
	if f.MaxConfidence != nil {
		args = append(args, *f.MaxConfidence)
		where = append(where, fmt.Sprintf("confidence < $%d", len(args)))
	}
	if f.Verified != nil {
		args = append(args, *f.Verified)
		where = append(where, fmt.Sprintf("manually_verified = $%d", len(args)))
	}

	var b strings.Builder
	b.WriteString("SELECT " + classificationColumns + " FROM keyword_intent_classifications WHERE ")
	b.WriteString(strings.Join(where, " AND "))
	if f.SortByConfidence {
		b.WriteString(" ORDER BY confidence ASC, keyword ASC")
	} else {
		b.WriteString(" ORDER BY keyword ASC")
	}
	if f.Limit > 0 {
		args = append(args, f.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanClassification(row rowScanner) (*models.IntentClassification, error) {
	var (
		c            models.IntentClassification
		intentStr    string
		levelStr     string
		probs        []byte
		feats        []byte
		recs         []byte
		verifiedBy   sql.NullString
		verifiedAt   sql.NullTime
		searchVolume sql.NullInt64
	)
	err := row.Scan(
		&c.ID, &c.ProjectID, &c.Keyword, &intentStr, &c.Confidence, &levelStr,
		&probs, &feats, &recs, &c.ModelVersion, &c.ManuallyVerified,
		&verifiedBy, &verifiedAt, &searchVolume, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Intent = models.Intent(intentStr)
	c.ConfidenceLevel = models.ConfidenceLevel(levelStr)
	if err := json.Unmarshal(probs, &c.IntentProbabilities); err != nil {
		return nil, fmt.Errorf("decode probabilities: %w", err)
	}
	if len(feats) > 0 {
		c.Features = &models.KeywordFeatures{}
		if err := json.Unmarshal(feats, c.Features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
	}
	c.Recommendations = []string{}
	if len(recs) > 0 {
		if err := json.Unmarshal(recs, &c.Recommendations); err != nil {
			return nil, fmt.Errorf("decode recommendations: %w", err)
		}
	}
	if verifiedBy.Valid {
		c.VerifiedBy = verifiedBy.String
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		c.VerifiedAt = &t
	}
	if searchVolume.Valid {
		v := int(searchVolume.Int64)
		c.SearchVolume = &v
	}
	return &c, nil
}

func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
