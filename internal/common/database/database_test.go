package database

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keyword-intelligence/internal/common/config"
	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
)

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(ctx context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

// ==========================
// WaitForConnection
// ==========================

func TestWaitForConnection_RecoversAfterFailures(t *testing.T) {
	p := &flakyPinger{failures: 2}
	err := WaitForConnection(context.Background(), "postgres", p, 5, time.Millisecond, logger.NewTestLogger(t))
	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)
}

func TestWaitForConnection_GivesUp(t *testing.T) {
	p := &flakyPinger{failures: 10}
	err := WaitForConnection(context.Background(), "redis", p, 3, time.Millisecond, logger.NewTestLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis unreachable after 3 attempts")
	assert.Equal(t, 3, p.calls)
}

func TestWaitForConnection_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WaitForConnection(ctx, "elasticsearch", &flakyPinger{failures: 10}, 3, time.Second, logger.NewNoOpLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

// ==========================
// Clients
// ==========================

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing()
	mock.ExpectClose()

	c := &PostgresClient{DB: db}
	require.NoError(t, c.Ping(context.Background()))
	require.NoError(t, c.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)
	c := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer c.Close()

	assert.NoError(t, c.Ping(context.Background()))
	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestElasticsearchClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	assert.NoError(t, c.Ping(context.Background()))
}

func TestPing_TypedErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer rdb.Close()
	mr.Close()

	err := WaitForConnection(context.Background(), "redis", rdb, 1, time.Millisecond, logger.NewNoOpLogger())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeCacheConnectionFailed, apperrors.AsStandardError(err).Code)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()
	es, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	err = es.Ping(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeDatabaseConnectionFailed, apperrors.AsStandardError(err).Code)
}
