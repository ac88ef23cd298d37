// internal/common/database/database_test.go
package database

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"casematch-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresClient_PingAndQuery(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectPing()
	mock.ExpectQuery("SELECT count").WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	client := NewPostgresFromDB(db)
	require.NoError(t, client.Ping(context.Background()))

	var n int
	require.NoError(t, client.QueryRow(context.Background(), "SELECT count(*) FROM clinical_cases").Scan(&n))
	assert.Equal(t, 5, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

type cachedCase struct {
	ID    string   `json:"id"`
	Terms []string `json:"terms"`
}

func TestRedisClient_JSONRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := NewRedisFromCmdable(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	require.NoError(t, client.Ping(ctx))
	require.NoError(t, client.SetJSON(ctx, "case:1", cachedCase{ID: "1", Terms: []string{"두통"}}, time.Minute))

	var got cachedCase
	require.NoError(t, client.GetJSON(ctx, "case:1", &got))
	assert.Equal(t, []string{"두통"}, got.Terms)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, client.GetJSON(ctx, "case:1", &got), ErrCacheMiss)
}

func TestRedisClient_GetError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("case:x").SetErr(assert.AnError)

	err := NewRedisFromCmdable(rdb).GetJSON(context.Background(), "case:x", &cachedCase{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCacheMiss)
}

func newESServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestElasticsearchClient_CaseIndexExists(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
		err    bool
	}{
		{"present", http.StatusOK, true, false},
		{"missing", http.StatusNotFound, false, false},
		{"broken", http.StatusInternalServerError, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newESServer(t, tt.status)
			client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
			require.NoError(t, err)
			assert.Equal(t, "clinical_cases", client.CaseIndex)

			ok, err := client.CaseIndexExists(context.Background())
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}
