package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swapstream/processor-go/storage"
	"github.com/swapstream/processor-go/types"
)

func newTestServer(t *testing.T) (*Server, *storage.Store) {
	t.Helper()
	store, err := storage.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	server, err := NewServer(DefaultConfig(), zap.NewNop(), store)
	require.NoError(t, err)
	return server, store
}

func TestHealthEndpoint(t *testing.T) {
	server, store := newTestServer(t)

	trackedAt := time.Now().UTC().Add(-30 * time.Second)
	require.NoError(t, store.Update(func(tx *storage.Tx) error {
		if _, err := tx.LoadCursor(0); err != nil {
			return err
		}
		if err := tx.AdvanceCursor(0, 1234); err != nil {
			return err
		}
		return tx.PutChainTracking(&storage.ChainTracking{
			Chain:          types.ChainEthereum,
			Height:         5000,
			BlockTrackedAt: trackedAt,
		})
	}))

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, uint64(1234), resp.CursorHeight)
	assert.WithinDuration(t, trackedAt, resp.LastBlockAt, time.Second)
	assert.Greater(t, resp.LagSeconds, 25.0)
}

func TestHealthEndpointFreshStore(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, uint64(0), resp.CursorHeight)
	assert.Zero(t, resp.LagSeconds)
}

func TestMetricsEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.Host = ""
	assert.Error(t, bad.Validate())
}
