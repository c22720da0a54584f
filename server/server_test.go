package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/rosterly/internal/profile"
	"github.com/hrygo/rosterly/server/event"
	"github.com/hrygo/rosterly/store"
	storetest "github.com/hrygo/rosterly/store/test"
)

type mockEmbeddingService struct {
	dims int
}

func (m *mockEmbeddingService) Embed(context.Context, string) ([]float32, error) {
	v := make([]float32, m.dims)
	v[0] = 1
	return v, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i], _ = m.Embed(ctx, texts[i])
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dims }

func serve(t *testing.T, s *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestNewServer_SearchEnabledWithoutProvider(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)

	_, err := NewServer(ctx, &profile.Profile{SearchEnabled: true, AIEnabled: true, AIEmbeddingProvider: "openai"}, ts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding provider")

	// Without the search path the same config only disables enrichment.
	s, err := NewServer(ctx, &profile.Profile{AIEnabled: true, AIEmbeddingProvider: "openai"}, ts)
	require.NoError(t, err)
	assert.Zero(t, s.Bus().Handlers(event.KindClientCreated))
}

func TestNewServer_AIDisabled(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)

	s, err := NewServer(ctx, &profile.Profile{SearchEnabled: true}, ts)
	require.NoError(t, err)
	assert.Zero(t, s.Bus().Handlers(event.KindEmployeeCreated))
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, s, http.MethodGet, "/api/v1/clients/search?q=x", nil).Code)
}

func TestNewServer_DegradesWithoutProvider(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)

	s, err := NewServer(ctx, &profile.Profile{}, ts)
	require.NoError(t, err)
	assert.Zero(t, s.Bus().Handlers(event.KindEmployeeCreated))

	assert.Equal(t, http.StatusOK, serve(t, s, http.MethodGet, "/healthz", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, s, http.MethodGet, "/api/v1/employees/search?q=x", nil).Code)

	rec := serve(t, s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rosterly_http_requests_total")
}

func TestNewServer_DimensionMismatch(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)

	_, err := NewServer(ctx, &profile.Profile{}, ts, WithEmbeddingService(&mockEmbeddingService{dims: 8}))
	require.Error(t, err)
}

func TestServer_CreateEnrichSearch(t *testing.T) {
	ctx := context.Background()
	ts := storetest.NewTestingStore(ctx, t)

	s, err := NewServer(ctx, &profile.Profile{SearchEnabled: true, EventDispatch: profile.DispatchInline}, ts,
		WithEmbeddingService(&mockEmbeddingService{dims: storetest.TestDimensions}))
	require.NoError(t, err)
	assert.Equal(t, 1, s.Bus().Handlers(event.KindEmployeeCreated))
	assert.Equal(t, 1, s.Bus().Handlers(event.KindClientCreated))

	suffix := uuid.NewString()[:8]
	rec := serve(t, s, http.MethodPost, "/api/v1/managers", map[string]any{
		"username": "m-" + suffix, "email": "m-" + suffix + "@example.com", "password": "pw",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var manager struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &manager))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = serve(t, s, http.MethodPost, "/api/v1/clients", map[string]any{
		"manager_id": manager.ID, "client_name": "Initech", "email": "initech-" + suffix + "@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var client struct {
		ID uuid.UUID `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &client))

	got, err := ts.GetClient(ctx, &store.FindClient{ID: &client.ID})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Embedding, storetest.TestDimensions)

	attempts, err := ts.ListEnrichmentAttempts(ctx, &store.FindEnrichmentAttempt{EntityID: &client.ID})
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.Equal(t, store.EnrichmentSucceeded, attempts[0].Status)

	rec = serve(t, s, http.MethodGet, "/api/v1/clients/search?q=initech&limit=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), client.ID.String()))
}

func TestNewDispatcher(t *testing.T) {
	assert.IsType(t, event.InlineDispatcher{}, newDispatcher(&profile.Profile{EventDispatch: profile.DispatchInline}))

	d := newDispatcher(&profile.Profile{EventDispatch: profile.DispatchQueue, EventQueueSize: 4, EventWorkers: 1})
	queue, ok := d.(*event.QueueDispatcher)
	require.True(t, ok)
	require.NoError(t, queue.Close())
}
