package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewEmbeddingService tests service creation.
func TestNewEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *EmbeddingConfig
		expectError bool
	}{
		{
			name: "Gemini config",
			cfg: &EmbeddingConfig{
				Provider:   "gemini",
				Model:      "gemini-embedding-001",
				Dimensions: 1536,
				APIKey:     "test-key",
				BaseURL:    "https://generativelanguage.googleapis.com/v1beta/openai/",
			},
		},
		{
			name: "SiliconFlow config",
			cfg: &EmbeddingConfig{
				Provider:   "siliconflow",
				Model:      "BAAI/bge-m3",
				Dimensions: 1024,
				APIKey:     "test-key",
				BaseURL:    "https://api.siliconflow.cn/v1",
			},
		},
		{
			name: "Ollama config",
			cfg: &EmbeddingConfig{
				Provider:   "ollama",
				Model:      "nomic-embed-text",
				Dimensions: 768,
				BaseURL:    "http://localhost:11434/v1",
			},
		},
		{
			name:        "Unsupported provider",
			cfg:         &EmbeddingConfig{Provider: "unsupported", Dimensions: 8},
			expectError: true,
		},
		{
			name:        "Zero dimensions",
			cfg:         &EmbeddingConfig{Provider: "openai", APIKey: "k", Model: "m"},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := NewEmbeddingService(tt.cfg)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Dimensions, svc.Dimensions())
		})
	}
}

type fakeEmbeddingsClient struct {
	resp  openai.EmbeddingResponse
	err   error
	calls atomic.Int32
	last  openai.EmbeddingRequest
}

func (f *fakeEmbeddingsClient) CreateEmbeddings(_ context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	f.calls.Add(1)
	f.last = conv.Convert()
	return f.resp, f.err
}

func newTestService(client embeddingsClient, dims int) *embeddingService {
	return &embeddingService{client: client, provider: "test", model: "test-model", dimensions: dims}
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	client := &fakeEmbeddingsClient{resp: openai.EmbeddingResponse{
		Data: []openai.Embedding{
			{Index: 1, Embedding: []float32{0, 1}},
			{Index: 0, Embedding: []float32{1, 0}},
		},
	}}
	svc := newTestService(client, 2)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 0}, vectors[0])
	assert.Equal(t, []float32{0, 1}, vectors[1])

	assert.Equal(t, 2, client.last.Dimensions)
	assert.Equal(t, openai.EmbeddingEncodingFormatFloat, client.last.EncodingFormat)
	assert.Equal(t, openai.EmbeddingModel("test-model"), client.last.Model)
}

func TestEmbedBatch_Empty(t *testing.T) {
	client := &fakeEmbeddingsClient{}
	svc := newTestService(client, 2)

	vectors, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Equal(t, int32(0), client.calls.Load())
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	client := &fakeEmbeddingsClient{resp: openai.EmbeddingResponse{
		Data: []openai.Embedding{{Index: 0, Embedding: []float32{1, 2, 3}}},
	}}
	svc := newTestService(client, 2)

	_, err := svc.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestEmbed_CountMismatch(t *testing.T) {
	client := &fakeEmbeddingsClient{resp: openai.EmbeddingResponse{}}
	svc := newTestService(client, 2)

	_, err := svc.Embed(context.Background(), "text")
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
}

func TestEmbed_ProviderError(t *testing.T) {
	cause := errors.New("connection refused")
	client := &fakeEmbeddingsClient{err: cause}
	svc := newTestService(client, 2)

	_, err := svc.Embed(context.Background(), "text")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.ErrorIs(t, err, cause)
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, "rate_limited", classifyError(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}))
	assert.Equal(t, "api_error", classifyError(&openai.APIError{HTTPStatusCode: http.StatusBadRequest}))
	assert.Equal(t, "rate_limited", classifyError(&openai.RequestError{HTTPStatusCode: http.StatusTooManyRequests}))
	assert.Equal(t, "request_failed", classifyError(errors.New("boom")))
}

// TestEmbeddingService_HTTP exercises the real client against an OpenAI-compatible stub.
func TestEmbeddingService_HTTP(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req struct {
			Input      []string `json:"input"`
			Dimensions int      `json:"dimensions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data := make([]map[string]any, 0, len(req.Input))
		for i := range req.Input {
			vec := make([]float32, req.Dimensions)
			vec[i%req.Dimensions] = 1
			data = append(data, map[string]any{"object": "embedding", "index": i, "embedding": vec})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "stub",
			"data":   data,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(&EmbeddingConfig{
		Provider:   "openai",
		Model:      "text-embedding-3-small",
		Dimensions: 4,
		APIKey:     "secret",
		BaseURL:    srv.URL + "/v1",
	})
	require.NoError(t, err)

	vectors, err := svc.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 0, 0, 0}, vectors[0])
	assert.Equal(t, []float32{0, 1, 0, 0}, vectors[1])
	assert.Equal(t, "Bearer secret", gotAuth)
}

func TestEmbeddingService_HTTPRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	svc, err := NewEmbeddingService(&EmbeddingConfig{
		Provider:   "openai",
		Model:      "m",
		Dimensions: 4,
		APIKey:     "k",
		BaseURL:    srv.URL,
	})
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmbeddingFailed)
	assert.Equal(t, "rate_limited", classifyError(err))
}
