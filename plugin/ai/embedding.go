package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/hrygo/rosterly/internal/metrics"
)

var (
	// ErrEmbeddingFailed marks every provider-side failure. Callers treat all of them alike.
	ErrEmbeddingFailed = errors.New("embedding failed")
	// ErrDimensionMismatch is returned when the provider answers with a vector of the wrong length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// EmbeddingService is the vector embedding service interface.
// Implementations must be safe for concurrent use.
type EmbeddingService interface {
	// Embed generates vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates vectors for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the vector dimension.
	Dimensions() int
}

// embeddingsClient is the subset of *openai.Client used here.
type embeddingsClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

type embeddingService struct {
	client     embeddingsClient
	provider   string
	model      string
	dimensions int
}

// NewEmbeddingService creates a new EmbeddingService.
func NewEmbeddingService(cfg *EmbeddingConfig) (EmbeddingService, error) {
	var clientConfig openai.ClientConfig

	switch cfg.Provider {
	case "gemini", "openai", "siliconflow":
		// All of these speak the OpenAI embeddings API.
		clientConfig = openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}

	case "ollama":
		clientConfig = openai.DefaultConfig("ollama")
		clientConfig.BaseURL = cfg.BaseURL

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	if cfg.Dimensions <= 0 {
		return nil, fmt.Errorf("invalid embedding dimensions: %d", cfg.Dimensions)
	}

	return &embeddingService{
		client:     openai.NewClientWithConfig(clientConfig),
		provider:   cfg.Provider,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

func (s *embeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result: %w", ErrEmbeddingFailed)
	}
	return vectors[0], nil
}

func (s *embeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          openai.EmbeddingModel(s.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		Dimensions:     s.dimensions,
	}

	start := time.Now()
	resp, err := s.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		return nil, s.fail(classifyError(err), fmt.Errorf("create embeddings failed: %w: %w", ErrEmbeddingFailed, err))
	}

	if len(resp.Data) != len(texts) {
		return nil, s.fail("empty_response", fmt.Errorf("got %d embeddings for %d texts: %w", len(resp.Data), len(texts), ErrEmbeddingFailed))
	}

	// Extract vectors from response
	vectors := make([][]float32, len(resp.Data))
	for _, data := range resp.Data {
		if len(data.Embedding) != s.dimensions {
			return nil, s.fail("dimension_mismatch", fmt.Errorf("got %d dimensions, want %d: %w: %w",
				len(data.Embedding), s.dimensions, ErrDimensionMismatch, ErrEmbeddingFailed))
		}
		if data.Index < 0 || data.Index >= len(vectors) {
			return nil, s.fail("api_error", fmt.Errorf("embedding index %d out of range: %w", data.Index, ErrEmbeddingFailed))
		}
		vectors[data.Index] = data.Embedding
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(s.provider, s.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(s.provider, s.model).Observe(duration.Seconds())

	return vectors, nil
}

func (s *embeddingService) Dimensions() int {
	return s.dimensions
}

func (s *embeddingService) fail(errorType string, err error) error {
	metrics.EmbeddingRequestsTotal.WithLabelValues(s.provider, s.model, "error").Inc()
	metrics.EmbeddingErrorsTotal.WithLabelValues(s.provider, s.model, errorType).Inc()
	return err
}

// classifyError labels a provider error for logs and metrics. The label never changes control flow.
func classifyError(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "rate_limited"
		}
		return "api_error"
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return "rate_limited"
		}
		return "api_error"
	}

	return "request_failed"
}
