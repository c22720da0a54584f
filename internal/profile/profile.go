package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DispatchInline runs event handlers on the publishing goroutine.
	DispatchInline = "inline"
	// DispatchQueue hands events to a bounded worker pool.
	DispatchQueue = "queue"

	// DefaultEmbeddingDimensions matches the vector column of the employee and client tables.
	DefaultEmbeddingDimensions = 1536
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where rosterly stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string

	// AI Configuration
	AIEnabled             bool   // ROSTERLY_AI_ENABLED
	AIEmbeddingProvider   string // ROSTERLY_AI_EMBEDDING_PROVIDER (default: gemini)
	AIEmbeddingModel      string // ROSTERLY_AI_EMBEDDING_MODEL (default: gemini-embedding-001)
	AIEmbeddingDimensions int    // ROSTERLY_AI_EMBEDDING_DIMENSIONS (default: 1536)
	AIGeminiAPIKey        string // ROSTERLY_AI_GEMINI_API_KEY (legacy: GEMINI_API_KEY)
	AIGeminiBaseURL       string // ROSTERLY_AI_GEMINI_BASE_URL
	AIOpenAIAPIKey        string // ROSTERLY_AI_OPENAI_API_KEY
	AIOpenAIBaseURL       string // ROSTERLY_AI_OPENAI_BASE_URL (default: https://api.openai.com/v1)
	AISiliconFlowAPIKey   string // ROSTERLY_AI_SILICONFLOW_API_KEY
	AISiliconFlowBaseURL  string // ROSTERLY_AI_SILICONFLOW_BASE_URL (default: https://api.siliconflow.cn/v1)
	AIOllamaBaseURL       string // ROSTERLY_AI_OLLAMA_BASE_URL (default: http://localhost:11434/v1)

	// Search configuration
	SearchEnabled bool
	// SearchMinSimilarity drops results scoring below it. Nil returns plain top-k.
	SearchMinSimilarity *float64
	// SearchRateLimit is the per-client search budget in requests per second. Zero disables limiting.
	SearchRateLimit float64
	// SearchCacheSize bounds the query embedding cache. Zero disables caching.
	SearchCacheSize int
	SearchCacheTTL  time.Duration

	// Event dispatch configuration
	EventDispatch     string
	EventQueueSize    int
	EventWorkers      int
	EnrichmentTimeout time.Duration
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsAIEnabled returns true if AI is enabled and the selected provider has credentials or a base URL.
func (p *Profile) IsAIEnabled() bool {
	if !p.AIEnabled {
		return false
	}
	switch p.AIEmbeddingProvider {
	case "gemini":
		return p.AIGeminiAPIKey != ""
	case "openai":
		return p.AIOpenAIAPIKey != ""
	case "siliconflow":
		return p.AISiliconFlowAPIKey != ""
	case "ollama":
		return p.AIOllamaBaseURL != ""
	}
	return false
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads AI configuration from environment variables.
func (p *Profile) FromEnv() {
	// Helper to get env value with legacy fallback
	// Skips empty values to allow defaults to take effect
	getEnvWithFallback := func(newKey, legacyKey string) string {
		if val := os.Getenv(newKey); val != "" {
			return val
		}
		return os.Getenv(legacyKey)
	}

	p.AIEnabled = os.Getenv("ROSTERLY_AI_ENABLED") == "true"
	p.AIEmbeddingProvider = getEnvOrDefault("ROSTERLY_AI_EMBEDDING_PROVIDER", "gemini")
	p.AIEmbeddingModel = getEnvOrDefault("ROSTERLY_AI_EMBEDDING_MODEL", "gemini-embedding-001")
	p.AIEmbeddingDimensions = DefaultEmbeddingDimensions
	if raw := os.Getenv("ROSTERLY_AI_EMBEDDING_DIMENSIONS"); raw != "" {
		if dims, err := strconv.Atoi(raw); err == nil {
			p.AIEmbeddingDimensions = dims
		} else {
			slog.Warn("ignoring invalid embedding dimensions", "value", raw, "error", err)
		}
	}
	p.AIGeminiAPIKey = getEnvWithFallback("ROSTERLY_AI_GEMINI_API_KEY", "GEMINI_API_KEY")
	p.AIGeminiBaseURL = getEnvOrDefault("ROSTERLY_AI_GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/")
	p.AIOpenAIAPIKey = os.Getenv("ROSTERLY_AI_OPENAI_API_KEY")
	p.AIOpenAIBaseURL = getEnvOrDefault("ROSTERLY_AI_OPENAI_BASE_URL", "https://api.openai.com/v1")
	p.AISiliconFlowAPIKey = os.Getenv("ROSTERLY_AI_SILICONFLOW_API_KEY")
	p.AISiliconFlowBaseURL = getEnvOrDefault("ROSTERLY_AI_SILICONFLOW_BASE_URL", "https://api.siliconflow.cn/v1")
	p.AIOllamaBaseURL = getEnvOrDefault("ROSTERLY_AI_OLLAMA_BASE_URL", "http://localhost:11434/v1")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	switch p.Driver {
	case "postgres":
		if p.DSN == "" {
			return errors.New("dsn is required for the postgres driver")
		}
	case "sqlite":
		if p.DSN == "" {
			dataDir, err := checkDataDir(p.Data)
			if err != nil {
				slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
				return err
			}
			p.Data = dataDir
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("rosterly_%s.db", p.Mode))
		}
	default:
		return errors.Errorf("unsupported driver %q", p.Driver)
	}

	if p.AIEmbeddingDimensions <= 0 {
		p.AIEmbeddingDimensions = DefaultEmbeddingDimensions
	}
	if m := p.SearchMinSimilarity; m != nil && (*m < -1 || *m > 1) {
		return errors.Errorf("search min similarity %v is outside [-1, 1]", *m)
	}

	switch p.EventDispatch {
	case "":
		p.EventDispatch = DispatchInline
	case DispatchInline, DispatchQueue:
	default:
		return errors.Errorf("unknown event dispatch mode %q", p.EventDispatch)
	}
	if p.EventQueueSize <= 0 {
		p.EventQueueSize = 256
	}
	if p.EventWorkers <= 0 {
		p.EventWorkers = 2
	}
	if p.EnrichmentTimeout <= 0 {
		p.EnrichmentTimeout = 30 * time.Second
	}

	return nil
}
