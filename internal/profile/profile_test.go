package profile

import (
	"testing"
	"time"
)

var aiEnvVars = []string{
	"ROSTERLY_AI_ENABLED",
	"ROSTERLY_AI_EMBEDDING_PROVIDER",
	"ROSTERLY_AI_EMBEDDING_MODEL",
	"ROSTERLY_AI_EMBEDDING_DIMENSIONS",
	"ROSTERLY_AI_GEMINI_API_KEY",
	"ROSTERLY_AI_GEMINI_BASE_URL",
	"GEMINI_API_KEY",
	"ROSTERLY_AI_OPENAI_API_KEY",
	"ROSTERLY_AI_OPENAI_BASE_URL",
	"ROSTERLY_AI_SILICONFLOW_API_KEY",
	"ROSTERLY_AI_SILICONFLOW_BASE_URL",
	"ROSTERLY_AI_OLLAMA_BASE_URL",
}

func clearAIEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range aiEnvVars {
		t.Setenv(key, "")
	}
}

// TestAIProfileDefaults checks the defaults applied when nothing is set.
func TestAIProfileDefaults(t *testing.T) {
	clearAIEnvVars(t)

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"AIEmbeddingProvider default", "gemini", profile.AIEmbeddingProvider},
		{"AIEmbeddingModel default", "gemini-embedding-001", profile.AIEmbeddingModel},
		{"AIOpenAIBaseURL default", "https://api.openai.com/v1", profile.AIOpenAIBaseURL},
		{"AISiliconFlowBaseURL default", "https://api.siliconflow.cn/v1", profile.AISiliconFlowBaseURL},
		{"AIOllamaBaseURL default", "http://localhost:11434/v1", profile.AIOllamaBaseURL},
		{"AIGeminiBaseURL default", "https://generativelanguage.googleapis.com/v1beta/openai/", profile.AIGeminiBaseURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}

	if profile.AIEnabled {
		t.Error("AIEnabled should be false by default")
	}
	if profile.AIEmbeddingDimensions != DefaultEmbeddingDimensions {
		t.Errorf("AIEmbeddingDimensions = %d, want %d", profile.AIEmbeddingDimensions, DefaultEmbeddingDimensions)
	}
}

// TestAIProfileFromEnv checks that environment variables override defaults.
func TestAIProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		field    func(*Profile) any
		expected any
	}{
		{
			name:     "ROSTERLY_AI_ENABLED=true",
			env:      map[string]string{"ROSTERLY_AI_ENABLED": "true"},
			field:    func(p *Profile) any { return p.AIEnabled },
			expected: true,
		},
		{
			name:     "ROSTERLY_AI_EMBEDDING_PROVIDER",
			env:      map[string]string{"ROSTERLY_AI_EMBEDDING_PROVIDER": "openai"},
			field:    func(p *Profile) any { return p.AIEmbeddingProvider },
			expected: "openai",
		},
		{
			name:     "ROSTERLY_AI_EMBEDDING_DIMENSIONS",
			env:      map[string]string{"ROSTERLY_AI_EMBEDDING_DIMENSIONS": "768"},
			field:    func(p *Profile) any { return p.AIEmbeddingDimensions },
			expected: 768,
		},
		{
			name:     "invalid dimensions keep default",
			env:      map[string]string{"ROSTERLY_AI_EMBEDDING_DIMENSIONS": "many"},
			field:    func(p *Profile) any { return p.AIEmbeddingDimensions },
			expected: DefaultEmbeddingDimensions,
		},
		{
			name:     "legacy GEMINI_API_KEY",
			env:      map[string]string{"GEMINI_API_KEY": "legacy-key"},
			field:    func(p *Profile) any { return p.AIGeminiAPIKey },
			expected: "legacy-key",
		},
		{
			name: "ROSTERLY_AI_GEMINI_API_KEY wins over legacy",
			env: map[string]string{
				"GEMINI_API_KEY":             "legacy-key",
				"ROSTERLY_AI_GEMINI_API_KEY": "new-key",
			},
			field:    func(p *Profile) any { return p.AIGeminiAPIKey },
			expected: "new-key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearAIEnvVars(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			profile := &Profile{}
			profile.FromEnv()

			if got := tt.field(profile); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestIsAIEnabled(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		want    bool
	}{
		{"disabled", Profile{AIEnabled: false, AIEmbeddingProvider: "gemini", AIGeminiAPIKey: "k"}, false},
		{"gemini with key", Profile{AIEnabled: true, AIEmbeddingProvider: "gemini", AIGeminiAPIKey: "k"}, true},
		{"gemini without key", Profile{AIEnabled: true, AIEmbeddingProvider: "gemini"}, false},
		{"openai with key", Profile{AIEnabled: true, AIEmbeddingProvider: "openai", AIOpenAIAPIKey: "k"}, true},
		{"ollama needs only url", Profile{AIEnabled: true, AIEmbeddingProvider: "ollama", AIOllamaBaseURL: "http://x"}, true},
		{"unknown provider", Profile{AIEnabled: true, AIEmbeddingProvider: "nope"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.IsAIEnabled(); got != tt.want {
				t.Errorf("IsAIEnabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Run("sqlite derives dsn from data dir", func(t *testing.T) {
		dir := t.TempDir()
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: dir}
		if err := p.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if p.DSN == "" {
			t.Fatal("expected DSN to be derived")
		}
		if p.EventDispatch != DispatchInline {
			t.Errorf("EventDispatch = %q, want %q", p.EventDispatch, DispatchInline)
		}
		if p.EventQueueSize != 256 || p.EventWorkers != 2 {
			t.Errorf("unexpected queue defaults: size=%d workers=%d", p.EventQueueSize, p.EventWorkers)
		}
		if p.EnrichmentTimeout != 30*time.Second {
			t.Errorf("EnrichmentTimeout = %v", p.EnrichmentTimeout)
		}
	})

	t.Run("unknown mode falls back to demo", func(t *testing.T) {
		p := &Profile{Mode: "weird", Driver: "postgres", DSN: "postgres://x"}
		if err := p.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if p.Mode != "demo" {
			t.Errorf("Mode = %q, want demo", p.Mode)
		}
	})

	t.Run("postgres requires dsn", func(t *testing.T) {
		p := &Profile{Mode: "prod", Driver: "postgres"}
		if err := p.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("unsupported driver", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "mysql", DSN: "x"}
		if err := p.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("bad dispatch mode", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "postgres", DSN: "x", EventDispatch: "kafka"}
		if err := p.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("threshold out of range", func(t *testing.T) {
		threshold := 1.5
		p := &Profile{Mode: "dev", Driver: "postgres", DSN: "x", SearchMinSimilarity: &threshold}
		if err := p.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing data dir", func(t *testing.T) {
		p := &Profile{Mode: "dev", Driver: "sqlite", Data: "/definitely/not/here"}
		if err := p.Validate(); err == nil {
			t.Fatal("expected error")
		}
	})
}
