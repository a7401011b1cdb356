// Package config resolves the orchestrator's configuration from the
// environment. A .env file, when present, is loaded by the entrypoint before
// FromEnv runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when the environment leaves a knob unset.
const (
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultAnthropicModel  = "claude-3-5-sonnet-20241022"
	DefaultEmbeddingModel  = "text-embedding-3-large"
	DefaultTranscribeModel = "whisper-1"
	DefaultStageTimeout    = 45 * time.Second
	DefaultSoftCapTurns    = 20
	DefaultHTTPAddr        = ":8080"
)

// Config holds every knob the orchestrator reads.
type Config struct {
	// Chat provider selection: "openai" (default) or "anthropic".
	LLMProvider string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string // For OpenAI-compatible APIs

	AnthropicAPIKey string
	AnthropicModel  string

	EmbeddingModel string

	// Transcription provider selection: "openai" (default) or "assemblyai".
	TranscribeProvider string
	TranscribeModel    string
	AssemblyAIAPIKey   string

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// MatchMinScore is the relevance floor forwarded to the index; 0 defers
	// entirely to the index's own threshold.
	MatchMinScore float32

	// StageTimeout bounds every external call (chat, embed, search,
	// transcribe). The pipeline has no retry built in, so a timeout surfaces
	// like any other stage failure.
	StageTimeout time.Duration

	// SoftCapTurns is the advisory turn threshold past which snapshots carry
	// the nudge flag.
	SoftCapTurns int

	// RetryLLM enables the backoff decorator around the chat client.
	RetryLLM bool

	HTTPAddr       string
	AllowedOrigins []string
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() *Config {
	cfg := &Config{
		LLMProvider:        getenv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:       os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:        getenv("OPENAI_MODEL", DefaultOpenAIModel),
		OpenAIBaseURL:      os.Getenv("OPENAI_BASE_URL"),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:     getenv("ANTHROPIC_MODEL", DefaultAnthropicModel),
		EmbeddingModel:     getenv("OPENAI_EMBEDDING_MODEL", DefaultEmbeddingModel),
		TranscribeProvider: getenv("TRANSCRIBE_PROVIDER", "openai"),
		TranscribeModel:    getenv("OPENAI_TRANSCRIBE_MODEL", DefaultTranscribeModel),
		AssemblyAIAPIKey:   os.Getenv("ASSEMBLYAI_API_KEY"),
		QdrantURL:          os.Getenv("QDRANT_URL"),
		QdrantAPIKey:       os.Getenv("QDRANT_API_KEY"),
		QdrantCollection:   getenv("QDRANT_COLLECTION", "candidates"),
		StageTimeout:       getenvDuration("STAGE_TIMEOUT", DefaultStageTimeout),
		SoftCapTurns:       getenvInt("SOFT_CAP_TURNS", DefaultSoftCapTurns),
		RetryLLM:           getenvBool("LLM_RETRY", false),
		HTTPAddr:           getenv("HTTP_ADDR", DefaultHTTPAddr),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	}

	if raw := os.Getenv("MATCH_MIN_SCORE"); raw != "" {
		if score, err := strconv.ParseFloat(raw, 32); err == nil {
			cfg.MatchMinScore = float32(score)
		}
	}

	return cfg
}

// MissingKeyError reports that a required external credential or setting is
// not configured. It maps to the "upstream unavailable" error category: no
// retry, reported directly to the caller.
type MissingKeyError struct {
	Key  string // Environment variable name
	Hint string // What the key enables
}

func (e *MissingKeyError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s is required for %s", e.Key, e.Hint)
	}
	return fmt.Sprintf("%s is not set", e.Key)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
