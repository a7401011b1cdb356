package providers

import (
	"fmt"

	"github.com/cherrish/matchmaker/internal/config"
	"github.com/cherrish/matchmaker/internal/engine"
)

// NewLLMClient creates an engine.LLMClient for the configured chat provider,
// returning the client and the model name to run it with.
func NewLLMClient(cfg *config.Config) (engine.LLMClient, string, error) {
	switch cfg.LLMProvider {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, "", &config.MissingKeyError{Key: "OPENAI_API_KEY", Hint: "the OpenAI chat provider"}
		}
		client := NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.TranscribeModel)
		return client, cfg.OpenAIModel, nil

	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, "", &config.MissingKeyError{Key: "ANTHROPIC_API_KEY", Hint: "the Anthropic chat provider"}
		}
		return NewAnthropicClient(cfg.AnthropicAPIKey), cfg.AnthropicModel, nil

	default:
		return nil, "", fmt.Errorf("unknown LLM provider: %s", cfg.LLMProvider)
	}
}

// NewEmbedder creates the embedding client. Embeddings always run on OpenAI
// regardless of the chat provider.
func NewEmbedder(cfg *config.Config) (engine.Embedder, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, &config.MissingKeyError{Key: "OPENAI_API_KEY", Hint: "embeddings"}
	}
	return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.TranscribeModel), nil
}

// NewTranscriber creates the audio transcription client for the configured
// backend.
func NewTranscriber(cfg *config.Config) (engine.Transcriber, error) {
	switch cfg.TranscribeProvider {
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, &config.MissingKeyError{Key: "OPENAI_API_KEY", Hint: "audio transcription"}
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.TranscribeModel), nil

	case "assemblyai":
		if cfg.AssemblyAIAPIKey == "" {
			return nil, &config.MissingKeyError{Key: "ASSEMBLYAI_API_KEY", Hint: "AssemblyAI transcription"}
		}
		return NewAssemblyAIClient(cfg.AssemblyAIAPIKey), nil

	default:
		return nil, fmt.Errorf("unknown transcription provider: %s", cfg.TranscribeProvider)
	}
}
