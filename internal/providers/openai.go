// Package providers implements the external client interfaces against real
// SDKs: OpenAI and Anthropic for chat, OpenAI for embeddings and Whisper
// transcription, AssemblyAI as an alternate transcription backend.
package providers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"github.com/cherrish/matchmaker/internal/engine"
)

// OpenAIClient implements engine.LLMClient, engine.Embedder, and
// engine.Transcriber by calling the OpenAI SDK directly.
type OpenAIClient struct {
	client          *openai.Client
	embeddingModel  string
	transcribeModel string
}

// NewOpenAIClient creates a new OpenAI client. baseURL may be empty or point
// at an OpenAI-compatible endpoint.
func NewOpenAIClient(apiKey, baseURL, embeddingModel, transcribeModel string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-large"
	}
	if transcribeModel == "" {
		transcribeModel = "whisper-1"
	}

	return &OpenAIClient{
		client:          openai.NewClientWithConfig(config),
		embeddingModel:  embeddingModel,
		transcribeModel: transcribeModel,
	}
}

// Chat implements engine.LLMClient.
func (c *OpenAIClient) Chat(ctx context.Context, model string, messages []engine.ChatMessage, opts engine.ChatOptions) (engine.LLMResponse, error) {
	openaiMsgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		role := openai.ChatMessageRoleUser
		switch msg.Role {
		case engine.RoleSystem:
			role = openai.ChatMessageRoleSystem
		case engine.RoleAssistant:
			role = openai.ChatMessageRoleAssistant
		}
		openaiMsgs = append(openaiMsgs, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	req := openai.ChatCompletionRequest{
		Model:    model,
		Messages: openaiMsgs,
	}
	if opts.MaxOutputTokens > 0 {
		req.MaxTokens = opts.MaxOutputTokens
	}
	if opts.Temperature > 0 {
		req.Temperature = &opts.Temperature
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		httpStatus, retryAfter := extractErrorMetadata(err)
		return engine.LLMResponse{}, engine.WrapProviderError(err, httpStatus, retryAfter)
	}

	if len(resp.Choices) == 0 {
		return engine.LLMResponse{}, fmt.Errorf("empty response from OpenAI")
	}
	choice := resp.Choices[0]

	return engine.LLMResponse{
		Assistant: engine.ChatMessage{
			Role:    engine.RoleAssistant,
			Content: choice.Message.Content,
		},
		Usage: engine.Usage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
			Total:      resp.Usage.TotalTokens,
		},
		FinishReason: string(choice.FinishReason),
	}, nil
}

// Embed implements engine.Embedder.
func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		httpStatus, retryAfter := extractErrorMetadata(err)
		return nil, engine.WrapProviderError(err, httpStatus, retryAfter)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return resp.Data[0].Embedding, nil
}

// Transcribe implements engine.Transcriber using the Whisper endpoint. The
// filename hint carries the container format in its extension.
func (c *OpenAIClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "snippet.webm"
	}

	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:       c.transcribeModel,
		Reader:      bytes.NewReader(audio),
		FilePath:    filename,
		Temperature: 0.2,
	})
	if err != nil {
		httpStatus, retryAfter := extractErrorMetadata(err)
		return "", engine.WrapProviderError(err, httpStatus, retryAfter)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("unable to transcribe the audio snippet")
	}

	return text, nil
}

// extractErrorMetadata pulls an HTTP status and Retry-After hint out of a
// provider error string, for retry classification.
func extractErrorMetadata(err error) (int, string) {
	if err == nil {
		return 0, ""
	}

	errStr := err.Error()
	var httpStatus int
	var retryAfter string

	switch {
	case strings.Contains(errStr, "429"):
		httpStatus = http.StatusTooManyRequests
	case strings.Contains(errStr, "500"):
		httpStatus = http.StatusInternalServerError
	case strings.Contains(errStr, "502"):
		httpStatus = http.StatusBadGateway
	case strings.Contains(errStr, "503"):
		httpStatus = http.StatusServiceUnavailable
	case strings.Contains(errStr, "504"):
		httpStatus = http.StatusGatewayTimeout
	case strings.Contains(errStr, "401"):
		httpStatus = http.StatusUnauthorized
	case strings.Contains(errStr, "403"):
		httpStatus = http.StatusForbidden
	case strings.Contains(errStr, "400"):
		httpStatus = http.StatusBadRequest
	}

	if idx := strings.Index(strings.ToLower(errStr), "retry-after"); idx != -1 {
		remaining := strings.TrimLeft(errStr[idx+len("retry-after"):], ": ")
		if end := strings.IndexAny(remaining, " ,;\n"); end > 0 {
			remaining = remaining[:end]
		}
		retryAfter = remaining
	}

	return httpStatus, retryAfter
}

var (
	_ engine.LLMClient   = (*OpenAIClient)(nil)
	_ engine.Embedder    = (*OpenAIClient)(nil)
	_ engine.Transcriber = (*OpenAIClient)(nil)
)
