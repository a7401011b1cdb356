package providers

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	assemblyai "github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/cherrish/matchmaker/internal/engine"
)

// AssemblyAIClient implements engine.Transcriber against AssemblyAI, as an
// alternate backend to Whisper.
type AssemblyAIClient struct {
	client *assemblyai.Client
}

// NewAssemblyAIClient creates a new AssemblyAI transcription client.
func NewAssemblyAIClient(apiKey string) *AssemblyAIClient {
	return &AssemblyAIClient{
		client: assemblyai.NewClient(apiKey),
	}
}

// Transcribe implements engine.Transcriber. The SDK uploads the snippet and
// polls until the transcript is ready.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	transcript, err := c.client.Transcripts.TranscribeFromReader(ctx, bytes.NewReader(audio), nil)
	if err != nil {
		return "", fmt.Errorf("assemblyai transcription failed: %w", err)
	}

	if transcript.Text == nil || strings.TrimSpace(*transcript.Text) == "" {
		return "", fmt.Errorf("unable to transcribe the audio snippet")
	}

	return strings.TrimSpace(*transcript.Text), nil
}

var _ engine.Transcriber = (*AssemblyAIClient)(nil)
