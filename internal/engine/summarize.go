package engine

import "context"

// StageSummarize is the stage name for preference summary synthesis.
const StageSummarize = "summarize"

const summarizeSchema = `{
	"type": "object",
	"required": ["headline", "synopsis", "traits", "dealbreakers", "searchVectorPrompt"],
	"properties": {
		"headline": {"type": "string", "minLength": 1},
		"synopsis": {"type": "string", "minLength": 1},
		"traits": {"type": "array", "items": {"type": "string"}, "minItems": 3},
		"dealbreakers": {"type": "array", "items": {"type": "string"}, "minItems": 2},
		"searchVectorPrompt": {"type": "string", "minLength": 1},
		"metadata": {"type": "object", "additionalProperties": {"type": "string"}}
	}
}`

// SummarizeInput carries the full conversation and filter snapshot.
type SummarizeInput struct {
	ConversationHistory string
	FilterSummary       string
}

// SummarizeResult is the structured preference summary. SearchVectorPrompt is
// the only field forwarded to the embedding client.
type SummarizeResult struct {
	Headline           string            `json:"headline"`
	Synopsis           string            `json:"synopsis"`
	Traits             []string          `json:"traits"`
	Dealbreakers       []string          `json:"dealbreakers"`
	SearchVectorPrompt string            `json:"searchVectorPrompt"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// Summarize distills the conversation into a partner-search profile.
func (s *Stages) Summarize(ctx context.Context, in SummarizeInput) (SummarizeResult, StageMeta, error) {
	return runStage[SummarizeResult](ctx, s, StageSummarize, map[string]string{
		"conversationHistory": in.ConversationHistory,
		"filterSummary":       in.FilterSummary,
	}, summarizeSchema)
}
