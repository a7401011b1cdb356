package engine

import (
	"context"
	"strconv"
)

// StageInterview is the stage name for the discovery conversation.
const StageInterview = "interview"

// interviewSchema is the contract the interview stage output must satisfy.
const interviewSchema = `{
	"type": "object",
	"required": ["reply", "readyForSummary"],
	"properties": {
		"reply": {"type": "string", "minLength": 1},
		"readyForSummary": {"type": "boolean"},
		"coachingNote": {"type": "string"}
	}
}`

// InterviewInput carries the phase-scoped inputs for one interview turn.
type InterviewInput struct {
	ConversationWindow string // rendered window of recent turns
	LatestUserMessage  string // the message being responded to (or a synthetic instruction)
	FilterSummary      string // serialized current filter selections
	SoftCapReached     bool
}

// InterviewResult is the structured output of the interview stage. The agent
// itself declares readiness for summarization; the orchestrator trusts this
// signal rather than recomputing it.
type InterviewResult struct {
	Reply           string `json:"reply"`
	ReadyForSummary bool   `json:"readyForSummary"`
	CoachingNote    string `json:"coachingNote,omitempty"`
}

// Interview runs one discovery turn.
func (s *Stages) Interview(ctx context.Context, in InterviewInput) (InterviewResult, StageMeta, error) {
	return runStage[InterviewResult](ctx, s, StageInterview, map[string]string{
		"conversationHistory": in.ConversationWindow,
		"latestUserMessage":   in.LatestUserMessage,
		"filterSummary":       in.FilterSummary,
		"softCapReached":      strconv.FormatBool(in.SoftCapReached),
	}, interviewSchema)
}
