package engine

import "context"

// StageFeedback is the stage name for feedback coaching.
const StageFeedback = "feedback"

const feedbackSchema = `{
	"type": "object",
	"required": ["acknowledgement", "followUpQuestion"],
	"properties": {
		"acknowledgement": {"type": "string", "minLength": 1},
		"followUpQuestion": {"type": "string", "minLength": 1},
		"internalNote": {"type": "string"}
	}
}`

// FeedbackInput carries the latest feedback text and the serialized current
// match narrative.
type FeedbackInput struct {
	UserFeedback string
	MatchSummary string
}

// FeedbackResult is the coach's structured reaction. The reply surfaced to
// the user is Acknowledgement + " " + FollowUpQuestion.
type FeedbackResult struct {
	Acknowledgement  string `json:"acknowledgement"`
	FollowUpQuestion string `json:"followUpQuestion"`
	InternalNote     string `json:"internalNote,omitempty"`
}

// UserReply concatenates the parts shown to the user.
func (r FeedbackResult) UserReply() string {
	return r.Acknowledgement + " " + r.FollowUpQuestion
}

// Feedback coaches on the user's reaction to the current match.
func (s *Stages) Feedback(ctx context.Context, in FeedbackInput) (FeedbackResult, StageMeta, error) {
	return runStage[FeedbackResult](ctx, s, StageFeedback, map[string]string{
		"userFeedback": in.UserFeedback,
		"matchSummary": in.MatchSummary,
	}, feedbackSchema)
}
