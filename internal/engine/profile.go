package engine

import "context"

// StageProfile is the stage name for the psychology wrap-up.
const StageProfile = "profile"

const profileSchema = `{
	"type": "object",
	"required": ["profileSummary", "strengths", "growthAreas", "suggestedExperiment"],
	"properties": {
		"profileSummary": {"type": "string", "minLength": 1},
		"strengths": {"type": "array", "items": {"type": "string"}, "minItems": 3},
		"growthAreas": {"type": "array", "items": {"type": "string"}, "minItems": 2},
		"suggestedExperiment": {"type": "string", "minLength": 1}
	}
}`

// ProfileInput carries everything the wrap-up reflects on.
type ProfileInput struct {
	ConversationHistory string
	SummaryJSON         string
	MatchesJSON         string
	FeedbackNotes       string
}

// ProfileResult is the final psychological wrap-up, computed exactly once at
// session end.
type ProfileResult struct {
	ProfileSummary      string   `json:"profileSummary"`
	Strengths           []string `json:"strengths"`
	GrowthAreas         []string `json:"growthAreas"`
	SuggestedExperiment string   `json:"suggestedExperiment"`
}

// Profile produces the parting reflection.
func (s *Stages) Profile(ctx context.Context, in ProfileInput) (ProfileResult, StageMeta, error) {
	return runStage[ProfileResult](ctx, s, StageProfile, map[string]string{
		"conversationHistory": in.ConversationHistory,
		"summaryJson":         in.SummaryJSON,
		"matchesJson":         in.MatchesJSON,
		"feedbackNotes":       in.FeedbackNotes,
	}, profileSchema)
}
