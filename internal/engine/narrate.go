package engine

import "context"

// StageNarrate is the stage name for match narration.
const StageNarrate = "narrate"

const narrateSchema = `{
	"type": "object",
	"required": ["title", "blurb", "compatibilityReasons", "tone", "callToAction"],
	"properties": {
		"title": {"type": "string", "minLength": 1},
		"blurb": {"type": "string", "minLength": 1},
		"compatibilityReasons": {"type": "array", "items": {"type": "string"}, "minItems": 1, "maxItems": 3},
		"tone": {"type": "string"},
		"callToAction": {"type": "string", "minLength": 1}
	}
}`

// NarrateInput carries the serialized summary, candidate context, and the
// last few feedback notes.
type NarrateInput struct {
	SummaryJSON   string
	MatchContext  string
	FeedbackHints string
}

// MatchNarrative is the presentable story for one candidate.
type MatchNarrative struct {
	Title                string   `json:"title"`
	Blurb                string   `json:"blurb"`
	CompatibilityReasons []string `json:"compatibilityReasons"`
	Tone                 string   `json:"tone"`
	CallToAction         string   `json:"callToAction"`
}

// Narrate turns a raw search candidate into a presentable introduction.
func (s *Stages) Narrate(ctx context.Context, in NarrateInput) (MatchNarrative, StageMeta, error) {
	return runStage[MatchNarrative](ctx, s, StageNarrate, map[string]string{
		"summaryJson":   in.SummaryJSON,
		"matchContext":  in.MatchContext,
		"feedbackHints": in.FeedbackHints,
	}, narrateSchema)
}
