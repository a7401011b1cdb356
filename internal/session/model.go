// Package session owns the per-user matchmaking session: its state, the
// phase machine that advances it, and the in-memory store that keeps live
// sessions addressable by id.
package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/cherrish/matchmaker/internal/conversation"
	"github.com/cherrish/matchmaker/internal/engine"
)

// Phase is the session lifecycle position. Every action is legal only in
// specific phases; Ended is terminal.
type Phase string

const (
	PhaseCollecting           Phase = "collecting"
	PhaseAwaitingConfirmation Phase = "awaiting_confirmation"
	PhaseFeedback             Phase = "feedback"
	PhaseEnded                Phase = "ended"
)

// ConversationWindowTurns bounds how much history the interview stage sees.
const ConversationWindowTurns = 20

// DefaultFilters returns the filter selections a fresh session starts with.
// The user can overwrite any of them from the client.
func DefaultFilters() map[string]string {
	return map[string]string{
		"ageBracket": "30s",
		"location":   "Berlin",
		"wantsKids":  "Undecided",
	}
}

// PreferenceSummary is the distilled partner-search profile the user
// confirms before any matching runs.
type PreferenceSummary struct {
	Headline           string            `json:"headline"`
	Synopsis           string            `json:"synopsis"`
	Traits             []string          `json:"traits"`
	Dealbreakers       []string          `json:"dealbreakers"`
	SearchVectorPrompt string            `json:"searchVectorPrompt"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

func summaryFromResult(r engine.SummarizeResult) *PreferenceSummary {
	return &PreferenceSummary{
		Headline:           r.Headline,
		Synopsis:           r.Synopsis,
		Traits:             r.Traits,
		Dealbreakers:       r.Dealbreakers,
		SearchVectorPrompt: r.SearchVectorPrompt,
		Metadata:           r.Metadata,
	}
}

// PresentedMatch records one candidate shown to the user, with the narrative
// generated for it and the raw index payload it came from.
type PresentedMatch struct {
	ID        string                `json:"id"`
	Narrative engine.MatchNarrative `json:"narrative"`
	Score     float32               `json:"vectorScore"`
	Metadata  map[string]any        `json:"metadata,omitempty"`
}

// PsychologyProfile is the one-time parting reflection produced when the
// user leaves.
type PsychologyProfile struct {
	ProfileSummary      string   `json:"profileSummary"`
	Strengths           []string `json:"strengths"`
	GrowthAreas         []string `json:"growthAreas"`
	SuggestedExperiment string   `json:"suggestedExperiment"`
}

func profileFromResult(r engine.ProfileResult) *PsychologyProfile {
	return &PsychologyProfile{
		ProfileSummary:      r.ProfileSummary,
		Strengths:           r.Strengths,
		GrowthAreas:         r.GrowthAreas,
		SuggestedExperiment: r.SuggestedExperiment,
	}
}

// Session is the mutable state one user accumulates across requests. It is
// never accessed directly by callers; the owning Machine serializes every
// read and write under its lock.
type Session struct {
	ID      string
	Phase   Phase
	Filters map[string]string

	Log conversation.Log

	// TurnCount counts user messages handled by the interview loop and
	// drives the soft-cap nudge. InterviewTurnCount counts only those that
	// arrived while collecting; a message sent during confirmation is a
	// revision, not a discovery turn.
	TurnCount          int
	InterviewTurnCount int

	Summary       *PreferenceSummary
	CurrentMatch  *PresentedMatch
	MatchHistory  []PresentedMatch
	FeedbackNotes []string
	Profile       *PsychologyProfile

	CreatedAt time.Time
}

// NewSession creates a fresh session in the collecting phase. An empty id
// gets a generated one.
func NewSession(id string) *Session {
	if id == "" {
		id = uuid.NewString()
	}
	return &Session{
		ID:        id,
		Phase:     PhaseCollecting,
		Filters:   DefaultFilters(),
		CreatedAt: time.Now(),
	}
}

// softCapReached reports whether the advisory turn budget is spent.
func (s *Session) softCapReached(capTurns int) bool {
	return capTurns > 0 && s.TurnCount >= capTurns
}
