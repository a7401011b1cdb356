package session

import "github.com/cherrish/matchmaker/internal/engine"

// Snapshot is the externally visible view of a session after an action. It
// carries everything a client needs to render the next screen; internal
// state such as the raw transcript stays behind the Machine.
type Snapshot struct {
	SessionID  string             `json:"sessionId"`
	Phase      Phase              `json:"phase"`
	AgentReply string             `json:"agentReply,omitempty"`
	Transcript string             `json:"transcript,omitempty"`
	Summary    *PreferenceSummary `json:"summary,omitempty"`
	Match      *PresentedMatch    `json:"match,omitempty"`
	Profile    *PsychologyProfile `json:"profileSummary,omitempty"`

	TurnCount      int  `json:"turnCount"`
	InterviewTurns int  `json:"interviewTurns"`
	SoftCap        bool `json:"softCapReached"`

	Filters map[string]string `json:"filters"`

	// Stats carries the execution metadata of the stages this session has
	// run, keyed by stage name. Each entry reflects the latest run.
	Stats map[string]engine.StageMeta `json:"stats,omitempty"`
}
