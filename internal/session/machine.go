package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cherrish/matchmaker/internal/conversation"
	"github.com/cherrish/matchmaker/internal/engine"
	"github.com/cherrish/matchmaker/internal/matching"
)

// Synthetic instructions handed to the interview stage for actions that do
// not carry a user message of their own.
const (
	openingInstruction = "Introduce yourself warmly and ask your first discovery question."
	refineInstruction  = "The user wants to refine their profile before matching. Acknowledge that and ask a focused follow-up question that digs deeper."
)

// Canned replies for the transitions that do not run a generation stage.
const (
	noCandidateReply = "I couldn't find a confident match with your current criteria. Tell me what matters most to you, or loosen a filter, and I'll search again."
	noMatchAckReply  = "Noted! I'll keep that in mind for the next search."
	acceptReply      = "Wonderful! I'll arrange the introduction. Fingers crossed!"
	farewellReply    = "It was lovely getting to know you. Your reflection is below. Come back any time."
)

// Config carries the knobs the machine reads on every action.
type Config struct {
	// StageTimeout bounds each external call individually.
	StageTimeout time.Duration

	// SoftCapTurns is the advisory interview budget. Crossing it never
	// blocks a message; it only flips the nudge flag the interview stage
	// and snapshots see.
	SoftCapTurns int
}

func (c Config) withDefaults() Config {
	if c.StageTimeout <= 0 {
		c.StageTimeout = 45 * time.Second
	}
	if c.SoftCapTurns <= 0 {
		c.SoftCapTurns = 20
	}
	return c
}

// Machine drives one session through its phases. All actions serialize on
// the machine's lock, so concurrent requests against the same session
// observe a total order.
//
// Mutations follow an append-then-validate-then-commit discipline: the
// user's own turn is committed as soon as it is normalized, but every other
// state change waits until all external calls for the action have
// succeeded. A stage failure therefore leaves the session exactly as it
// was, plus the user's message.
type Machine struct {
	mu sync.Mutex

	stages      *engine.Stages
	matcher     *matching.Matcher
	transcriber engine.Transcriber
	cfg         Config

	sess  *Session
	stats map[string]engine.StageMeta
}

// NewMachine wires a machine around an existing session. transcriber may be
// nil when no audio backend is configured.
func NewMachine(sess *Session, stages *engine.Stages, matcher *matching.Matcher, transcriber engine.Transcriber, cfg Config) *Machine {
	return &Machine{
		stages:      stages,
		matcher:     matcher,
		transcriber: transcriber,
		cfg:         cfg.withDefaults(),
		sess:        sess,
		stats:       make(map[string]engine.StageMeta),
	}
}

// ID returns the session id.
func (m *Machine) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.ID
}

// Snapshot returns the current external view without performing an action.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot("", "")
}

// Init opens the conversation with the agent's greeting. It is idempotent:
// a session that already has turns returns its current snapshot untouched,
// so a reconnecting client never spawns a duplicate greeting.
func (m *Machine) Init(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Log.Len() > 0 {
		return m.snapshot("", ""), nil
	}

	cctx, cancel := m.stageCtx(ctx)
	defer cancel()
	res, meta, err := m.stages.Interview(cctx, engine.InterviewInput{
		ConversationWindow: conversation.NoConversation,
		LatestUserMessage:  openingInstruction,
		FilterSummary:      m.filterJSON(),
	})
	m.record(meta)
	if err != nil {
		return Snapshot{}, err
	}

	m.sess.Log.Append(conversation.NewTurn(conversation.RoleAssistant, res.Reply, conversation.ViaText))
	return m.snapshot(res.Reply, ""), nil
}

// SendMessage handles one user turn. When text is empty and audio is
// present, the snippet is transcribed first and the transcript becomes the
// turn content.
//
// In awaiting_confirmation a free-form message is treated as an implicit
// revision: the pending summary is discarded and the session drops back to
// collecting before the reply is considered. If the interview stage then
// declares readiness again, a fresh summary is generated in the same turn.
func (m *Machine) SendMessage(ctx context.Context, text string, audio []byte, audioName string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.sess.Phase {
	case PhaseCollecting, PhaseAwaitingConfirmation:
	default:
		return Snapshot{}, &IllegalActionError{Action: "send_message", Phase: m.sess.Phase}
	}

	text = strings.TrimSpace(text)
	via := conversation.ViaText
	transcript := ""
	if text == "" && len(audio) > 0 {
		if m.transcriber == nil {
			return Snapshot{}, fmt.Errorf("received an audio snippet but no transcription backend is configured")
		}
		tctx, cancel := m.stageCtx(ctx)
		spoken, err := m.transcriber.Transcribe(tctx, audio, audioName)
		cancel()
		if err != nil {
			return Snapshot{}, fmt.Errorf("transcription failed: %w", err)
		}
		text = strings.TrimSpace(spoken)
		transcript = text
		via = conversation.ViaVoice
	}
	if text == "" {
		return Snapshot{}, &MissingInputError{Field: "message"}
	}

	// The user's turn is part of the conversation the stages are asked
	// about, so it commits before any generation runs and survives a stage
	// failure.
	m.sess.Log.Append(conversation.NewTurn(conversation.RoleUser, text, via))

	wasAwaiting := m.sess.Phase == PhaseAwaitingConfirmation
	filterJSON := m.filterJSON()

	ictx, cancel := m.stageCtx(ctx)
	res, meta, err := m.stages.Interview(ictx, engine.InterviewInput{
		ConversationWindow: m.sess.Log.RenderWindow(ConversationWindowTurns),
		LatestUserMessage:  text,
		FilterSummary:      filterJSON,
		SoftCapReached:     m.sess.softCapReached(m.cfg.SoftCapTurns),
	})
	cancel()
	m.record(meta)
	if err != nil {
		return Snapshot{}, err
	}

	var summary *PreferenceSummary
	if res.ReadyForSummary {
		sctx, cancel := m.stageCtx(ctx)
		sres, smeta, serr := m.stages.Summarize(sctx, engine.SummarizeInput{
			ConversationHistory: m.sess.Log.Render(),
			FilterSummary:       filterJSON,
		})
		cancel()
		m.record(smeta)
		if serr != nil {
			return Snapshot{}, serr
		}
		summary = summaryFromResult(sres)
	}

	m.sess.TurnCount++
	if !wasAwaiting {
		m.sess.InterviewTurnCount++
	}
	m.sess.Log.Append(conversation.NewTurn(conversation.RoleAssistant, res.Reply, conversation.ViaText))
	if wasAwaiting {
		m.sess.Summary = nil
		m.sess.Phase = PhaseCollecting
	}
	if summary != nil {
		m.sess.Summary = summary
		m.sess.Phase = PhaseAwaitingConfirmation
	}

	return m.snapshot(res.Reply, transcript), nil
}

// ConfirmSummary accepts the pending summary and runs the first search.
func (m *Machine) ConfirmSummary(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Phase != PhaseAwaitingConfirmation || m.sess.Summary == nil {
		return Snapshot{}, &IllegalActionError{
			Action: "confirm_summary",
			Phase:  m.sess.Phase,
			Reason: "no summary is awaiting confirmation",
		}
	}

	return m.runMatch(ctx)
}

// RequestMoreQuestions discards any pending summary and resumes discovery
// with an explicit deeper question.
func (m *Machine) RequestMoreQuestions(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.sess.Phase {
	case PhaseCollecting, PhaseAwaitingConfirmation:
	default:
		return Snapshot{}, &IllegalActionError{Action: "request_more_questions", Phase: m.sess.Phase}
	}

	ictx, cancel := m.stageCtx(ctx)
	defer cancel()
	res, meta, err := m.stages.Interview(ictx, engine.InterviewInput{
		ConversationWindow: m.sess.Log.RenderWindow(ConversationWindowTurns),
		LatestUserMessage:  refineInstruction,
		FilterSummary:      m.filterJSON(),
		SoftCapReached:     m.sess.softCapReached(m.cfg.SoftCapTurns),
	})
	m.record(meta)
	if err != nil {
		return Snapshot{}, err
	}

	m.sess.Summary = nil
	m.sess.Phase = PhaseCollecting
	m.sess.Log.Append(conversation.NewTurn(conversation.RoleAssistant, res.Reply, conversation.ViaText))
	return m.snapshot(res.Reply, ""), nil
}

// SubmitFeedback records the user's reaction to the current match. When the
// last search produced no candidate there is nothing to coach on, so the
// note is stored and acknowledged without a generation call.
func (m *Machine) SubmitFeedback(ctx context.Context, text string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Phase != PhaseFeedback {
		return Snapshot{}, &IllegalActionError{Action: "submit_feedback", Phase: m.sess.Phase}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Snapshot{}, &MissingInputError{Field: "feedback"}
	}

	m.sess.Log.Append(conversation.NewTurn(conversation.RoleUser, text, conversation.ViaText))

	if m.sess.CurrentMatch == nil {
		m.sess.FeedbackNotes = append(m.sess.FeedbackNotes, text)
		m.sess.Log.Append(conversation.NewTurn(conversation.RoleAssistant, noMatchAckReply, conversation.ViaText))
		return m.snapshot(noMatchAckReply, ""), nil
	}

	narrativeJSON, _ := json.Marshal(m.sess.CurrentMatch.Narrative)
	fctx, cancel := m.stageCtx(ctx)
	defer cancel()
	res, meta, err := m.stages.Feedback(fctx, engine.FeedbackInput{
		UserFeedback: text,
		MatchSummary: string(narrativeJSON),
	})
	m.record(meta)
	if err != nil {
		return Snapshot{}, err
	}

	note := text
	if res.InternalNote != "" {
		note = fmt.Sprintf("%s (coach note: %s)", text, res.InternalNote)
	}
	m.sess.FeedbackNotes = append(m.sess.FeedbackNotes, note)
	reply := res.UserReply()
	m.sess.Log.Append(conversation.NewTurn(conversation.RoleAssistant, reply, conversation.ViaText))
	return m.snapshot(reply, ""), nil
}

// RequestNewMatch runs another search against the confirmed summary.
// Searches are independent; a candidate shown before may come back.
func (m *Machine) RequestNewMatch(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Phase != PhaseFeedback {
		return Snapshot{}, &IllegalActionError{Action: "request_new_match", Phase: m.sess.Phase}
	}
	if m.sess.Summary == nil {
		return Snapshot{}, &IllegalActionError{
			Action: "request_new_match",
			Phase:  m.sess.Phase,
			Reason: "no confirmed summary to search with",
		}
	}

	return m.runMatch(ctx)
}

// AcceptMatch records that the user wants the introduction. The session
// stays in feedback so the user can keep exploring or leave.
func (m *Machine) AcceptMatch(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Phase != PhaseFeedback || m.sess.CurrentMatch == nil {
		return Snapshot{}, &IllegalActionError{
			Action: "accept_match",
			Phase:  m.sess.Phase,
			Reason: "no match is currently presented",
		}
	}

	m.sess.Log.Append(conversation.NewTurn(conversation.RoleAssistant, acceptReply, conversation.ViaText))
	return m.snapshot(acceptReply, ""), nil
}

// Leave ends the session with the one-time psychology reflection. Ended is
// terminal; every later action is rejected.
func (m *Machine) Leave(ctx context.Context) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Phase == PhaseEnded {
		return Snapshot{}, &IllegalActionError{Action: "leave", Phase: m.sess.Phase, Reason: "session already ended"}
	}
	if m.sess.Summary == nil {
		return Snapshot{}, &IllegalActionError{
			Action: "leave",
			Phase:  m.sess.Phase,
			Reason: "nothing to reflect on before a summary exists",
		}
	}

	summaryJSON, _ := json.Marshal(m.sess.Summary)
	matchesJSON, _ := json.Marshal(m.sess.MatchHistory)
	notesJSON, _ := json.Marshal(m.sess.FeedbackNotes)

	pctx, cancel := m.stageCtx(ctx)
	defer cancel()
	res, meta, err := m.stages.Profile(pctx, engine.ProfileInput{
		ConversationHistory: m.sess.Log.Render(),
		SummaryJSON:         string(summaryJSON),
		MatchesJSON:         string(matchesJSON),
		FeedbackNotes:       string(notesJSON),
	})
	m.record(meta)
	if err != nil {
		return Snapshot{}, err
	}

	m.sess.Profile = profileFromResult(res)
	m.sess.Phase = PhaseEnded
	m.sess.Log.Append(conversation.NewTurn(conversation.RoleAssistant, farewellReply, conversation.ViaText))
	return m.snapshot(farewellReply, ""), nil
}

// MergeFilters overlays client filter selections onto the session. Values
// are strings only; empty values are ignored rather than clearing a key.
// Ended sessions no longer accept filter changes.
func (m *Machine) MergeFilters(update map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sess.Phase == PhaseEnded {
		return
	}
	for k, v := range update {
		if strings.TrimSpace(v) == "" {
			continue
		}
		m.sess.Filters[k] = v
	}
}

// runMatch performs one search plus narration. A below-threshold search is
// a conversational outcome, not an error: the session still moves to
// feedback with no current match. Caller holds the lock.
func (m *Machine) runMatch(ctx context.Context) (Snapshot, error) {
	sum := m.sess.Summary

	sctx, cancel := m.stageCtx(ctx)
	cand, err := m.matcher.FindCandidate(sctx, sum.SearchVectorPrompt, sum.Metadata, m.sess.Filters)
	cancel()
	if errors.Is(err, matching.ErrNoCandidate) {
		// An empty search never revokes a match already on the table; the
		// last presented candidate stays current.
		m.sess.Phase = PhaseFeedback
		m.sess.Log.Append(conversation.NewTurn(conversation.RoleAssistant, noCandidateReply, conversation.ViaText))
		return m.snapshot(noCandidateReply, ""), nil
	}
	if err != nil {
		return Snapshot{}, err
	}

	summaryJSON, _ := json.Marshal(sum)
	contextJSON, _ := json.Marshal(cand.Metadata)
	nctx, cancel := m.stageCtx(ctx)
	defer cancel()
	narrative, meta, err := m.stages.Narrate(nctx, engine.NarrateInput{
		SummaryJSON:   string(summaryJSON),
		MatchContext:  string(contextJSON),
		FeedbackHints: m.feedbackHints(),
	})
	m.record(meta)
	if err != nil {
		return Snapshot{}, err
	}

	match := &PresentedMatch{
		ID:        cand.ID,
		Narrative: narrative,
		Score:     cand.Score,
		Metadata:  cand.Metadata,
	}
	m.sess.CurrentMatch = match
	m.sess.MatchHistory = append(m.sess.MatchHistory, *match)
	m.sess.Phase = PhaseFeedback

	reply := renderMatchReply(narrative)
	m.sess.Log.Append(conversation.NewTurn(conversation.RoleAssistant, reply, conversation.ViaText))
	return m.snapshot(reply, ""), nil
}

// feedbackHints renders the last few feedback notes for the narrator.
func (m *Machine) feedbackHints() string {
	notes := m.sess.FeedbackNotes
	if len(notes) == 0 {
		return "No feedback yet."
	}
	if len(notes) > 3 {
		notes = notes[len(notes)-3:]
	}
	return strings.Join(notes, "\n")
}

// renderMatchReply flattens a narrative into the chat message shown to the
// user alongside the structured match.
func renderMatchReply(n engine.MatchNarrative) string {
	var b strings.Builder
	b.WriteString(n.Title)
	b.WriteString("\n\n")
	b.WriteString(n.Blurb)
	if len(n.CompatibilityReasons) > 0 {
		b.WriteString("\n\nWhy this could work:")
		for _, reason := range n.CompatibilityReasons {
			b.WriteString("\n- ")
			b.WriteString(reason)
		}
	}
	if n.CallToAction != "" {
		b.WriteString("\n\n")
		b.WriteString(n.CallToAction)
	}
	return b.String()
}

func (m *Machine) stageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.cfg.StageTimeout)
}

func (m *Machine) record(meta engine.StageMeta) {
	if meta.Stage != "" {
		m.stats[meta.Stage] = meta
	}
}

func (m *Machine) filterJSON() string {
	b, _ := json.Marshal(m.sess.Filters)
	return string(b)
}

func (m *Machine) snapshot(reply, transcript string) Snapshot {
	filters := make(map[string]string, len(m.sess.Filters))
	for k, v := range m.sess.Filters {
		filters[k] = v
	}

	snap := Snapshot{
		SessionID:      m.sess.ID,
		Phase:          m.sess.Phase,
		AgentReply:     reply,
		Transcript:     transcript,
		TurnCount:      m.sess.TurnCount,
		InterviewTurns: m.sess.InterviewTurnCount,
		SoftCap:        m.sess.softCapReached(m.cfg.SoftCapTurns),
		Filters:        filters,
	}

	if m.sess.Phase == PhaseAwaitingConfirmation {
		snap.Summary = m.sess.Summary
	}
	if m.sess.Phase == PhaseFeedback && m.sess.CurrentMatch != nil {
		snap.Match = m.sess.CurrentMatch
	}
	if m.sess.Profile != nil {
		snap.Profile = m.sess.Profile
	}
	if len(m.stats) > 0 {
		stats := make(map[string]engine.StageMeta, len(m.stats))
		for k, v := range m.stats {
			stats[k] = v
		}
		snap.Stats = stats
	}

	return snap
}
