package conversation

import "strings"

// NoConversation is rendered when the log is still empty.
const NoConversation = "No conversation yet."

// Display labels used when rendering turns for prompt input.
const (
	labelAssistant = "Matchmaker"
	labelUser      = "User"
)

// Log is an ordered, append-only record of turns. It is not safe for
// concurrent use; the owning session serializes access.
type Log struct {
	turns []Turn
}

// Append adds a turn to the end of the log.
func (l *Log) Append(t Turn) {
	l.turns = append(l.turns, t)
}

// Len returns the number of turns recorded so far.
func (l *Log) Len() int {
	return len(l.turns)
}

// Turns returns the full transcript in order. The returned slice must not be
// mutated by callers.
func (l *Log) Turns() []Turn {
	return l.turns
}

// Window returns the last n turns in order. It never mutates the log; a
// window is a read-time view.
func (l *Log) Window(n int) []Turn {
	if n <= 0 || len(l.turns) == 0 {
		return nil
	}
	if n >= len(l.turns) {
		return l.turns
	}
	return l.turns[len(l.turns)-n:]
}

// Render formats turns as "<Role>: <content>" lines joined by newlines, the
// shape the generation stages consume. An empty log renders as the
// NoConversation sentinel.
func (l *Log) Render() string {
	return RenderTurns(l.turns)
}

// RenderWindow renders only the last n turns.
func (l *Log) RenderWindow(n int) string {
	return RenderTurns(l.Window(n))
}

// RenderTurns formats an arbitrary sequence of turns.
func RenderTurns(turns []Turn) string {
	if len(turns) == 0 {
		return NoConversation
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		label := labelUser
		if t.Role == RoleAssistant {
			label = labelAssistant
		}
		lines = append(lines, label+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}
