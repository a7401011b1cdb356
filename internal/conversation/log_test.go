package conversation

import (
	"strings"
	"testing"
)

func TestLogAppendAndWindow(t *testing.T) {
	var log Log

	if log.Render() != NoConversation {
		t.Errorf("empty log should render sentinel, got %q", log.Render())
	}
	if got := log.Window(5); got != nil {
		t.Errorf("empty log window should be nil, got %v", got)
	}

	log.Append(NewTurn(RoleAssistant, "Hey there!", ViaSystem))
	log.Append(NewTurn(RoleUser, "Hi, I want to talk about partners.", ViaText))
	log.Append(NewTurn(RoleAssistant, "Tell me more.", ViaText))

	if log.Len() != 3 {
		t.Fatalf("expected 3 turns, got %d", log.Len())
	}

	window := log.Window(2)
	if len(window) != 2 {
		t.Fatalf("expected window of 2, got %d", len(window))
	}
	if window[0].Content != "Hi, I want to talk about partners." {
		t.Errorf("window dropped the wrong end: %q", window[0].Content)
	}

	// A window larger than the log returns everything.
	if len(log.Window(50)) != 3 {
		t.Errorf("oversized window should return all turns")
	}
}

func TestRenderRoundTrip(t *testing.T) {
	var log Log
	log.Append(NewTurn(RoleAssistant, "Welcome!", ViaSystem))
	log.Append(NewTurn(RoleUser, "I value honesty", ViaVoice))
	log.Append(NewTurn(RoleAssistant, "Why does honesty matter to you?", ViaText))

	rendered := log.Render()
	lines := strings.Split(rendered, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 rendered lines, got %d: %q", len(lines), rendered)
	}

	// Re-parse role labels and contents; order and labeling must survive.
	wantLabels := []string{"Matchmaker", "User", "Matchmaker"}
	wantContents := []string{"Welcome!", "I value honesty", "Why does honesty matter to you?"}
	for i, line := range lines {
		label, content, ok := strings.Cut(line, ": ")
		if !ok {
			t.Fatalf("line %d not in <Role>: <content> form: %q", i, line)
		}
		if label != wantLabels[i] {
			t.Errorf("line %d label = %q, want %q", i, label, wantLabels[i])
		}
		if content != wantContents[i] {
			t.Errorf("line %d content = %q, want %q", i, content, wantContents[i])
		}
	}
}

func TestTurnValidate(t *testing.T) {
	good := NewTurn(RoleUser, "hello", ViaText)
	if err := good.Validate(); err != nil {
		t.Errorf("valid turn rejected: %v", err)
	}

	bad := Turn{Role: "narrator", Content: "x", Via: ViaText}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for invalid role")
	}

	badVia := Turn{Role: RoleUser, Content: "x", Via: "telepathy"}
	if err := badVia.Validate(); err == nil {
		t.Error("expected error for invalid modality")
	}
}
