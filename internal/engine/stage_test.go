package engine

import (
	"context"
	"errors"
	"testing"
)

// scriptedLLM returns canned replies in order, recording what it was asked.
type scriptedLLM struct {
	replies  []string
	err      error
	calls    int
	lastMsgs []ChatMessage
}

func (f *scriptedLLM) Chat(ctx context.Context, model string, messages []ChatMessage, opts ChatOptions) (LLMResponse, error) {
	f.lastMsgs = messages
	if f.err != nil {
		return LLMResponse{}, f.err
	}
	reply := f.replies[f.calls%len(f.replies)]
	f.calls++
	return LLMResponse{
		Assistant:    ChatMessage{Role: RoleAssistant, Content: reply},
		Usage:        Usage{Prompt: 10, Completion: 5, Total: 15},
		FinishReason: "stop",
	}, nil
}

func TestInterviewStageDecodes(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		`{"reply": "Tell me more! 🍰", "readyForSummary": false}`,
	}}
	stages := NewStages(llm, "test-model")

	out, meta, err := stages.Interview(context.Background(), InterviewInput{
		ConversationWindow: "No conversation yet.",
		LatestUserMessage:  "hi",
		FilterSummary:      "{}",
	})
	if err != nil {
		t.Fatalf("Interview failed: %v", err)
	}
	if out.Reply != "Tell me more! 🍰" {
		t.Errorf("unexpected reply: %q", out.Reply)
	}
	if out.ReadyForSummary {
		t.Error("readyForSummary should be false")
	}
	if meta.Stage != StageInterview || meta.Model != "test-model" {
		t.Errorf("unexpected meta: %+v", meta)
	}
	if meta.Usage.Total != 15 {
		t.Errorf("usage not propagated: %+v", meta.Usage)
	}

	// The persona goes in as system, the filled template as user.
	if len(llm.lastMsgs) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(llm.lastMsgs))
	}
	if llm.lastMsgs[0].Role != RoleSystem || llm.lastMsgs[1].Role != RoleUser {
		t.Errorf("unexpected roles: %v %v", llm.lastMsgs[0].Role, llm.lastMsgs[1].Role)
	}
}

func TestStageToleratesCodeFences(t *testing.T) {
	llm := &scriptedLLM{replies: []string{
		"Here you go:\n```json\n{\"reply\": \"ok\", \"readyForSummary\": true}\n```",
	}}
	stages := NewStages(llm, "m")

	out, _, err := stages.Interview(context.Background(), InterviewInput{})
	if err != nil {
		t.Fatalf("fenced JSON should decode: %v", err)
	}
	if !out.ReadyForSummary {
		t.Error("readyForSummary lost in fenced decode")
	}
}

func TestStageRejectsInvalidShape(t *testing.T) {
	// traits has only two entries; schema requires three.
	llm := &scriptedLLM{replies: []string{
		`{"headline": "h", "synopsis": "s", "traits": ["a", "b"], "dealbreakers": ["x", "y"], "searchVectorPrompt": "p"}`,
	}}
	stages := NewStages(llm, "m")

	_, _, err := stages.Summarize(context.Background(), SummarizeInput{})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var soe *StageOutputError
	if !errors.As(err, &soe) {
		t.Fatalf("expected StageOutputError, got %T: %v", err, err)
	}
	if soe.Stage != StageSummarize {
		t.Errorf("error should name the stage, got %q", soe.Stage)
	}
	if soe.RawOutput == "" || soe.ExpectedShape == "" {
		t.Error("error should embed raw output and expected shape")
	}
	if len(soe.Causes) == 0 {
		t.Error("error should list validation causes")
	}
}

func TestStageRejectsNonJSON(t *testing.T) {
	llm := &scriptedLLM{replies: []string{"I refuse to answer in JSON, sorry."}}
	stages := NewStages(llm, "m")

	_, _, err := stages.Feedback(context.Background(), FeedbackInput{UserFeedback: "meh"})
	if !IsStageOutputError(err) {
		t.Fatalf("expected StageOutputError, got %v", err)
	}
}

func TestStagePropagatesCallError(t *testing.T) {
	llm := &scriptedLLM{err: errors.New("503 service unavailable")}
	stages := NewStages(llm, "m")

	_, _, err := stages.Profile(context.Background(), ProfileInput{})
	if err == nil {
		t.Fatal("expected call error")
	}
	if IsStageOutputError(err) {
		t.Error("transport failure must not masquerade as output validation")
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{`{"a":1}`, `{"a":1}`, false},
		{"prose before {\"a\":1} prose after", `{"a":1}`, false},
		{"```json\n{\"a\":1}\n```", `{"a":1}`, false},
		{"no braces here", "", true},
	}
	for _, tc := range cases {
		got, err := extractJSON(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("extractJSON(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("extractJSON(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFeedbackUserReply(t *testing.T) {
	r := FeedbackResult{Acknowledgement: "Heard.", FollowUpQuestion: "Why so?"}
	if r.UserReply() != "Heard. Why so?" {
		t.Errorf("unexpected concatenation: %q", r.UserReply())
	}
}

func TestChatMessageValidate(t *testing.T) {
	for _, role := range []MessageRole{RoleSystem, RoleUser, RoleAssistant} {
		if err := (ChatMessage{Role: role, Content: "x"}).Validate(); err != nil {
			t.Errorf("role %s should validate, got %v", role, err)
		}
	}
	if err := (ChatMessage{Role: "narrator", Content: "x"}).Validate(); err == nil {
		t.Error("an unknown role should be rejected")
	}
}
