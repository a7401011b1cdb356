package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/cherrish/matchmaker/internal/engine"
	"github.com/cherrish/matchmaker/internal/matching"
	"github.com/cherrish/matchmaker/internal/session"
	"github.com/cherrish/matchmaker/internal/vectorstore"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type queuedLLM struct {
	replies []string
	calls   int
}

func (q *queuedLLM) Chat(ctx context.Context, model string, msgs []engine.ChatMessage, opts engine.ChatOptions) (engine.LLMResponse, error) {
	q.calls++
	if len(q.replies) == 0 {
		return engine.LLMResponse{}, fmt.Errorf("unexpected chat call %d", q.calls)
	}
	reply := q.replies[0]
	q.replies = q.replies[1:]
	return engine.LLMResponse{
		Assistant: engine.ChatMessage{Role: engine.RoleAssistant, Content: reply},
	}, nil
}

type stubEmbedder struct{}

func (stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{0.5}, nil
}

type stubIndex struct{}

func (stubIndex) Query(ctx context.Context, vector []float32, filter map[string]string, topK int, minScore float32) ([]vectorstore.Candidate, error) {
	return nil, nil
}

func (stubIndex) Close() error { return nil }

type stubTranscriber struct{ text string }

func (s stubTranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	return s.text, nil
}

func newTestServer(llm *queuedLLM) (*Server, *session.Store) {
	stages := engine.NewStages(llm, "test-model")
	matcher := matching.New(stubEmbedder{}, stubIndex{}, 0)
	store := session.NewStore(stages, matcher, stubTranscriber{text: "spoken words"}, session.Config{})
	return NewServer(store, nil), store
}

func postJSON(t *testing.T, srv *Server, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/matchmaker", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) session.Snapshot {
	t.Helper()
	var snap session.Snapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v (body %s)", err, w.Body.String())
	}
	return snap
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Code
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(&queuedLLM{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestInitCreatesSession(t *testing.T) {
	srv, _ := newTestServer(&queuedLLM{replies: []string{
		`{"reply": "Welcome! What are you looking for?", "readyForSummary": false}`,
	}})

	w := postJSON(t, srv, map[string]any{"action": "init"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	snap := decodeSnapshot(t, w)
	if snap.SessionID == "" {
		t.Error("expected a generated session id")
	}
	if snap.Phase != session.PhaseCollecting {
		t.Errorf("expected collecting, got %s", snap.Phase)
	}
	if !strings.Contains(snap.AgentReply, "Welcome") {
		t.Errorf("expected the greeting, got %q", snap.AgentReply)
	}
}

func TestSessionContinuity(t *testing.T) {
	srv, _ := newTestServer(&queuedLLM{replies: []string{
		`{"reply": "Hi!", "readyForSummary": false}`,
		`{"reply": "Noted.", "readyForSummary": false}`,
	}})

	first := decodeSnapshot(t, postJSON(t, srv, map[string]any{"action": "init"}))

	w := postJSON(t, srv, map[string]any{
		"action":    "send_message",
		"sessionId": first.SessionID,
		"message":   "I like museums",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	snap := decodeSnapshot(t, w)
	if snap.SessionID != first.SessionID {
		t.Errorf("session id must be stable, got %q then %q", first.SessionID, snap.SessionID)
	}
	if snap.TurnCount != 1 {
		t.Errorf("expected 1 user turn, got %d", snap.TurnCount)
	}
}

func TestUnsupportedAction(t *testing.T) {
	srv, store := newTestServer(&queuedLLM{})

	w := postJSON(t, srv, map[string]any{"action": "dance"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := decodeError(t, w); code != "unsupported_action" {
		t.Errorf("expected unsupported_action, got %q", code)
	}
	if store.Len() != 0 {
		t.Errorf("a rejected action must not allocate a session, got %d", store.Len())
	}
}

func TestEmptyMessageRejected(t *testing.T) {
	srv, _ := newTestServer(&queuedLLM{})

	w := postJSON(t, srv, map[string]any{"action": "send_message", "message": "   "})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := decodeError(t, w); code != "missing_input" {
		t.Errorf("expected missing_input, got %q", code)
	}
}

func TestIllegalActionRejected(t *testing.T) {
	srv, _ := newTestServer(&queuedLLM{})

	w := postJSON(t, srv, map[string]any{"action": "confirm_summary"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if code := decodeError(t, w); code != "illegal_action" {
		t.Errorf("expected illegal_action, got %q", code)
	}
}

func TestMultipartVoiceMessage(t *testing.T) {
	srv, _ := newTestServer(&queuedLLM{replies: []string{
		`{"reply": "Thanks for telling me!", "readyForSummary": false}`,
	}})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("payload", `{"action": "send_message"}`); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	fw, err := mw.CreateFormFile("audio", "clip.webm")
	if err != nil {
		t.Fatalf("create audio part: %v", err)
	}
	if _, err := fw.Write([]byte("fake-audio-bytes")); err != nil {
		t.Fatalf("write audio: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/matchmaker", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	snap := decodeSnapshot(t, w)
	if snap.Transcript != "spoken words" {
		t.Errorf("expected the transcript in the snapshot, got %q", snap.Transcript)
	}
}

func TestFiltersMergeFromRequest(t *testing.T) {
	srv, _ := newTestServer(&queuedLLM{replies: []string{
		`{"reply": "Hello!", "readyForSummary": false}`,
	}})

	w := postJSON(t, srv, map[string]any{
		"action":  "init",
		"filters": map[string]string{"location": "Hamburg"},
	})
	snap := decodeSnapshot(t, w)
	if snap.Filters["location"] != "Hamburg" {
		t.Errorf("request filters should override defaults, got %v", snap.Filters)
	}
	if snap.Filters["ageBracket"] != "30s" {
		t.Errorf("untouched defaults should survive, got %v", snap.Filters)
	}
}
