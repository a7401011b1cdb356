package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cherrish/matchmaker/internal/config"
	"github.com/cherrish/matchmaker/internal/engine"
	"github.com/cherrish/matchmaker/internal/session"
)

// Audio snippets above this size are rejected before any upload happens.
const maxAudioBytes = 15 << 20

// actionRequest is the single request shape the matchmaker endpoint
// accepts, either as a JSON body or as the "payload" field of a multipart
// form carrying an "audio" file alongside.
// supportedActions gates requests before any session is allocated; an
// unknown action must not create a session as a side effect.
var supportedActions = map[string]bool{
	"init":                   true,
	"send_message":           true,
	"confirm_summary":        true,
	"request_more_questions": true,
	"submit_feedback":        true,
	"request_new_match":      true,
	"accept_match":           true,
	"leave":                  true,
}

type actionRequest struct {
	SessionID string            `json:"sessionId"`
	Action    string            `json:"action"`
	Message   string            `json:"message,omitempty"`
	Feedback  string            `json:"feedback,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
}

func (s *Server) handleAction(c *gin.Context) {
	req, audio, audioName, err := parseActionRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "bad_request"})
		return
	}
	if req.Action == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action is required", "code": "missing_input"})
		return
	}
	if !supportedActions[req.Action] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("unsupported action: %s", req.Action),
			"code":  "unsupported_action",
		})
		return
	}

	machine, _ := s.store.GetOrCreate(req.SessionID)
	if len(req.Filters) > 0 {
		machine.MergeFilters(req.Filters)
	}

	ctx := c.Request.Context()
	var snap session.Snapshot

	switch req.Action {
	case "init":
		snap, err = machine.Init(ctx)
	case "send_message":
		snap, err = machine.SendMessage(ctx, req.Message, audio, audioName)
	case "confirm_summary":
		snap, err = machine.ConfirmSummary(ctx)
	case "request_more_questions":
		snap, err = machine.RequestMoreQuestions(ctx)
	case "submit_feedback":
		feedback := req.Feedback
		if feedback == "" {
			feedback = req.Message
		}
		snap, err = machine.SubmitFeedback(ctx, feedback)
	case "request_new_match":
		snap, err = machine.RequestNewMatch(ctx)
	case "accept_match":
		snap, err = machine.AcceptMatch(ctx)
	case "leave":
		snap, err = machine.Leave(ctx)
	}

	if err != nil {
		writeActionError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

// parseActionRequest decodes either shape of the request. Multipart is only
// used by clients sending voice snippets.
func parseActionRequest(c *gin.Context) (actionRequest, []byte, string, error) {
	var req actionRequest

	contentType := c.GetHeader("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, "", fmt.Errorf("invalid JSON body: %w", err)
		}
		return req, nil, "", nil
	}

	payload := c.PostForm("payload")
	if payload == "" {
		return req, nil, "", fmt.Errorf("multipart request is missing the payload field")
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return req, nil, "", fmt.Errorf("invalid payload JSON: %w", err)
	}

	file, err := c.FormFile("audio")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, nil, "", nil
		}
		return req, nil, "", fmt.Errorf("reading audio part: %w", err)
	}
	if file.Size > maxAudioBytes {
		return req, nil, "", fmt.Errorf("audio snippet exceeds %d bytes", maxAudioBytes)
	}

	audio, err := readMultipartFile(file)
	if err != nil {
		return req, nil, "", err
	}
	return req, audio, file.Filename, nil
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("opening audio part: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading audio part: %w", err)
	}
	return data, nil
}

// writeActionError maps machine errors onto status codes: client mistakes
// are 4xx, upstream trouble is 5xx with a code the frontend can branch on.
func writeActionError(c *gin.Context, err error) {
	var (
		illegal    *session.IllegalActionError
		missing    *session.MissingInputError
		missingKey *config.MissingKeyError
		provider   *engine.ProviderError
		exhausted  *engine.RetryExhaustedError
	)

	switch {
	case errors.As(err, &illegal):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "illegal_action"})
	case errors.As(err, &missing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "missing_input"})
	case errors.As(err, &missingKey):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error(), "code": "upstream_unconfigured"})
	case engine.IsStageOutputError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": "stage_output_invalid"})
	case errors.As(err, &provider), errors.As(err, &exhausted):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": "upstream_error"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "code": "internal"})
	}
}
