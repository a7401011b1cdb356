package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/cherrish/matchmaker/internal/prompts"
)

// Stages runs the five one-shot generation stages. Each call is a single
// chat completion whose reply must be a JSON object matching the stage
// schema; anything else surfaces as a *StageOutputError and nothing
// unvalidated crosses the stage boundary.
type Stages struct {
	llm   LLMClient
	model string
	opts  ChatOptions
}

// NewStages creates the stage runner for the given client and model.
func NewStages(llm LLMClient, model string) *Stages {
	return &Stages{
		llm:   llm,
		model: model,
		opts: ChatOptions{
			Temperature:     0.7,
			MaxOutputTokens: 1024,
		},
	}
}

// buildStageMessages resolves the persona prompt (system) and the task
// template (user) for a stage from the prompt registry.
func buildStageMessages(stage string, vars map[string]string) ([]ChatMessage, error) {
	registry := prompts.DefaultRegistry()

	persona, err := registry.GetLatest(stage)
	if err != nil {
		return nil, fmt.Errorf("stage %s has no persona prompt: %w", stage, err)
	}

	builder, err := prompts.NewBuilder(registry, stage+".task")
	if err != nil {
		return nil, fmt.Errorf("stage %s has no task prompt: %w", stage, err)
	}
	for key, value := range vars {
		builder.SetVariable(key, value)
	}

	msgs := []ChatMessage{
		{Role: RoleSystem, Content: persona.Content},
		{Role: RoleUser, Content: builder.Build()},
	}
	for _, msg := range msgs {
		if err := msg.Validate(); err != nil {
			return nil, fmt.Errorf("stage %s built an invalid message: %w", stage, err)
		}
	}
	return msgs, nil
}

// runStage performs one stage call: prompt assembly, chat completion, JSON
// extraction, schema validation, typed decode.
func runStage[T any](ctx context.Context, s *Stages, stage string, vars map[string]string, schema string) (T, StageMeta, error) {
	var zero T

	msgs, err := buildStageMessages(stage, vars)
	if err != nil {
		return zero, StageMeta{Stage: stage, Model: s.model}, err
	}

	start := time.Now()
	resp, err := s.llm.Chat(ctx, s.model, msgs, s.opts)
	meta := StageMeta{
		Stage:    stage,
		Model:    s.model,
		Usage:    resp.Usage,
		Duration: time.Since(start),
	}
	if err != nil {
		return zero, meta, fmt.Errorf("stage %s call failed: %w", stage, err)
	}

	raw := resp.Assistant.Content
	doc, err := extractJSON(raw)
	if err != nil {
		return zero, meta, &StageOutputError{
			Stage:         stage,
			ExpectedShape: schema,
			RawOutput:     raw,
			Causes:        []string{err.Error()},
		}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(doc),
	)
	if err != nil {
		return zero, meta, &StageOutputError{
			Stage:         stage,
			ExpectedShape: schema,
			RawOutput:     raw,
			Causes:        []string{fmt.Sprintf("schema validation failed: %v", err)},
		}
	}
	if !result.Valid() {
		causes := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			causes = append(causes, verr.String())
		}
		return zero, meta, &StageOutputError{
			Stage:         stage,
			ExpectedShape: schema,
			RawOutput:     raw,
			Causes:        causes,
		}
	}

	var out T
	if err := json.Unmarshal([]byte(doc), &out); err != nil {
		return zero, meta, &StageOutputError{
			Stage:         stage,
			ExpectedShape: schema,
			RawOutput:     raw,
			Causes:        []string{fmt.Sprintf("decode failed: %v", err)},
		}
	}

	return out, meta, nil
}

// extractJSON pulls the first JSON object out of a model reply, tolerating
// markdown code fences and surrounding prose.
func extractJSON(s string) (string, error) {
	trimmed := strings.TrimSpace(s)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("no JSON object in output")
	}

	return trimmed[start : end+1], nil
}
