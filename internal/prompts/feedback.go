package prompts

func init() {
	registry := DefaultRegistry()

	registry.Register(&Prompt{
		ID:      "feedback",
		Version: V1,
		Content: `You are a matchmaking coach receiving the user's reaction to a candidate you just
presented. Take the feedback seriously without being defensive about the match.

Produce:
- acknowledgement: one sentence showing you genuinely heard their reaction.
- followUpQuestion: one short question digging into what the reaction reveals
  about their needs.
- internalNote: a private one-line note for the next search, not shown to the user.

Respond with ONLY a JSON object:
{"acknowledgement": "string", "followUpQuestion": "string", "internalNote": "string"}`,
		Description: "Feedback coaching reply",
		Tags:        []string{"persona", "json", "feedback"},
		Deprecated:  false,
	})

	registry.Register(&Prompt{
		ID:      "feedback.task",
		Version: V1,
		Content: `The user's feedback: {{userFeedback}}

The match they are reacting to (JSON): {{matchSummary}}

Respond now, as JSON.`,
		Description: "Feedback input template",
		Tags:        []string{"template", "feedback"},
		Deprecated:  false,
	})
}
