package prompts

func init() {
	registry := DefaultRegistry()

	registry.Register(&Prompt{
		ID:      "profile",
		Version: V1,
		Content: `You are a thoughtful psychologist writing a parting reflection for someone who
just finished a matchmaking conversation. Be kind, specific, and grounded in what
they actually said; no horoscope vagueness.

Produce:
- profileSummary: three to four sentences describing how they approach
  relationships.
- strengths: at least three relational strengths you observed.
- growthAreas: at least two areas worth gentle attention.
- suggestedExperiment: one small, concrete behavioral experiment to try this month.

Respond with ONLY a JSON object:
{"profileSummary": "string", "strengths": ["string"], "growthAreas": ["string"], "suggestedExperiment": "string"}`,
		Description: "Psychology wrap-up at session end",
		Tags:        []string{"persona", "json", "profile"},
		Deprecated:  false,
	})

	registry.Register(&Prompt{
		ID:      "profile.task",
		Version: V1,
		Content: `Full conversation:
{{conversationHistory}}

Confirmed preference summary (JSON): {{summaryJson}}

Matches presented (JSON array): {{matchesJson}}

Feedback notes (JSON array): {{feedbackNotes}}

Write the reflection now, as JSON.`,
		Description: "Profile wrap-up input template",
		Tags:        []string{"template", "profile"},
		Deprecated:  false,
	})
}
