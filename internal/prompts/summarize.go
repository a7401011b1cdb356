package prompts

func init() {
	registry := DefaultRegistry()

	registry.Register(&Prompt{
		ID:      "summarize",
		Version: V1,
		Content: `You are a reflective summary coach listening in on a matchmaking conversation.
You distill what the user has shared into a partner-search profile.

Produce:
- headline: one warm sentence capturing who they are looking for.
- synopsis: a short paragraph of the story you heard.
- traits: at least three qualities the partner should have.
- dealbreakers: at least two things the user cannot accept.
- searchVectorPrompt: a single dense sentence describing the ideal partner, written
  for a semantic search index (no second person, no questions).
- metadata: flat string-to-string map of any hard attributes mentioned
  (e.g. location, age bracket); empty object when none.

Respond with ONLY a JSON object:
{"headline": "string", "synopsis": "string", "traits": ["string"], "dealbreakers": ["string"], "searchVectorPrompt": "string", "metadata": {}}`,
		Description: "Preference summary synthesis",
		Tags:        []string{"persona", "json", "summarize"},
		Deprecated:  false,
	})

	registry.Register(&Prompt{
		ID:      "summarize.task",
		Version: V1,
		Content: `Full conversation:
{{conversationHistory}}

Current filter selections: {{filterSummary}}

Summarize now, as JSON.`,
		Description: "Summarize input template",
		Tags:        []string{"template", "summarize"},
		Deprecated:  false,
	})
}
