// Package prompts holds the versioned prompt texts for every generation
// stage, so prompt wording can evolve without touching stage code.
package prompts

// Version identifies a revision of a prompt.
type Version string

const (
	// V1 is the first version of prompts.
	V1 Version = "1.0.0"
	// V2 is the second version (for future use).
	V2 Version = "2.0.0"
)

// Prompt is a versioned prompt with metadata.
type Prompt struct {
	ID          string   // Unique identifier (e.g., "interview", "summarize.task")
	Version     Version  // Version of this prompt
	Content     string   // The actual prompt text
	Description string   // Human-readable description
	Tags        []string // Tags for categorization (e.g., ["persona", "json"])
	Deprecated  bool     // True if this version is deprecated
}
