// Package conversation holds the append-only chat transcript of a session.
package conversation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Via records the input modality a turn arrived through.
type Via string

const (
	ViaText   Via = "text"
	ViaVoice  Via = "voice"
	ViaSystem Via = "system"
)

// Turn is a single message in the conversation. Turns are immutable once
// appended to a Log.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Via       Via       `json:"via"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks that the turn carries a legal role and modality.
func (t Turn) Validate() error {
	switch t.Role {
	case RoleUser, RoleAssistant:
	default:
		return fmt.Errorf("invalid turn role: %s", t.Role)
	}
	switch t.Via {
	case ViaText, ViaVoice, ViaSystem:
	default:
		return fmt.Errorf("invalid turn modality: %s", t.Via)
	}
	return nil
}

// NewTurn builds a turn with a fresh id and the current timestamp.
func NewTurn(role Role, content string, via Via) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Via:       via,
		CreatedAt: time.Now(),
	}
}
