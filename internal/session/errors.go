package session

import "fmt"

// IllegalActionError reports an action attempted in a phase that does not
// permit it. It maps to a client error, never a server failure.
type IllegalActionError struct {
	Action string
	Phase  Phase
	Reason string
}

func (e *IllegalActionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("action %q is not allowed in phase %q: %s", e.Action, e.Phase, e.Reason)
	}
	return fmt.Sprintf("action %q is not allowed in phase %q", e.Action, e.Phase)
}

// MissingInputError reports a required request field that was absent or
// empty after normalization.
type MissingInputError struct {
	Field string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("missing required input: %s", e.Field)
}
