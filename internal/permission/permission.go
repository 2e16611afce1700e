// Package permission maps CRUD actions to role requirements and decides
// whether an actor may perform them. Denial is a reportable condition
// surfaced to the user, never a panic.
package permission

import (
	"fmt"
	"strings"
)

// Action is the enumerated CRUD action kind. The source of record for
// policies used single-letter string codes; the enumeration exists to keep
// action handling out of stringly-typed territory. ParseAction still
// accepts the legacy letters.
type Action int

const (
	ActionCreate Action = iota
	ActionRead
	ActionUpdate
	ActionDelete
)

// String returns the lower-case action name.
func (a Action) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionRead:
		return "read"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Mutating reports whether the action writes data.
func (a Action) Mutating() bool {
	return a != ActionRead
}

// ParseAction resolves an action from its name or its legacy letter code.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "create", "c":
		return ActionCreate, nil
	case "read", "r":
		return ActionRead, nil
	case "update", "u":
		return ActionUpdate, nil
	case "delete", "d":
		return ActionDelete, nil
	default:
		return 0, fmt.Errorf("unknown action %q", s)
	}
}

// DeniedError reports a permission denial. It is distinct from a not-found
// condition and carries the denied action for display.
type DeniedError struct {
	Action Action
	Reason string
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("permission denied: %s: %s", e.Action, e.Reason)
}

// Policy holds the per-resource permission configuration.
type Policy struct {
	// ReadonlyMode denies every mutating action regardless of roles.
	ReadonlyMode bool
	// Requirements maps an action to the roles allowed to perform it.
	// A missing or empty entry means the action is unrestricted.
	Requirements map[Action][]string
}

// Authorize approves or denies an action for an actor holding the given
// roles. A nil return means allowed.
func (p Policy) Authorize(action Action, roles []string) error {
	if p.ReadonlyMode && action.Mutating() {
		return &DeniedError{Action: action, Reason: "resource is read-only"}
	}
	required := p.Requirements[action]
	if len(required) == 0 {
		return nil
	}
	for _, role := range roles {
		for _, want := range required {
			if role == want {
				return nil
			}
		}
	}
	return &DeniedError{Action: action, Reason: "missing required role"}
}

// Allowed returns the per-action allow map for an actor. The list view uses
// it to decide which action buttons to render.
func (p Policy) Allowed(roles []string) map[Action]bool {
	out := make(map[Action]bool, 4)
	for _, a := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
		out[a] = p.Authorize(a, roles) == nil
	}
	return out
}
