package models

import "fmt"

// PostState is one of the two lifecycle states a stored post can be in.
type PostState string

const (
	StatePublished PostState = "published"
	StateDraft     PostState = "draft"
)

// PostAction is a user action that moves a post between states.
type PostAction string

const (
	ActionArchive PostAction = "archive"
	ActionRestore PostAction = "restore"
)

// ParsePostAction validates a raw action name.
func ParsePostAction(raw string) (PostAction, error) {
	switch a := PostAction(raw); a {
	case ActionArchive, ActionRestore:
		return a, nil
	default:
		return "", NewValidationError(fmt.Sprintf("unknown post action %q", raw))
	}
}

// Transition returns the state reached by applying action in from.
// Archiving a draft and restoring a published post are self-loops; changed
// is false for them. Deletion is not a transition: it removes the post.
func Transition(from PostState, action PostAction) (to PostState, changed bool, err error) {
	switch action {
	case ActionArchive:
		return StateDraft, from != StateDraft, nil
	case ActionRestore:
		return StatePublished, from != StatePublished, nil
	default:
		return from, false, NewValidationError(fmt.Sprintf("unknown post action %q", action))
	}
}
