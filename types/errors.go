package types

import "fmt"

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("billing: validation failed for %s: %s", e.Field, e.Message)
}

// TransitionError reports a state-machine transition that is not in the
// entity's allowed (from, to) set.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e TransitionError) Error() string {
	return fmt.Sprintf("billing: invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}
