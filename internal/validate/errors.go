package validate

import "fmt"

// MissingContextError reports that a validator's required context is
// absent — for example the parent changeset a modification rule needs. It
// is a data-quality condition the caller must see, so it surfaces as a
// fail finding rather than a crash.
type MissingContextError struct {
	RuleID string
	What   string
}

func (e *MissingContextError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("validate: missing context: %s", e.What)
	}
	return fmt.Sprintf("validate: rule %s: missing context: %s", e.RuleID, e.What)
}
