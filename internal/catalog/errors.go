package catalog

import "fmt"

// Error reports a malformed or ambiguous rule catalog. It is fatal: a run
// aborts before any finding is produced when the catalog cannot be trusted.
type Error struct {
	RuleID string
	Reason string
}

func (e *Error) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("catalog: %s", e.Reason)
	}
	return fmt.Sprintf("catalog: rule %s: %s", e.RuleID, e.Reason)
}
