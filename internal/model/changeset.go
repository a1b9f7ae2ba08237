package model

import "time"

// ChangeType distinguishes the three delta passes.
type ChangeType string

const (
	ChangeFieldDelta    ChangeType = "field_delta"
	ChangeDocumentDelta ChangeType = "document_delta"
	ChangeSpatialDelta  ChangeType = "spatial_delta"
)

// ChangeKind qualifies what happened to the keyed item.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "added"
	ChangeRemoved  ChangeKind = "removed"
	ChangeChanged  ChangeKind = "changed"
	ChangeReplaced ChangeKind = "replaced"
)

// ChangeItem is one typed difference between a parent and child submission,
// with a per-item significance score in [0,1].
type ChangeItem struct {
	Type         ChangeType `json:"type"`
	Kind         ChangeKind `json:"kind"`
	Key          string     `json:"key"`
	OldValue     any        `json:"old_value,omitempty"`
	NewValue     any        `json:"new_value,omitempty"`
	Significance float64    `json:"significance"`
}

// ChangeSet is the computed diff for exactly one (parent, child) submission
// pair. Recomputed as a new ChangeSet when re-triggered, never updated in
// place. Aggregate significance is the max over item scores: one critical
// change is enough to require revalidation.
type ChangeSet struct {
	ID                 string       `json:"id"`
	ParentSubmissionID string       `json:"parent_submission_id"`
	ChildSubmissionID  string       `json:"child_submission_id"`
	Items              []ChangeItem `json:"items"`
	Significance       float64      `json:"significance"`
	RequiresValidation bool         `json:"requires_validation"`
	ComputedAt         time.Time    `json:"computed_at"`
}

// Keys returns the distinct keys touched by the changeset, in item order.
func (cs *ChangeSet) Keys() []string {
	seen := make(map[string]bool, len(cs.Items))
	var keys []string
	for _, it := range cs.Items {
		if !seen[it.Key] {
			seen[it.Key] = true
			keys = append(keys, it.Key)
		}
	}
	return keys
}
