package validate

import (
	"github.com/gatewayplanning/plancheck/internal/model"
)

// Config holds the thresholds the validators consult.
type Config struct {
	// ConfidenceThreshold is the minimum extraction confidence below which
	// a present required field is flagged needs_review instead of pass.
	ConfidenceThreshold float64
}

// SubmissionContext bundles everything validators may read for one
// submission: its fields (indexed by key), documents, and — for
// modification rules — the changeset against its parent. Validators treat
// the context as read-only; it is safe to share across goroutines.
type SubmissionContext struct {
	Submission *model.Submission
	ChangeSet  *model.ChangeSet
	Ownership  model.Ownership
	Config     Config

	fieldsByKey map[string][]model.Field
	docTypes    map[string]bool
}

// NewSubmissionContext indexes a submission for validation. changeset may
// be nil for initial (V0) submissions.
func NewSubmissionContext(sub *model.Submission, cs *model.ChangeSet, own model.Ownership, cfg Config) *SubmissionContext {
	return &SubmissionContext{
		Submission:  sub,
		ChangeSet:   cs,
		Ownership:   own,
		Config:      cfg,
		fieldsByKey: model.FieldsByKey(sub.Fields),
		docTypes:    sub.DocumentTypes(),
	}
}

// FieldsFor returns every extraction of the given logical field, across
// all source documents.
func (c *SubmissionContext) FieldsFor(key string) []model.Field {
	return c.fieldsByKey[key]
}

// DocumentTypes returns the set of document types present.
func (c *SubmissionContext) DocumentTypes() map[string]bool {
	return c.docTypes
}

// HasDocumentType reports whether the submission contains a document of
// the given type.
func (c *SubmissionContext) HasDocumentType(t string) bool {
	return c.docTypes[t]
}
