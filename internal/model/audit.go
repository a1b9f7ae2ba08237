package model

import "time"

// OfficerOverride is a superseding annotation on one finding. The original
// finding is never deleted or mutated; the override exists alongside it for
// audit. Justification is mandatory.
type OfficerOverride struct {
	ID             string    `json:"id"`
	RunID          string    `json:"run_id"`
	RuleID         string    `json:"rule_id"`
	OriginalStatus Status    `json:"original_status"`
	OverrideStatus Status    `json:"override_status"`
	Justification  string    `json:"justification"`
	OfficerID      string    `json:"officer_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// FieldResolution records an officer's choice of canonical value among
// conflicting extractions of one logical field. The raw conflicting fields
// are kept untouched; the resolution is stored separately.
type FieldResolution struct {
	ID               string    `json:"id"`
	SubmissionID     string    `json:"submission_id"`
	FieldKey         string    `json:"field_key"`
	ChosenDocumentID string    `json:"chosen_document_id"`
	OfficerID        string    `json:"officer_id"`
	Notes            string    `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
