package model

import "time"

// Status is the evaluated outcome of one rule against one submission.
type Status string

const (
	StatusPass        Status = "pass"
	StatusFail        Status = "fail"
	StatusNeedsReview Status = "needs_review"
)

// Finding is the result of evaluating one rule. Findings are append-only
// per validation run: never mutated after creation, only superseded by a
// later run's findings or an explicit OfficerOverride.
type Finding struct {
	RuleID           string        `json:"rule_id"`
	Status           Status        `json:"status"`
	Severity         Severity      `json:"severity"`
	Message          string        `json:"message"`
	Evidence         []EvidenceRef `json:"evidence,omitempty"`
	MissingFields    []string      `json:"missing_fields,omitempty"`
	MissingDocuments []string      `json:"missing_documents,omitempty"`
}

// Summary tallies findings per status for one validation run.
type Summary struct {
	Pass        int  `json:"pass"`
	Fail        int  `json:"fail"`
	NeedsReview int  `json:"needs_review"`
	NeedsLLM    bool `json:"needs_llm"`
}

// Total returns the number of findings counted.
func (s Summary) Total() int {
	return s.Pass + s.Fail + s.NeedsReview
}

// ValidationResult is the ordered collection of findings for one run plus
// the derived summary. Immutable once the run (including any post-gate
// merge) completes.
type ValidationResult struct {
	RunID        string    `json:"run_id"`
	SubmissionID string    `json:"submission_id"`
	Findings     []Finding `json:"findings"`
	Summary      Summary   `json:"summary"`
	CreatedAt    time.Time `json:"created_at"`
}

// FindingsWithStatus returns the findings matching the given status,
// preserving order.
func (vr *ValidationResult) FindingsWithStatus(status Status) []Finding {
	var out []Finding
	for _, f := range vr.Findings {
		if f.Status == status {
			out = append(out, f)
		}
	}
	return out
}

// RunStatus tracks the lifecycle of a persisted validation run.
type RunStatus string

const (
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// ValidationRun is the persisted record of one validation pass: the result,
// the gate decision made for it, and any annotation from the LLM boundary
// (e.g. "llm unavailable"). Retained indefinitely as the audit trail.
type ValidationRun struct {
	ID            string            `json:"id"`
	SubmissionID  string            `json:"submission_id"`
	Status        RunStatus         `json:"status"`
	Result        *ValidationResult `json:"result,omitempty"`
	GateTriggered bool              `json:"gate_triggered"`
	GateReason    []byte            `json:"gate_reason,omitempty"`
	LLMAnnotation string            `json:"llm_annotation,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
}
