package gate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// Config holds the gate's thresholds.
type Config struct {
	// CoverageThreshold is the minimum extracted-text coverage a document
	// type must show before a model call is worth the spend; a near-empty
	// OCR result cannot answer anything.
	CoverageThreshold float64
}

// Reason is the grounding context for a triggered call. The resolution
// prompt must be reproducible from the Reason alone — a hard contract that
// lets prompts be tested byte-for-byte without a live model.
type Reason struct {
	SubmissionID  string        `json:"submission_id"`
	DocumentType  string        `json:"document_type"`
	MissingFields []string      `json:"missing_fields"`
	RuleIDs       []string      `json:"rule_ids"`
	Summary       model.Summary `json:"summary"`
	TextCoverage  float64       `json:"text_coverage"`
}

// Decision is the gate's verdict for one (submission, document type) pair.
type Decision struct {
	Trigger bool   `json:"trigger"`
	Reason  Reason `json:"reason"`
	// Skipped explains a no-trigger decision for the run log.
	Skipped string `json:"skipped,omitempty"`
}

// ShouldTrigger decides whether an error finding justifies a model call.
// All four must hold: (1) some error-severity finding failed or needs
// review, (2) the missing field is owned by the given document type,
// (3) that document's text coverage clears the threshold, and (4) the
// field was not already resolved this run. Pure aside from reading the
// explicit cache; the decision never mutates the validation result.
func ShouldTrigger(sub *model.Submission, vr *model.ValidationResult, docType string, own model.Ownership, resolved *ResolvedCache, cfg Config) Decision {
	d := Decision{
		Reason: Reason{
			SubmissionID: sub.ID,
			DocumentType: docType,
			Summary:      vr.Summary,
		},
	}

	coverage, present := sub.CoverageForType(docType)
	d.Reason.TextCoverage = coverage
	if !present {
		d.Skipped = "document type not present in submission"
		return d
	}

	candidates := make(map[string][]string) // field key -> rule ids
	for _, f := range vr.Findings {
		if f.Severity != model.SeverityError {
			continue
		}
		if f.Status != model.StatusFail && f.Status != model.StatusNeedsReview {
			continue
		}
		for _, key := range f.MissingFields {
			candidates[key] = append(candidates[key], f.RuleID)
		}
	}
	if len(candidates) == 0 {
		d.Skipped = "no error-severity findings with missing fields"
		return d
	}

	var missing []string
	ruleSet := make(map[string]bool)
	for key, ruleIDs := range candidates {
		if !own.Owns(docType, key) {
			continue
		}
		if resolved != nil && resolved.Resolved(key) {
			continue
		}
		missing = append(missing, key)
		for _, id := range ruleIDs {
			ruleSet[id] = true
		}
	}
	if len(missing) == 0 {
		d.Skipped = "all candidate fields either unowned by document type or already resolved"
		return d
	}

	if coverage < cfg.CoverageThreshold {
		d.Skipped = "text coverage below threshold"
		zap.L().Info("gate: skipping low-coverage document",
			zap.String("submission", sub.ID),
			zap.String("doc_type", docType),
			zap.Float64("coverage", coverage),
			zap.Float64("threshold", cfg.CoverageThreshold),
		)
		return d
	}

	sort.Strings(missing)
	ruleIDs := make([]string, 0, len(ruleSet))
	for id := range ruleSet {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)

	d.Trigger = true
	d.Reason.MissingFields = missing
	d.Reason.RuleIDs = ruleIDs

	zap.L().Info("gate: triggering resolution",
		zap.String("submission", sub.ID),
		zap.String("doc_type", docType),
		zap.Strings("missing_fields", missing),
		zap.Strings("rules", ruleIDs),
	)

	return d
}
