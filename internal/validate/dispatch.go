package validate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gatewayplanning/plancheck/internal/catalog"
	"github.com/gatewayplanning/plancheck/internal/model"
)

// validatorFunc is the contract every category validator satisfies: a pure
// function from (rule, context) to a finding, no shared mutable state, so
// results are deterministic regardless of execution order.
type validatorFunc func(rule model.Rule, sctx *SubmissionContext) model.Finding

// validators is the static dispatch table. The category set is closed at
// load time; a category with no entry here means the catalog and the
// validators have drifted, which is fatal, not a per-rule condition.
var validators = map[model.Category]validatorFunc{
	model.CategoryFieldRequired:    validateFieldRequired,
	model.CategoryDocumentRequired: validateDocumentRequired,
	model.CategoryConsistency:      validateConsistency,
	model.CategoryModification:     validateModification,
	model.CategorySpatial:          validateSpatial,
}

// Run evaluates every rule against the context and aggregates the findings
// into a ValidationResult. One rule's evaluation panic is isolated into a
// fail finding and does not abort the remaining rules; an unknown category
// aborts the whole run with a catalog error before producing a partial
// result the caller might mistake for complete.
func Run(rules []model.Rule, sctx *SubmissionContext) (*model.ValidationResult, error) {
	for _, rule := range rules {
		if _, ok := validators[rule.Category]; !ok {
			return nil, &catalog.Error{RuleID: rule.ID, Reason: "no validator for category " + string(rule.Category)}
		}
	}

	result := &model.ValidationResult{
		RunID:        uuid.New().String(),
		SubmissionID: sctx.Submission.ID,
		Findings:     make([]model.Finding, 0, len(rules)),
		CreatedAt:    time.Now().UTC(),
	}

	for _, rule := range rules {
		result.Findings = append(result.Findings, evaluate(rule, sctx))
	}

	result.Summary = summarize(result.Findings, sctx)
	return result, nil
}

// evaluate runs one validator, converting a panic into a fail finding so a
// single bad rule cannot take down the batch.
func evaluate(rule model.Rule, sctx *SubmissionContext) (finding model.Finding) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("validate: validator panicked",
				zap.String("rule_id", rule.ID),
				zap.Any("panic", r),
			)
			finding = model.Finding{
				RuleID:   rule.ID,
				Severity: rule.Severity,
				Status:   model.StatusFail,
				Message:  fmt.Sprintf("internal error evaluating rule: %v", r),
			}
		}
	}()

	return validators[rule.Category](rule, sctx)
}

// summarize tallies findings and derives needs_llm: true when any
// error-severity finding failed (or needs review) over a field that at
// least one present document type actually owns. The ownership check stops
// the gate asking a model for fields the submitted documents could never
// contain.
func summarize(findings []model.Finding, sctx *SubmissionContext) model.Summary {
	var s model.Summary
	docTypes := sctx.DocumentTypes()

	for _, f := range findings {
		switch f.Status {
		case model.StatusPass:
			s.Pass++
		case model.StatusFail:
			s.Fail++
		case model.StatusNeedsReview:
			s.NeedsReview++
		}

		if f.Severity != model.SeverityError {
			continue
		}
		if f.Status != model.StatusFail && f.Status != model.StatusNeedsReview {
			continue
		}
		for _, key := range f.MissingFields {
			if sctx.Ownership.OwnedByAny(docTypes, key) {
				s.NeedsLLM = true
			}
		}
	}

	return s
}
