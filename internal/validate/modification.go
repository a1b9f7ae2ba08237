package validate

import (
	"github.com/gatewayplanning/plancheck/internal/model"
)

// validateModification applies only to submissions that claim to revise a
// parent. It fails when the parent reference is unset, when no changeset
// exists for the (parent, this) pair, or when the changeset is empty — a
// modification must show some change. The changeset must have been
// computed and persisted before this validator runs; its absence is the
// one ordering dependency in the system and is reported explicitly rather
// than assumed away.
func validateModification(rule model.Rule, sctx *SubmissionContext) model.Finding {
	finding := model.Finding{
		RuleID:   rule.ID,
		Severity: rule.Severity,
	}

	sub := sctx.Submission

	if sub.ParentID == "" {
		finding.Status = model.StatusFail
		finding.Message = "submission declares no parent; a modification must reference the submission it revises"
		return finding
	}

	cs := sctx.ChangeSet
	if cs == nil || cs.ParentSubmissionID != sub.ParentID || cs.ChildSubmissionID != sub.ID {
		err := &MissingContextError{RuleID: rule.ID, What: "changeset for (" + sub.ParentID + ", " + sub.ID + ")"}
		finding.Status = model.StatusFail
		finding.Message = err.Error()
		return finding
	}

	if len(cs.Items) == 0 {
		finding.Status = model.StatusFail
		finding.Message = "changeset is empty; a modification must differ from its parent"
		return finding
	}

	finding.Status = model.StatusPass
	finding.Message = "modification references its parent and shows changes"
	return finding
}
