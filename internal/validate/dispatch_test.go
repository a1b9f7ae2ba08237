package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewayplanning/plancheck/internal/catalog"
	"github.com/gatewayplanning/plancheck/internal/model"
)

func TestRun_UnknownCategoryIsFatal(t *testing.T) {
	sub := &model.Submission{ID: "s1"}
	rules := []model.Rule{
		{ID: "R1", Category: "made_up", Severity: model.SeverityError},
	}

	_, err := Run(rules, testContext(sub))
	require.Error(t, err)
	var catErr *catalog.Error
	assert.ErrorAs(t, err, &catErr)
}

func TestRun_SummaryCounts(t *testing.T) {
	sub := &model.Submission{
		ID: "s1",
		Documents: []model.Document{
			{ID: "d1", Type: "application_form", TextCoverage: 0.8},
		},
		Fields: []model.Field{
			{Key: "site_address", Value: "4 DURLSTON GROVE", Confidence: 0.9, SourceDocumentID: "d1"},
		},
	}
	rules := []model.Rule{
		{ID: "R1", Category: model.CategoryFieldRequired, Severity: model.SeverityError,
			RequiredFields: []string{"site_address"}},
		{ID: "R2", Category: model.CategoryFieldRequired, Severity: model.SeverityError,
			RequiredFields: []string{"applicant_name"}},
		{ID: "DOC-01", Category: model.CategoryDocumentRequired, Severity: model.SeverityError,
			RequiredDocumentTypes: []string{"site_plan"}},
	}

	vr, err := Run(rules, testContext(sub))
	require.NoError(t, err)

	assert.Equal(t, 1, vr.Summary.Pass)
	assert.Equal(t, 2, vr.Summary.Fail)
	assert.Equal(t, 3, vr.Summary.Total())
	assert.Len(t, vr.Findings, 3)
	assert.NotEmpty(t, vr.RunID)
	assert.Equal(t, "s1", vr.SubmissionID)
}

func TestRun_NeedsLLMRequiresFieldOwnership(t *testing.T) {
	// applicant_name is owned by application_form, which is present:
	// the error-severity miss makes the run a gate candidate.
	owned := &model.Submission{
		ID:        "s1",
		Documents: []model.Document{{ID: "d1", Type: "application_form"}},
	}
	rules := []model.Rule{
		{ID: "R1", Category: model.CategoryFieldRequired, Severity: model.SeverityError,
			RequiredFields: []string{"applicant_name"}},
	}
	vr, err := Run(rules, testContext(owned))
	require.NoError(t, err)
	assert.True(t, vr.Summary.NeedsLLM)

	// Same miss on a site-plan-only submission: no present document type
	// owns applicant_name, so asking a model for it would be pointless.
	unowned := &model.Submission{
		ID:        "s2",
		Documents: []model.Document{{ID: "d1", Type: "site_plan"}},
	}
	vr, err = Run(rules, testContext(unowned))
	require.NoError(t, err)
	assert.False(t, vr.Summary.NeedsLLM)
}

func TestRun_WarningSeverityNeverSetsNeedsLLM(t *testing.T) {
	sub := &model.Submission{
		ID:        "s1",
		Documents: []model.Document{{ID: "d1", Type: "application_form"}},
	}
	rules := []model.Rule{
		{ID: "R3", Category: model.CategoryFieldRequired, Severity: model.SeverityWarning,
			RequiredFields: []string{"postcode"}},
	}

	vr, err := Run(rules, testContext(sub))
	require.NoError(t, err)
	assert.Equal(t, 1, vr.Summary.NeedsReview)
	assert.False(t, vr.Summary.NeedsLLM)
}

func TestRun_OrderIndependent(t *testing.T) {
	sub := &model.Submission{
		ID:        "s1",
		Documents: []model.Document{{ID: "d1", Type: "application_form"}},
		Fields: []model.Field{
			{Key: "site_address", Value: "4 DURLSTON GROVE", Confidence: 0.9, SourceDocumentID: "d1"},
		},
	}
	rules := []model.Rule{
		{ID: "R1", Category: model.CategoryFieldRequired, Severity: model.SeverityError,
			RequiredFields: []string{"site_address"}},
		{ID: "R2", Category: model.CategoryFieldRequired, Severity: model.SeverityError,
			RequiredFields: []string{"applicant_name"}},
		{ID: "DOC-01", Category: model.CategoryDocumentRequired, Severity: model.SeverityError,
			RequiredDocumentTypes: []string{"application_form"}},
	}
	reversed := []model.Rule{rules[2], rules[1], rules[0]}

	a, err := Run(rules, testContext(sub))
	require.NoError(t, err)
	b, err := Run(reversed, testContext(sub))
	require.NoError(t, err)

	assert.Equal(t, a.Summary, b.Summary)

	// Per-rule outcomes identical regardless of order.
	byID := func(vr *model.ValidationResult) map[string]model.Status {
		m := make(map[string]model.Status)
		for _, f := range vr.Findings {
			m[f.RuleID] = f.Status
		}
		return m
	}
	assert.Equal(t, byID(a), byID(b))
}

func TestRun_FixtureCatalogAgainstCompleteSubmission(t *testing.T) {
	cat := catalog.Fixture()
	sub := &model.Submission{
		ID: "s1",
		Documents: []model.Document{
			{ID: "d1", Type: "application_form", TextCoverage: 0.9},
			{ID: "d2", Type: "site_plan", TextCoverage: 0.7},
			{ID: "d3", Type: "location_plan", TextCoverage: 0.7},
		},
		Fields: []model.Field{
			{Key: "site_address", Value: "4 DURLSTON GROVE", Confidence: 0.9, SourceDocumentID: "d1"},
			{Key: "site_address", Value: "4 Durlston Grove", Confidence: 0.8, SourceDocumentID: "d2"},
			{Key: "applicant_name", Value: "J SMITH", Confidence: 0.85, SourceDocumentID: "d1"},
			{Key: "postcode", Value: "BS1 1AA", Confidence: 0.9, SourceDocumentID: "d1"},
		},
	}

	vr, err := Run(cat.Rules, testContext(sub))
	require.NoError(t, err)

	statuses := make(map[string]model.Status)
	for _, f := range vr.Findings {
		statuses[f.RuleID] = f.Status
	}

	assert.Equal(t, model.StatusPass, statuses["FLD-01"])
	assert.Equal(t, model.StatusPass, statuses["FLD-02"])
	assert.Equal(t, model.StatusPass, statuses["FLD-03"])
	assert.Equal(t, model.StatusPass, statuses["DOC-01"])
	assert.Equal(t, model.StatusPass, statuses["DOC-02"])
	assert.Equal(t, model.StatusPass, statuses["CON-01"]) // case-only difference normalizes equal
	// MOD-01 fails: V0 has no parent, and the fixture marks modification
	// rules error severity. An initial submission is simply not a
	// modification; callers run MOD rules only for Vn, n>0. The engine
	// still reports honestly when asked.
	assert.Equal(t, model.StatusFail, statuses["MOD-01"])
	assert.Equal(t, model.StatusPass, statuses["SPA-01"]) // no geometry
}
