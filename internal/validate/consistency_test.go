package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gatewayplanning/plancheck/internal/model"
)

func TestConsistency_AgreementPasses(t *testing.T) {
	sub := &model.Submission{
		ID: "s1",
		Fields: []model.Field{
			{Key: "postcode", Value: "BS1 1AA", SourceDocumentID: "d1"},
			{Key: "postcode", Value: "bs1 1aa", SourceDocumentID: "d2"}, // normalizes equal
		},
	}
	rule := model.Rule{ID: "CON-02", Category: model.CategoryConsistency, Severity: model.SeverityWarning,
		RequiredFields: []string{"postcode"}}

	f := validateConsistency(rule, testContext(sub))
	assert.Equal(t, model.StatusPass, f.Status)
}

func TestConsistency_ConflictIsAlwaysNeedsReview(t *testing.T) {
	sub := &model.Submission{
		ID: "s1",
		Fields: []model.Field{
			{Key: "postcode", Value: "BS1 1AA", SourceDocumentID: "d1",
				Evidence: []model.Evidence{{Page: 1, Snippet: "BS1 1AA"}}},
			{Key: "postcode", Value: "BS1 1AB", SourceDocumentID: "d2",
				Evidence: []model.Evidence{{Page: 3, Snippet: "BS1 1AB"}}},
		},
	}
	rule := model.Rule{ID: "CON-02", Category: model.CategoryConsistency, Severity: model.SeverityWarning,
		RequiredFields: []string{"postcode"}}

	f := validateConsistency(rule, testContext(sub))

	// Never pass, never fail: a conflict is not proof either value is wrong.
	assert.Equal(t, model.StatusNeedsReview, f.Status)
	// Every conflicting source appears in the evidence.
	assert.Len(t, f.Evidence, 2)
	docs := map[string]bool{}
	for _, ev := range f.Evidence {
		docs[ev.DocumentID] = true
	}
	assert.True(t, docs["d1"])
	assert.True(t, docs["d2"])
}

func TestConsistency_SeverityNeverEscalatesConflictToFail(t *testing.T) {
	// Even an error-severity consistency rule yields needs_review.
	sub := &model.Submission{
		ID: "s1",
		Fields: []model.Field{
			{Key: "site_address", Value: "4 DURLSTON GROVE", SourceDocumentID: "d1"},
			{Key: "site_address", Value: "6 DURLSTON GROVE", SourceDocumentID: "d2"},
		},
	}
	rule := model.Rule{ID: "CON-01", Category: model.CategoryConsistency, Severity: model.SeverityError,
		RequiredFields: []string{"site_address"}}

	f := validateConsistency(rule, testContext(sub))
	assert.Equal(t, model.StatusNeedsReview, f.Status)
}

func TestConsistency_SingleSourcePasses(t *testing.T) {
	sub := &model.Submission{
		ID:     "s1",
		Fields: []model.Field{{Key: "postcode", Value: "BS1 1AA", SourceDocumentID: "d1"}},
	}
	rule := model.Rule{ID: "CON-02", Category: model.CategoryConsistency, Severity: model.SeverityWarning,
		RequiredFields: []string{"postcode"}}

	f := validateConsistency(rule, testContext(sub))
	assert.Equal(t, model.StatusPass, f.Status)
}

func TestConsistency_EmptyValuesIgnored(t *testing.T) {
	sub := &model.Submission{
		ID: "s1",
		Fields: []model.Field{
			{Key: "postcode", Value: "BS1 1AA", SourceDocumentID: "d1"},
			{Key: "postcode", Value: "", SourceDocumentID: "d2"},
		},
	}
	rule := model.Rule{ID: "CON-02", Category: model.CategoryConsistency, Severity: model.SeverityWarning,
		RequiredFields: []string{"postcode"}}

	f := validateConsistency(rule, testContext(sub))
	assert.Equal(t, model.StatusPass, f.Status)
}
