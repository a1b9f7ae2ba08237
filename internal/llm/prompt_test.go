package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gatewayplanning/plancheck/internal/gate"
	"github.com/gatewayplanning/plancheck/internal/model"
)

func testReason() gate.Reason {
	return gate.Reason{
		SubmissionID:  "sub-001",
		DocumentType:  "application_form",
		MissingFields: []string{"postcode", "site_address"},
		RuleIDs:       []string{"FLD-01", "FLD-02"},
		Summary:       model.Summary{Pass: 5, Fail: 2, NeedsReview: 1, NeedsLLM: true},
		TextCoverage:  0.91,
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	reason := testReason()

	sys1, user1 := BuildPrompt(reason, "APPLICATION FORM\nSite: 12 High St")
	sys2, user2 := BuildPrompt(reason, "APPLICATION FORM\nSite: 12 High St")

	assert.Equal(t, sys1, sys2)
	assert.Equal(t, user1, user2)
}

func TestBuildPromptContainsReasonFields(t *testing.T) {
	_, user := BuildPrompt(testReason(), "some document text")

	assert.Contains(t, user, "sub-001")
	assert.Contains(t, user, "application_form")
	assert.Contains(t, user, "- postcode")
	assert.Contains(t, user, "- site_address")
	assert.Contains(t, user, "- FLD-01")
	assert.Contains(t, user, "- FLD-02")
	assert.Contains(t, user, "5 pass, 2 fail, 1 needs review")
	assert.Contains(t, user, "0.91")
	assert.Contains(t, user, "some document text")
}

func TestBuildPromptSystemStableAcrossReasons(t *testing.T) {
	// The system block must not vary with the reason so prompt caching
	// hits across a batch.
	sysA, _ := BuildPrompt(testReason(), "doc A")

	other := testReason()
	other.SubmissionID = "sub-002"
	other.MissingFields = []string{"applicant_name"}
	sysB, _ := BuildPrompt(other, "doc B")

	assert.Equal(t, sysA, sysB)
}

func TestBuildPromptRequestsJSONShape(t *testing.T) {
	_, user := BuildPrompt(testReason(), "")
	assert.True(t, strings.Contains(user, `"filled_fields"`))
	assert.True(t, strings.Contains(user, `"confidence"`))
	assert.True(t, strings.Contains(user, `"citations"`))
}
