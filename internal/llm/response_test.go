package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewayplanning/plancheck/internal/model"
)

func TestParseResponseValid(t *testing.T) {
	raw := []byte(`{
		"filled_fields": {"postcode": "SW1A 1AA", "site_address": null},
		"confidence": {"postcode": 0.92, "site_address": 0.0},
		"citations": [{"field_key": "postcode", "page": 2, "snippet": "Postcode: SW1A 1AA"}],
		"notes": "address section partially illegible"
	}`)

	res, err := ParseResponse(raw, testReason())
	require.NoError(t, err)

	assert.Equal(t, "SW1A 1AA", res.FilledFields["postcode"])
	// Null values are stated-absent and must not survive to the merge.
	assert.NotContains(t, res.FilledFields, "site_address")
	assert.NotContains(t, res.Confidence, "site_address")
	assert.Len(t, res.Citations, 1)
}

func TestParseResponseStripsFences(t *testing.T) {
	raw := []byte("```json\n{\"filled_fields\": {\"postcode\": \"EC1A 1BB\"}, \"confidence\": {\"postcode\": 0.8}}\n```")

	res, err := ParseResponse(raw, testReason())
	require.NoError(t, err)
	assert.Equal(t, "EC1A 1BB", res.FilledFields["postcode"])
}

func TestParseResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{"filled_fields": `},
		{"missing filled_fields", `{"confidence": {}}`},
		{"unrequested key", `{"filled_fields": {"building_height": 12}, "confidence": {}}`},
		{"confidence above one", `{"filled_fields": {"postcode": "X"}, "confidence": {"postcode": 1.5}}`},
		{"confidence negative", `{"filled_fields": {"postcode": "X"}, "confidence": {"postcode": -0.1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResponse([]byte(tt.raw), testReason())
			require.Error(t, err)
			var merr *MalformedResponseError
			assert.ErrorAs(t, err, &merr)
		})
	}
}

func TestMergeAdvisoryFields(t *testing.T) {
	sub := &model.Submission{
		ID: "sub-001",
		Documents: []model.Document{
			{ID: "doc-form", Type: "application_form"},
			{ID: "doc-plan", Type: "site_plan"},
		},
		Fields: []model.Field{
			{Key: "applicant_name", Value: "J Smith", Confidence: 0.99, SourceDocumentID: "doc-form"},
		},
	}

	res := &Resolution{
		FilledFields: map[string]any{"postcode": "SW1A 1AA"},
		Confidence:   map[string]float64{"postcode": 0.92},
		Citations:    []Citation{{FieldKey: "postcode", Page: 2, Snippet: "Postcode: SW1A 1AA"}},
	}

	merged := Merge(sub, res, testReason())
	require.Len(t, merged, 1)

	f := merged[0]
	assert.Equal(t, "postcode", f.Key)
	assert.Equal(t, "SW1A 1AA", f.Value)
	assert.Equal(t, 0.92, f.Confidence)
	assert.Equal(t, model.FieldSourceLLM, f.Source)
	// Attributed to the document the gate reasoned about, not any other.
	assert.Equal(t, "doc-form", f.SourceDocumentID)
	require.Len(t, f.Evidence, 1)
	assert.Equal(t, 2, f.Evidence[0].Page)

	// Appended, never replacing deterministic extractions.
	assert.Len(t, sub.Fields, 2)
	assert.Equal(t, "applicant_name", sub.Fields[0].Key)
}

func TestMergeSkipsUnfilledKeys(t *testing.T) {
	sub := &model.Submission{ID: "sub-001"}
	res := &Resolution{FilledFields: map[string]any{}}

	merged := Merge(sub, res, testReason())
	assert.Empty(t, merged)
	assert.Empty(t, sub.Fields)
}
