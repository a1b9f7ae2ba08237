package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewayplanning/plancheck/internal/model"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeTemp(t, "rules.json", `[
		{"id": "R1", "category": "field_required", "severity": "error", "required_fields": ["site_address"]},
		{"id": "R2", "category": "document_required", "severity": "error", "required_document_types": ["application_form"]}
	]`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, model.CategoryFieldRequired, c.ByID("R1").Category)
	assert.Equal(t, []string{"application_form"}, c.ByID("R2").RequiredDocumentTypes)
}

func TestLoad_YAML(t *testing.T) {
	path := writeTemp(t, "rules.yaml", `
- id: R1
  category: consistency
  severity: warning
  required_fields: [postcode]
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, model.CategoryConsistency, c.ByID("R1").Category)
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name  string
		rules []model.Rule
	}{
		{"missing id", []model.Rule{{Category: model.CategoryFieldRequired, Severity: model.SeverityError}}},
		{"duplicate id", []model.Rule{
			{ID: "R1", Category: model.CategoryFieldRequired, Severity: model.SeverityError},
			{ID: "R1", Category: model.CategoryFieldRequired, Severity: model.SeverityError},
		}},
		{"missing category", []model.Rule{{ID: "R1", Severity: model.SeverityError}}},
		{"missing severity", []model.Rule{{ID: "R1", Category: model.CategoryFieldRequired}}},
		{"bad severity", []model.Rule{{ID: "R1", Category: model.CategoryFieldRequired, Severity: "critical"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.rules)
			require.Error(t, err)
			var catErr *Error
			assert.ErrorAs(t, err, &catErr)
		})
	}
}

func TestBuild_UnknownCategoryDefaultsToFieldRequired(t *testing.T) {
	c, err := Build([]model.Rule{
		{ID: "R1", Category: "biodiversity", Severity: model.SeverityWarning},
	})
	require.NoError(t, err)
	assert.Equal(t, model.CategoryFieldRequired, c.ByID("R1").Category)
}

func TestCatalog_RoundTrip(t *testing.T) {
	orig := Fixture()

	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, Save(orig, path))

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, orig.Len(), reloaded.Len())

	for _, r := range orig.Rules {
		got := reloaded.ByID(r.ID)
		require.NotNil(t, got, "rule %s lost in round trip", r.ID)
		assert.Equal(t, r.Category, got.Category)
		assert.Equal(t, r.Severity, got.Severity)
		assert.Equal(t, r.RequiredFields, got.RequiredFields)
		assert.Equal(t, r.RequiredDocumentTypes, got.RequiredDocumentTypes)
	}
}

func TestCatalog_MarshalJSON(t *testing.T) {
	c, err := Build([]model.Rule{
		{ID: "R1", Category: model.CategoryFieldRequired, Severity: model.SeverityError},
	})
	require.NoError(t, err)

	data, err := json.Marshal(c)
	require.NoError(t, err)

	var rules []model.Rule
	require.NoError(t, json.Unmarshal(data, &rules))
	assert.Len(t, rules, 1)
	assert.Equal(t, "R1", rules[0].ID)
}

func TestByCategory(t *testing.T) {
	c := Fixture()
	docRules := c.ByCategory(model.CategoryDocumentRequired)
	require.Len(t, docRules, 2)
	assert.Equal(t, "DOC-01", docRules[0].ID)
}
