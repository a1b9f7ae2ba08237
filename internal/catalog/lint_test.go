package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLintReportsAllIssues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	raw := `[
		{"id": "R-1", "category": "field_required", "severity": "error", "required_fields": ["site_address"], "description": "ok"},
		{"id": "R-1", "category": "field_required", "severity": "error", "required_fields": ["postcode"], "description": "dup"},
		{"id": "R-2", "category": "telepathy", "severity": "error", "required_fields": ["x"], "description": "odd category"},
		{"id": "R-3", "category": "field_required", "severity": "fatal", "required_fields": ["x"], "description": "bad severity"},
		{"id": "R-4", "category": "field_required", "severity": "error", "description": ""},
		{"category": "field_required", "severity": "error"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	issues, err := Lint(path)
	require.NoError(t, err)

	byReason := make(map[string]Issue)
	for _, i := range issues {
		byReason[i.Reason] = i
	}

	assert.True(t, byReason["duplicate id"].Fatal)
	assert.True(t, byReason["rule without id"].Fatal)
	assert.True(t, byReason["unrecognized severity fatal"].Fatal)
	// Unknown category is repairable, not fatal.
	unknown := byReason["unrecognized category telepathy; will default to field_required"]
	assert.False(t, unknown.Fatal)
	assert.Equal(t, "R-2", unknown.RuleID)
	// R-4 has neither keys nor description.
	assert.Contains(t, byReason, "no required fields or document types; rule can never fail")
	assert.Contains(t, byReason, "missing description")
}

func TestLintCleanCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, Save(Fixture(), path))

	issues, err := Lint(path)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestLintUnparseable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\t not yaml"), 0o644))

	_, err := Lint(path)
	assert.Error(t, err)
}
