package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// Load reads a rule catalog from a JSON or YAML file (by extension) and
// validates it. Returns *Error when the catalog is malformed.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: read file")
	}

	var rules []model.Rule
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &rules); err != nil {
			return nil, eris.Wrap(err, "catalog: unmarshal yaml")
		}
	default:
		if err := json.Unmarshal(data, &rules); err != nil {
			return nil, eris.Wrap(err, "catalog: unmarshal json")
		}
	}

	return Build(rules)
}

// Build validates rules and indexes them into a Catalog. Rules with an
// unrecognized category fall back to field_required with a warning — an
// explicit fallback, not a silent error. Missing id/severity or duplicate
// ids are fatal.
func Build(rules []model.Rule) (*Catalog, error) {
	seen := make(map[string]bool, len(rules))
	for i := range rules {
		r := &rules[i]
		if r.ID == "" {
			return nil, &Error{Reason: "rule without id"}
		}
		if seen[r.ID] {
			return nil, &Error{RuleID: r.ID, Reason: "duplicate id"}
		}
		seen[r.ID] = true

		if r.Category == "" {
			return nil, &Error{RuleID: r.ID, Reason: "missing category"}
		}
		if !r.Category.Valid() {
			zap.L().Warn("catalog: unrecognized category, defaulting to field_required",
				zap.String("rule_id", r.ID),
				zap.String("category", string(r.Category)),
			)
			r.Category = model.CategoryFieldRequired
		}

		if r.Severity == "" {
			return nil, &Error{RuleID: r.ID, Reason: "missing severity"}
		}
		if !r.Severity.Valid() {
			return nil, &Error{RuleID: r.ID, Reason: "unrecognized severity " + string(r.Severity)}
		}
	}

	return New(rules), nil
}

// Save writes the catalog to path as JSON. Used by the lint command's
// --normalize flag and by round-trip tests.
func Save(c *Catalog, path string) error {
	data, err := json.MarshalIndent(c.Rules, "", "  ")
	if err != nil {
		return eris.Wrap(err, "catalog: marshal rules")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrap(err, "catalog: write file")
	}
	return nil
}
