package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/gatewayplanning/plancheck/internal/model"
)

// Issue is one problem found in a catalog file. Fatal issues would make
// Load reject the catalog; non-fatal ones are repaired or tolerated with a
// warning at load time.
type Issue struct {
	RuleID string `json:"rule_id,omitempty"`
	Reason string `json:"reason"`
	Fatal  bool   `json:"fatal"`
}

// Lint checks every rule in the file and reports all problems, unlike Load
// which stops at the first fatal one. A parse failure is returned as an
// error since nothing can be checked past it.
func Lint(path string) ([]Issue, error) {
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

	var issues []Issue
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.ID == "" {
			issues = append(issues, Issue{Reason: "rule without id", Fatal: true})
			continue
		}
		if seen[r.ID] {
			issues = append(issues, Issue{RuleID: r.ID, Reason: "duplicate id", Fatal: true})
		}
		seen[r.ID] = true

		switch {
		case r.Category == "":
			issues = append(issues, Issue{RuleID: r.ID, Reason: "missing category", Fatal: true})
		case !r.Category.Valid():
			issues = append(issues, Issue{RuleID: r.ID, Reason: "unrecognized category " + string(r.Category) + "; will default to field_required"})
		}

		switch {
		case r.Severity == "":
			issues = append(issues, Issue{RuleID: r.ID, Reason: "missing severity", Fatal: true})
		case !r.Severity.Valid():
			issues = append(issues, Issue{RuleID: r.ID, Reason: "unrecognized severity " + string(r.Severity), Fatal: true})
		}

		if len(r.Keys()) == 0 && r.Category != model.CategoryModification {
			issues = append(issues, Issue{RuleID: r.ID, Reason: "no required fields or document types; rule can never fail"})
		}
		if r.Description == "" {
			issues = append(issues, Issue{RuleID: r.ID, Reason: "missing description"})
		}
	}

	return issues, nil
}
