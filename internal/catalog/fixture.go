package catalog

import "github.com/gatewayplanning/plancheck/internal/model"

// Fixture returns the built-in householder-application rule set. It is the
// default catalog for the CLI when no --catalog flag is given, and the
// baseline set exercised by tests.
func Fixture() *Catalog {
	rules := []model.Rule{
		{
			ID:             "FLD-01",
			Category:       model.CategoryFieldRequired,
			Severity:       model.SeverityError,
			RequiredFields: []string{"site_address"},
			Description:    "Every application must state the site address.",
		},
		{
			ID:             "FLD-02",
			Category:       model.CategoryFieldRequired,
			Severity:       model.SeverityError,
			RequiredFields: []string{"applicant_name"},
			Description:    "Every application must name the applicant.",
		},
		{
			ID:             "FLD-03",
			Category:       model.CategoryFieldRequired,
			Severity:       model.SeverityWarning,
			RequiredFields: []string{"postcode"},
			Description:    "Site postcode should be stated.",
		},
		{
			ID:                    "DOC-01",
			Category:              model.CategoryDocumentRequired,
			Severity:              model.SeverityError,
			RequiredDocumentTypes: []string{"application_form"},
			Description:           "A completed application form is mandatory.",
		},
		{
			ID:                    "DOC-02",
			Category:              model.CategoryDocumentRequired,
			Severity:              model.SeverityError,
			RequiredDocumentTypes: []string{"site_plan", "location_plan"},
			Description:           "Site and location plans are mandatory.",
		},
		{
			ID:             "CON-01",
			Category:       model.CategoryConsistency,
			Severity:       model.SeverityWarning,
			RequiredFields: []string{"site_address"},
			Description:    "Site address must agree across documents.",
		},
		{
			ID:             "CON-02",
			Category:       model.CategoryConsistency,
			Severity:       model.SeverityWarning,
			RequiredFields: []string{"postcode"},
			Description:    "Postcode must agree across documents.",
		},
		{
			ID:          "MOD-01",
			Category:    model.CategoryModification,
			Severity:    model.SeverityError,
			Description: "A revised submission must reference its parent and show at least one change.",
		},
		{
			ID:             "SPA-01",
			Category:       model.CategorySpatial,
			Severity:       model.SeverityWarning,
			RequiredFields: []string{"site_boundary"},
			Description:    "Site boundary geometry should be checked against constraints.",
		},
	}

	c, _ := Build(rules)
	return c
}
