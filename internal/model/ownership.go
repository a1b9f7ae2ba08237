package model

// Ownership maps a document type to the set of field keys that document
// type can plausibly supply. The gate and the dispatcher use it to avoid
// flagging fields a submission's documents could never contain (e.g. an
// application_ref on a site-plan-only submission).
type Ownership map[string][]string

// Owns reports whether docType is expected to supply fieldKey.
func (o Ownership) Owns(docType, fieldKey string) bool {
	for _, k := range o[docType] {
		if k == fieldKey {
			return true
		}
	}
	return false
}

// OwnedByAny reports whether any of the given document types owns fieldKey.
func (o Ownership) OwnedByAny(docTypes map[string]bool, fieldKey string) bool {
	for dt := range docTypes {
		if o.Owns(dt, fieldKey) {
			return true
		}
	}
	return false
}

// DefaultOwnership returns the field-ownership table for the standard UK
// planning document types. Overridable via configuration.
func DefaultOwnership() Ownership {
	return Ownership{
		"application_form": {
			"application_ref", "applicant_name", "agent_name",
			"site_address", "postcode", "proposed_use", "description_of_works",
		},
		"site_plan": {
			"site_address", "postcode", "site_area", "site_boundary",
		},
		"design_and_access_statement": {
			"proposed_use", "building_height", "num_storeys", "description_of_works",
		},
		"elevation_drawing": {
			"building_height", "num_storeys", "roof_type",
		},
		"location_plan": {
			"site_address", "postcode",
		},
		"heritage_statement": {
			"listed_building_ref", "conservation_area",
		},
	}
}
