package model

// Category identifies a rule's evaluation strategy. The set is closed:
// unknown categories are rejected (or defaulted) at catalog load, never at
// dispatch time.
type Category string

const (
	CategoryFieldRequired    Category = "field_required"
	CategoryDocumentRequired Category = "document_required"
	CategoryConsistency      Category = "consistency"
	CategoryModification     Category = "modification"
	CategorySpatial          Category = "spatial"
)

// Categories lists all recognized rule categories.
var Categories = []Category{
	CategoryFieldRequired,
	CategoryDocumentRequired,
	CategoryConsistency,
	CategoryModification,
	CategorySpatial,
}

// Valid reports whether c is a recognized category.
func (c Category) Valid() bool {
	for _, k := range Categories {
		if c == k {
			return true
		}
	}
	return false
}

// Severity classifies how a failed rule affects a submission.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Valid reports whether s is a recognized severity.
func (s Severity) Valid() bool {
	return s == SeverityError || s == SeverityWarning
}

// Rule is one entry in the rule catalog. Rules are immutable once loaded;
// the catalog is versioned as a whole and replaced wholesale on reload.
type Rule struct {
	ID                    string   `json:"id" yaml:"id"`
	Category              Category `json:"category" yaml:"category"`
	Severity              Severity `json:"severity" yaml:"severity"`
	RequiredFields        []string `json:"required_fields,omitempty" yaml:"required_fields,omitempty"`
	RequiredDocumentTypes []string `json:"required_document_types,omitempty" yaml:"required_document_types,omitempty"`
	Description           string   `json:"description,omitempty" yaml:"description,omitempty"`
}

// Keys returns the union of the rule's required field and document keys.
// Used by the delta engine to decide whether a changeset impacts this rule.
func (r Rule) Keys() []string {
	keys := make([]string, 0, len(r.RequiredFields)+len(r.RequiredDocumentTypes))
	keys = append(keys, r.RequiredFields...)
	keys = append(keys, r.RequiredDocumentTypes...)
	return keys
}
