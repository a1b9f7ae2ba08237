package delta

// Weights drives significance scoring. The specific numbers are tuned
// operationally and configurable; only their relative ordering (high-impact
// field > document replace > low-impact field) is relied on.
type Weights struct {
	Field        map[string]float64 `yaml:"field" mapstructure:"field"`
	FieldDefault float64            `yaml:"field_default" mapstructure:"field_default"`
	DocReplaced  float64            `yaml:"doc_replaced" mapstructure:"doc_replaced"`
	DocAdded     float64            `yaml:"doc_added" mapstructure:"doc_added"`
	DocRemoved   float64            `yaml:"doc_removed" mapstructure:"doc_removed"`
	Spatial      float64            `yaml:"spatial" mapstructure:"spatial"`
	// SpatialEpsilon is the minimum relative change in a spatial metric to
	// count as a delta at all, filtering floating-point noise.
	SpatialEpsilon float64 `yaml:"spatial_epsilon" mapstructure:"spatial_epsilon"`
	// Threshold is the aggregate significance at or above which the
	// changeset requires revalidation.
	Threshold float64 `yaml:"threshold" mapstructure:"threshold"`
}

// DefaultWeights returns the tuned defaults.
func DefaultWeights() Weights {
	return Weights{
		Field: map[string]float64{
			"site_address":    0.9,
			"proposed_use":    0.9,
			"building_height": 0.9,
			"postcode":        0.5,
			"applicant_name":  0.5,
		},
		FieldDefault:   0.2,
		DocReplaced:    0.6,
		DocAdded:       0.4,
		DocRemoved:     0.4,
		Spatial:        0.7,
		SpatialEpsilon: 1e-6,
		Threshold:      0.5,
	}
}

// fieldWeight returns the impact weight for a field key.
func (w Weights) fieldWeight(key string) float64 {
	if v, ok := w.Field[key]; ok {
		return v
	}
	return w.FieldDefault
}
