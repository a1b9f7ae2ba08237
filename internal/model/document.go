package model

import "time"

// Document is one file within a submission, as produced by the external
// ingestion pipeline. ContentHash is the hash of the document bytes and is
// the identity used for delta comparison (filenames are not trusted).
type Document struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	ContentHash string `json:"content_hash"`
	BlobURI     string `json:"blob_uri,omitempty"`
	// TextCoverage is the fraction of the document the extractor produced
	// text for, in [0,1]. The LLM gate refuses to spend a call on
	// near-empty extractions.
	TextCoverage float64 `json:"text_coverage"`
	// SpatialMetrics holds named numeric measurements from drawings
	// (site_area_m2, building_height_m, ...) when the extractor found any.
	SpatialMetrics map[string]float64 `json:"spatial_metrics,omitempty"`
	// ExtractedText is the extractor's text output, carried in the
	// snapshot so a gate-triggered resolution can prompt from it without
	// re-reading the PDF.
	ExtractedText string `json:"extracted_text,omitempty"`
}

// Submission is one version (V0, V1, ...) of an application's documents.
// Versions form a linear chain: V0 has no parent, Vn references exactly one
// parent belonging to the same application.
type Submission struct {
	ID            string     `json:"id"`
	ApplicationID string     `json:"application_id"`
	Version       int        `json:"version"`
	ParentID      string     `json:"parent_id,omitempty"`
	Documents     []Document `json:"documents"`
	Fields        []Field    `json:"fields"`
	ExtractedAt   time.Time  `json:"extracted_at"`
}

// DocumentTypes returns the set of document types present in the submission.
func (s *Submission) DocumentTypes() map[string]bool {
	types := make(map[string]bool, len(s.Documents))
	for _, d := range s.Documents {
		types[d.Type] = true
	}
	return types
}

// DocumentsByHash indexes the submission's documents by content hash.
func (s *Submission) DocumentsByHash() map[string]Document {
	out := make(map[string]Document, len(s.Documents))
	for _, d := range s.Documents {
		out[d.ContentHash] = d
	}
	return out
}

// CoverageForType returns the best text coverage among documents of the
// given type, and whether any such document exists.
func (s *Submission) CoverageForType(docType string) (float64, bool) {
	best := 0.0
	found := false
	for _, d := range s.Documents {
		if d.Type != docType {
			continue
		}
		found = true
		if d.TextCoverage > best {
			best = d.TextCoverage
		}
	}
	return best, found
}

// TextForType returns the extracted text of the best-covered document of
// the given type.
func (s *Submission) TextForType(docType string) string {
	best := -1.0
	text := ""
	for _, d := range s.Documents {
		if d.Type != docType {
			continue
		}
		if d.TextCoverage > best {
			best = d.TextCoverage
			text = d.ExtractedText
		}
	}
	return text
}

// HasSpatialData reports whether any document carries spatial metrics.
func (s *Submission) HasSpatialData() bool {
	for _, d := range s.Documents {
		if len(d.SpatialMetrics) > 0 {
			return true
		}
	}
	return false
}

// SpatialMetrics merges per-document spatial metrics into one map. When two
// documents report the same metric the larger absolute value wins, so a
// revised drawing dominates a stale one.
func (s *Submission) SpatialMetricsMerged() map[string]float64 {
	out := make(map[string]float64)
	for _, d := range s.Documents {
		for k, v := range d.SpatialMetrics {
			if cur, ok := out[k]; !ok || abs(v) > abs(cur) {
				out[k] = v
			}
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
