package model

// BoundingBox is a rectangular region on a document page, in page
// coordinate units as produced by the layout extractor.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Evidence locates where a field value (or finding) came from in a source
// document. Evidence is owned by the document that produced it; fields and
// findings reference it, they never copy it wholesale.
type Evidence struct {
	Page       int          `json:"page"`
	Snippet    string       `json:"snippet"`
	BBox       *BoundingBox `json:"bbox,omitempty"`
	Confidence float64      `json:"confidence"`
}

// EvidenceRef is a lightweight pointer from a Finding back to the evidence
// supporting it: the owning document plus enough location to re-find it.
type EvidenceRef struct {
	DocumentID string `json:"document_id"`
	FieldKey   string `json:"field_key,omitempty"`
	Page       int    `json:"page,omitempty"`
}

// Field is one logical extracted datum, e.g. site_address. Multiple Field
// instances may share a key when the same logical field was extracted from
// more than one document; uniqueness is per (submission, key, source doc).
type Field struct {
	Key              string     `json:"key"`
	Value            any        `json:"value"`
	Unit             string     `json:"unit,omitempty"`
	Confidence       float64    `json:"confidence"`
	SourceDocumentID string     `json:"source_document_id"`
	Evidence         []Evidence `json:"evidence,omitempty"`
	// Source marks how the field was produced: "extraction" (default) or
	// "llm" for advisory values merged back from a gate-triggered call.
	Source string `json:"source,omitempty"`
}

// FieldSourceLLM marks fields merged from a language-model resolution.
// Such fields are advisory until the next explicit validation pass.
const FieldSourceLLM = "llm"

// EvidenceRefs returns references to all of the field's evidence.
func (f Field) EvidenceRefs() []EvidenceRef {
	refs := make([]EvidenceRef, 0, len(f.Evidence))
	for _, ev := range f.Evidence {
		refs = append(refs, EvidenceRef{
			DocumentID: f.SourceDocumentID,
			FieldKey:   f.Key,
			Page:       ev.Page,
		})
	}
	if len(refs) == 0 {
		refs = append(refs, EvidenceRef{DocumentID: f.SourceDocumentID, FieldKey: f.Key})
	}
	return refs
}

// FieldsByKey groups fields by key, preserving input order within a key.
func FieldsByKey(fields []Field) map[string][]Field {
	out := make(map[string][]Field, len(fields))
	for _, f := range fields {
		out[f.Key] = append(out[f.Key], f)
	}
	return out
}
