package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gatewayplanning/plancheck/internal/gate"
	"github.com/gatewayplanning/plancheck/internal/model"
)

// MalformedResponseError reports a model response that violates the
// resolution contract. The gate decision is preserved, the merge step is
// skipped, and the original finding stands.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("llm: malformed response: %s", e.Reason)
}

// Citation locates a filled value in the source document.
type Citation struct {
	FieldKey string `json:"field_key"`
	Page     int    `json:"page"`
	Snippet  string `json:"snippet"`
}

// Resolution is the validated, structured output of one resolution call.
type Resolution struct {
	FilledFields map[string]any     `json:"filled_fields"`
	Confidence   map[string]float64 `json:"confidence"`
	Citations    []Citation         `json:"citations"`
	Notes        string             `json:"notes,omitempty"`
}

// ParseResponse validates the raw model output against the gate reason
// that grounded the prompt. Filled keys must be a subset of the fields the
// reason named as missing, and confidences must lie in [0,1]. Null-valued
// fields (stated absent) are dropped rather than merged.
func ParseResponse(raw []byte, reason gate.Reason) (*Resolution, error) {
	var res Resolution
	if err := json.Unmarshal(stripFences(raw), &res); err != nil {
		return nil, &MalformedResponseError{Reason: "invalid JSON: " + err.Error()}
	}
	if res.FilledFields == nil {
		return nil, &MalformedResponseError{Reason: "filled_fields missing"}
	}

	allowed := make(map[string]bool, len(reason.MissingFields))
	for _, key := range reason.MissingFields {
		allowed[key] = true
	}

	for key, value := range res.FilledFields {
		if !allowed[key] {
			return nil, &MalformedResponseError{Reason: "filled_fields contains unrequested key " + key}
		}
		if value == nil {
			delete(res.FilledFields, key)
			delete(res.Confidence, key)
			continue
		}
		if conf, ok := res.Confidence[key]; ok && (conf < 0 || conf > 1) {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("confidence for %s out of range: %v", key, conf)}
		}
	}

	return &res, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON
// in one despite instructions.
func stripFences(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return []byte(s)
}

// Merge converts a resolution into advisory fields attributed to the
// document the gate reasoned about. The returned fields carry the llm
// source marker and the model's citations as evidence; they are appended
// to the submission's field set and remain advisory until the next
// explicit validation pass — validators are never re-run implicitly.
func Merge(sub *model.Submission, res *Resolution, reason gate.Reason) []model.Field {
	citationsByKey := make(map[string][]model.Evidence)
	for _, c := range res.Citations {
		citationsByKey[c.FieldKey] = append(citationsByKey[c.FieldKey], model.Evidence{
			Page:    c.Page,
			Snippet: c.Snippet,
		})
	}

	sourceDoc := ""
	for _, d := range sub.Documents {
		if d.Type == reason.DocumentType {
			sourceDoc = d.ID
			break
		}
	}

	fields := make([]model.Field, 0, len(res.FilledFields))
	for _, key := range reason.MissingFields {
		value, ok := res.FilledFields[key]
		if !ok {
			continue
		}
		fields = append(fields, model.Field{
			Key:              key,
			Value:            value,
			Confidence:       res.Confidence[key],
			SourceDocumentID: sourceDoc,
			Evidence:         citationsByKey[key],
			Source:           model.FieldSourceLLM,
		})
	}

	sub.Fields = append(sub.Fields, fields...)
	return fields
}
