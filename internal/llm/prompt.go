package llm

import (
	"fmt"
	"strings"

	"github.com/gatewayplanning/plancheck/internal/gate"
)

// systemPrompt is the shared system instruction for field resolution.
const systemPrompt = `You are an expert planning-application caseworker. You are reading extracted text from a submitted planning document to locate specific fields a deterministic extractor could not find.

Rules:
- Answer ONLY from the provided document text; never invent values
- Return valid JSON for every response
- Use null for a field genuinely absent from the text
- Confidence is 0.0-1.0 based on how directly the text states the value
- Cite the page and a short verbatim snippet for every value you fill
- Fill ONLY the fields listed as missing; extra keys invalidate the response`

// BuildPrompt constructs the system and user prompts for a gate-triggered
// resolution from the gate reason and the document text. The prompt is a
// pure function of its inputs — deterministic byte-for-byte — so prompts
// are testable without a live model, and the system block is stable across
// a batch for prompt caching.
func BuildPrompt(reason gate.Reason, documentText string) (system, user string) {
	var sb strings.Builder
	sb.WriteString("Resolve the following missing fields for a planning application submission.\n\n")
	fmt.Fprintf(&sb, "Submission: %s\n", reason.SubmissionID)
	fmt.Fprintf(&sb, "Document type: %s\n", reason.DocumentType)
	fmt.Fprintf(&sb, "Text coverage: %.2f\n", reason.TextCoverage)
	fmt.Fprintf(&sb, "Validation summary: %d pass, %d fail, %d needs review\n",
		reason.Summary.Pass, reason.Summary.Fail, reason.Summary.NeedsReview)

	sb.WriteString("\nMissing fields:\n")
	for _, key := range reason.MissingFields {
		fmt.Fprintf(&sb, "- %s\n", key)
	}

	sb.WriteString("\nFailing rules:\n")
	for _, id := range reason.RuleIDs {
		fmt.Fprintf(&sb, "- %s\n", id)
	}

	sb.WriteString("\nRespond with JSON of this exact shape:\n")
	sb.WriteString(`{"filled_fields": {"<key>": <value-or-null>}, "confidence": {"<key>": <0.0-1.0>}, "citations": [{"field_key": "<key>", "page": <n>, "snippet": "<verbatim text>"}], "notes": "<free text>"}`)
	sb.WriteString("\n\n--- Document text ---\n")
	sb.WriteString(documentText)

	return systemPrompt, sb.String()
}
