package llm

import "fmt"

// PIIExtractionPrompt generates a strict JSON-only prompt for PII extraction
// over one chunk of document text. The prompt asks for the chunk's view of
// the document's primary identity fields (name/address/phone) plus every PII
// candidate with a free-form type label and a confidence level.
//
// The type label is deliberately unconstrained: the model may invent new PII
// categories, and downstream resolution reconciles label synonymy.
func PIIExtractionPrompt(content string) string {
	return fmt.Sprintf(`TASK: Find all personally identifiable information (PII) in the text.
OUTPUT: ONLY valid JSON. NO markdown. NO code blocks. NO backticks. NO explanations.

REQUIRED JSON STRUCTURE:
Your response MUST start with { and end with }

{
  "name": "primary person name in this text, or empty string",
  "address": "primary address in this text, or empty string",
  "phone": "primary phone number in this text, or empty string",
  "pii_candidates": [
    {
      "value": "the exact PII string as it appears in the text",
      "pii_type": "a short label for the kind of PII (e.g. SSN, Email, Date of Birth)",
      "confidence": "high, medium, or low",
      "context": "short surrounding snippet, optional"
    }
  ]
}

RULES:
1. "value" must be copied verbatim from the text.
2. "confidence" must be exactly one of: high, medium, low.
3. Use an empty "pii_candidates" array when the text contains no PII.
4. Do not include the primary name/address/phone as pii_candidates entries.
5. Respond with the JSON object only.

TEXT:
%s`, content)
}
