package openaicompat

import (
	"fmt"
	"strings"
)

const refineSystemPrompt = `You extract complete exam questions from study documents and write answers for them.
Always keep the full question text, including every multiple choice option (A, B, C, D).
Always write an answer grounded in the document; never reply that an answer is not provided.
Return only a valid JSON array.`

func buildRefinePrompt(text, filename string) string {
	name := strings.TrimSpace(filename)
	if name == "" {
		name = "untitled"
	}
	return fmt.Sprintf(`Extract every question from the document below and answer it.

Rules:
1. Keep each question complete: the stem, all options and all sub-parts.
2. For multiple choice, answer with the correct option letter and a short explanation.
3. For open questions, answer in detail using only the document content.
4. If the document has no explicit questions, write study questions covering its key points.

Return a JSON array of objects with fields:
- question: string
- answer: string
- importance: "high" | "medium" | "low"
- topic: string
- difficulty: "easy" | "medium" | "hard"
- confidence: number from 0 to 1
No markdown, no extra keys.

Document (%s):
%s`, name, text)
}

const visionPrompt = `Transcribe all text on this page exactly as written, in reading order.
Keep question numbering and answer options on their own lines.
Return plain text only, without commentary.`
