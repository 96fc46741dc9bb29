package writing

import (
	"fmt"
	"strings"
)

// SystemInstruction: постоянная персона модели, не зависит от запроса.
const SystemInstruction = `You are a highly experienced English Educator in an Indian school with over 20 years of experience teaching CBSE and ICSE boards.
Your mastery includes Essay writing, Paragraph writing, Report writing, and Notice writing.
Your writing style is:
1. Simple, clear, and easy-to-understand English.
2. Grammatically impeccable but avoiding overly complex vocabulary.
3. Culturally relevant to the Indian context (e.g., mentioning Indian schools, festivals, social issues).
4. Strictly following standard board formats:
   - NOTICE: Box format, School Name, NOTICE, Date, Heading, Body, Name/Designation.
   - REPORT: Headline, Byline (By [Name]), Date & Place, three paragraphs (Intro, Details, Conclusion).
   - ESSAY: Clear Introduction, 2-3 body paragraphs, and a strong Conclusion.
   - PARAGRAPH: A single cohesive block of text focusing on one idea.

Return the response in JSON format.`

const (
	responseDescription = "A writing piece with teacher tips for the student."
	contentDescription  = "The formatted writing piece."
	tipsDescription     = "3 helpful tips from an Indian teacher's perspective."
)

// Prompt builds the user prompt for one request.
func Prompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a %s on the topic: %q.\n", req.Format, req.Topic)
	fmt.Fprintf(&b, "The target audience is students of %s level.\n", req.Grade.Label())
	fmt.Fprintf(&b, "The piece should be about %d words long.\n", req.WordCount)
	fmt.Fprintf(&b, "Keep the language simple, simplify difficult vocabulary, and follow the standard Indian school board format for %s: %s\n",
		req.Format, req.Format.Layout())
	fmt.Fprintf(&b, "Also provide exactly %d specific 'Teacher Tips' to help the student improve this piece of writing.", TipsCount)
	return b.String()
}

// ResponseSchema: JSON Schema ожидаемого ответа (для провайдеров со structured output).
// Это подсказка провайдеру, ответ всё равно проверяется в DecodeResponse.
func ResponseSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"content": map[string]any{
				"type":        "string",
				"description": contentDescription,
			},
			"teacherTips": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": tipsDescription,
			},
		},
		"required":             []string{"content", "teacherTips"},
		"additionalProperties": false,
	}
}

// ResponseDescription, ContentDescription and TipsDescription are reused by
// engines that describe the schema in their own types.
func ResponseDescription() string { return responseDescription }
func ContentDescription() string  { return contentDescription }
func TipsDescription() string     { return tipsDescription }
