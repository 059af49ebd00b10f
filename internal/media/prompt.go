package media

import "strings"

// defaultPromptTemplates holds one base instruction per media type, each
// parameterized by {language} and an optional {custom_instructions} block.
// The model is instructed to answer with a single JSON object matching
// model.AnalysisResult's field names.
var defaultPromptTemplates = map[string]string{
	"image": `Describe this image in {language}. Respond as a single JSON object with keys:
description (string), keywords (array of strings), alt_text (string, <=125 chars).
{custom_instructions}`,
	"audio": `Transcribe and summarize this audio in {language}. Respond as a single JSON object with keys:
description (string), keywords (array of strings), transcription (string, with [MM:SS] timecodes
at natural breaks), participants (array of strings), duration_seconds (number).
{custom_instructions}`,
	"video": `Describe and transcribe this video in {language}. Respond as a single JSON object with keys:
description (string), keywords (array of strings), transcription (string, with [MM:SS] timecodes),
ocr_text (string, any on-screen text), participants (array of strings), action_items (array of
strings), duration_seconds (number).
{custom_instructions}`,
}

// buildPrompt renders the template for mediaType, substituting language and
// an optional custom-instructions block.
func buildPrompt(mediaType, language, customInstructions string) string {
	tmpl, ok := defaultPromptTemplates[mediaType]
	if !ok {
		tmpl = defaultPromptTemplates["image"]
	}
	if language == "" {
		language = "English"
	}

	instructions := ""
	if customInstructions != "" {
		instructions = "Additional instructions: " + customInstructions
	}

	out := strings.ReplaceAll(tmpl, "{language}", language)
	out = strings.ReplaceAll(out, "{custom_instructions}", instructions)
	return strings.TrimSpace(out)
}
