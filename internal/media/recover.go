package media

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
)

// rawAnalysis mirrors the JSON shape an analyzer model is asked to emit;
// fields map onto model.AnalysisResult after decode.
type rawAnalysis struct {
	Description     string   `json:"description"`
	Keywords        []string `json:"keywords"`
	Transcription   string   `json:"transcription"`
	OCRText         string   `json:"ocr_text"`
	AltText         string   `json:"alt_text"`
	Participants    []string `json:"participants"`
	ActionItems     []string `json:"action_items"`
	DurationSeconds float64  `json:"duration_seconds"`
}

var fencedJSONBlock = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)```")

// recoverJSON parses raw model output into rawAnalysis, trying successively
// more aggressive strategies: direct unmarshal, a light auto-repair pass,
// then extraction of the first fenced ```json block. Returns an AnalyzeError
// (SubkindSchema) if none succeed.
func recoverJSON(raw string) (*rawAnalysis, error) {
	if v, err := tryUnmarshal(raw); err == nil {
		return v, nil
	}

	if v, err := tryUnmarshal(repairJSON(raw)); err == nil {
		return v, nil
	}

	if m := fencedJSONBlock.FindStringSubmatch(raw); m != nil {
		if v, err := tryUnmarshal(m[1]); err == nil {
			return v, nil
		}
		if v, err := tryUnmarshal(repairJSON(m[1])); err == nil {
			return v, nil
		}
	}

	return nil, errdefs.NewAnalyzeError(errdefs.SubkindSchema, "analyzer response did not contain valid JSON", nil)
}

func tryUnmarshal(s string) (*rawAnalysis, error) {
	var v rawAnalysis
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

var (
	trailingComma = regexp.MustCompile(`,\s*([}\]])`)
)

// repairJSON applies a small set of common fix-ups: strips trailing commas
// before a closing brace/bracket and balances any missing closing braces.
func repairJSON(s string) string {
	s = strings.TrimSpace(s)
	s = trailingComma.ReplaceAllString(s, "$1")

	open := strings.Count(s, "{")
	close := strings.Count(s, "}")
	for i := 0; i < open-close; i++ {
		s += "}"
	}
	return s
}
