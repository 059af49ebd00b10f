// Package media provides multimodal analysis of image/audio/video files,
// turning them into a structured model.AnalysisResult for the ingestion
// pipeline to fan out into chunks.
package media

import (
	"context"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

// AnalyzeOptions parameterizes a single analysis call.
type AnalyzeOptions struct {
	// Language fills the prompt template's {language} placeholder.
	Language string

	// CustomInstructions, when non-empty, is appended to the prompt as a
	// user-instructions block (used by reanalyze to steer a re-run).
	CustomInstructions string
}

// Analyzer turns a media file into a structured AnalysisResult.
type Analyzer interface {
	Analyze(ctx context.Context, mediaPath string, mediaType model.MediaType, opts AnalyzeOptions) (*model.AnalysisResult, error)
}
