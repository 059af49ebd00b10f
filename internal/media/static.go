package media

import (
	"context"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

// StaticAnalyzer returns a fixed result (or a fixed error) regardless of
// input, for tests that exercise the queue/pipeline without a live model
// endpoint.
type StaticAnalyzer struct {
	Result *model.AnalysisResult
	Err    error
}

var _ Analyzer = (*StaticAnalyzer)(nil)

// NewStaticAnalyzer returns a StaticAnalyzer seeded with a plausible
// default result for the given media type.
func NewStaticAnalyzer(mediaType model.MediaType) *StaticAnalyzer {
	return &StaticAnalyzer{Result: &model.AnalysisResult{
		Type:        mediaType,
		Description: "a static test description",
		Keywords:    []string{"test", "static"},
	}}
}

func (a *StaticAnalyzer) Analyze(_ context.Context, _ string, _ model.MediaType, _ AnalyzeOptions) (*model.AnalysisResult, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	result := *a.Result
	return &result, nil
}
