package pipeline

import (
	"strconv"
	"strings"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

// SummaryStep emits the single summary chunk carrying the analyzer's
// description. Keyword/participant/duration/action-item detail is carried
// in reserved metadata keys namespaced by media type (_vision_*, _audio_*,
// _video_*) so it never collides with other chunk metadata, and so the
// enrich strategy can read it back when building the embedded prompt.
type SummaryStep struct{}

func (SummaryStep) StepName() string { return "summary" }

func (SummaryStep) ShouldRun(ctx *Context) bool {
	return ctx.Analysis != nil && ctx.Analysis.Description != ""
}

func (SummaryStep) IsOptional() bool { return false }

func (SummaryStep) Process(ctx *Context) (*Context, error) {
	chunkType, prefix := summaryShape(ctx.Document.MediaType)

	meta := map[string]string{"role": string(model.RoleSummary)}
	if len(ctx.Analysis.Keywords) > 0 {
		meta[prefix+"keywords"] = strings.Join(ctx.Analysis.Keywords, ", ")
	}
	if len(ctx.Analysis.Participants) > 0 {
		meta[prefix+"participants"] = strings.Join(ctx.Analysis.Participants, ", ")
	}
	if ctx.Analysis.DurationSeconds > 0 {
		meta[prefix+"duration_seconds"] = strconv.FormatFloat(ctx.Analysis.DurationSeconds, 'f', -1, 64)
	}
	if len(ctx.Analysis.ActionItems) > 0 {
		meta[prefix+"action_items"] = strings.Join(ctx.Analysis.ActionItems, "; ")
	}
	if ctx.Analysis.AltText != "" {
		meta[prefix+"alt_text"] = ctx.Analysis.AltText
	}
	if ctx.Analysis.Type != "" {
		meta[prefix+"source_type"] = string(ctx.Analysis.Type)
	}

	chunk := &model.Chunk{
		DocumentID: ctx.Document.ID,
		ChunkIndex: ctx.BaseIndex,
		ChunkType:  chunkType,
		Content:    ctx.Analysis.Description,
		Metadata:   meta,
	}

	return ctx.WithChunks([]*model.Chunk{chunk}), nil
}

// summaryShape maps a document's media type to the chunk type and reserved
// metadata prefix the summary chunk carries.
func summaryShape(mt model.MediaType) (model.ChunkType, string) {
	switch mt {
	case model.MediaTypeAudio:
		return model.ChunkTypeAudioRef, "_audio_"
	case model.MediaTypeVideo:
		return model.ChunkTypeVideoRef, "_video_"
	default:
		return model.ChunkTypeImageRef, "_vision_"
	}
}
