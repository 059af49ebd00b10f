package pipeline

import (
	"strconv"
	"strings"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
	"github.com/Aman-CERP/knowledgeengine/internal/splitter"
)

// TranscriptionStep wraps analysis.Transcription as a synthetic text
// document and splits it with the shared splitter, stamping each resulting
// chunk with its role, the media file it transcribes, and a best-effort
// start_seconds derived from inline [MM:SS]/[HH:MM:SS] timecodes.
type TranscriptionStep struct {
	Splitter *splitter.Splitter
}

func (TranscriptionStep) StepName() string { return "transcription" }

func (TranscriptionStep) ShouldRun(ctx *Context) bool {
	return ctx.Analysis != nil && ctx.Analysis.Transcription != ""
}

func (TranscriptionStep) IsOptional() bool { return true }

func (t TranscriptionStep) Process(ctx *Context) (*Context, error) {
	segments := transcriptSegments(ctx.Analysis.Transcription)
	chunks := t.Splitter.Split(ctx.Document.ID, segments)
	stampTimecodes(chunks, ctx.Analysis.DurationSeconds)

	for i, c := range chunks {
		c.ChunkIndex = ctx.BaseIndex + i
		if c.Metadata == nil {
			c.Metadata = map[string]string{}
		}
		c.Metadata["role"] = string(model.RoleTranscript)
		c.Metadata["parent_media_path"] = ctx.MediaPath
	}

	return ctx.WithChunks(chunks), nil
}

func transcriptSegments(transcription string) []model.Segment {
	lines := strings.Split(strings.TrimSpace(transcription), "\n")
	segments := make([]model.Segment, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		segments = append(segments, model.Segment{Type: model.ChunkTypeTranscript, Content: line})
	}
	return segments
}

// stampTimecodes assigns metadata.start_seconds to each chunk: a timecode
// parsed from its content when present and not beyond duration, or the
// last known value plus a proportional share (duration/len(chunks)) of the
// total runtime otherwise.
func stampTimecodes(chunks []*model.Chunk, duration float64) {
	if len(chunks) == 0 {
		return
	}

	step := 0.0
	if duration > 0 {
		step = duration / float64(len(chunks))
	}

	last := 0.0
	for _, c := range chunks {
		if secs, ok := findTimecode(c.Content); ok && (duration <= 0 || secs <= duration) {
			last = secs
		} else {
			last += step
		}
		if c.Metadata == nil {
			c.Metadata = map[string]string{}
		}
		c.Metadata["start_seconds"] = strconv.FormatFloat(last, 'f', -1, 64)
	}
}
