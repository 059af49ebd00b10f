package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

func TestSummaryStep_ShouldRun_RequiresDescription(t *testing.T) {
	step := SummaryStep{}
	assert.False(t, step.ShouldRun(NewContext("a.png", &model.Document{}, &model.AnalysisResult{})))
	assert.True(t, step.ShouldRun(NewContext("a.png", &model.Document{}, &model.AnalysisResult{Description: "x"})))
}

func TestSummaryStep_Process_ImageEmitsVisionRef(t *testing.T) {
	doc := &model.Document{ID: 7, MediaType: model.MediaTypeImage}
	analysis := &model.AnalysisResult{
		Description: "a dog catching a frisbee",
		Keywords:    []string{"dog", "frisbee"},
	}
	ctx := NewContext("a.png", doc, analysis)

	out, err := SummaryStep{}.Process(ctx)
	require.NoError(t, err)
	require.Len(t, out.Chunks, 1)

	c := out.Chunks[0]
	assert.Equal(t, model.ChunkTypeImageRef, c.ChunkType)
	assert.Equal(t, 0, c.ChunkIndex)
	assert.Equal(t, "a dog catching a frisbee", c.Content)
	assert.Equal(t, "summary", c.Metadata["role"])
	assert.Equal(t, "dog, frisbee", c.Metadata["_vision_keywords"])
	assert.Equal(t, 1, out.BaseIndex)
}

func TestSummaryStep_Process_AudioCarriesDurationAndParticipants(t *testing.T) {
	doc := &model.Document{ID: 9, MediaType: model.MediaTypeAudio}
	analysis := &model.AnalysisResult{
		Description:     "a team standup",
		Participants:    []string{"Alice", "Bob"},
		DurationSeconds: 90.5,
	}
	ctx := NewContext("standup.mp3", doc, analysis)

	out, err := SummaryStep{}.Process(ctx)
	require.NoError(t, err)

	c := out.Chunks[0]
	assert.Equal(t, model.ChunkTypeAudioRef, c.ChunkType)
	assert.Equal(t, "Alice, Bob", c.Metadata["_audio_participants"])
	assert.Equal(t, "90.5", c.Metadata["_audio_duration_seconds"])
}

func TestSummaryStep_Process_VideoShape(t *testing.T) {
	doc := &model.Document{ID: 1, MediaType: model.MediaTypeVideo}
	analysis := &model.AnalysisResult{Description: "a product demo"}
	ctx := NewContext("demo.mp4", doc, analysis)

	out, err := SummaryStep{}.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.ChunkTypeVideoRef, out.Chunks[0].ChunkType)
}

func TestSummaryStep_Process_AtNonZeroBaseIndex(t *testing.T) {
	doc := &model.Document{ID: 1, MediaType: model.MediaTypeImage}
	analysis := &model.AnalysisResult{Description: "x"}
	ctx := NewContext("a.png", doc, analysis).WithChunks([]*model.Chunk{{ChunkIndex: 0}})

	out, err := SummaryStep{}.Process(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Chunks[1].ChunkIndex)
}
