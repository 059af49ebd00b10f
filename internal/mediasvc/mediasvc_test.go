package mediasvc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

type fakeChunkLister struct {
	chunks []*model.Chunk
	err    error
}

func (f *fakeChunkLister) GetChunksByDocument(_ context.Context, _ int64) ([]*model.Chunk, error) {
	return f.chunks, f.err
}

func TestGetMediaDetails_AssemblesAllRoles(t *testing.T) {
	lister := &fakeChunkLister{chunks: []*model.Chunk{
		{
			ChunkIndex: 0, ChunkType: model.ChunkTypeVideoRef, Content: "a talk about Go",
			Metadata: map[string]string{"role": "summary", "_video_keywords": "go, concurrency", "_video_duration_seconds": "165"},
		},
		{
			ChunkIndex: 2, ChunkType: model.ChunkTypeTranscript, Content: "welcome everyone",
			Metadata: map[string]string{"role": "transcript", "start_seconds": "65"},
		},
		{
			ChunkIndex: 1, ChunkType: model.ChunkTypeTranscript, Content: "hello",
			Metadata: map[string]string{"role": "transcript", "start_seconds": "10"},
		},
		{
			ChunkIndex: 4, ChunkType: model.ChunkTypeOCR, Content: "slide two",
			Metadata: map[string]string{"role": "ocr"},
		},
		{
			ChunkIndex: 3, ChunkType: model.ChunkTypeOCR, Content: "slide one",
			Metadata: map[string]string{"role": "ocr"},
		},
	}}
	svc := &Service{Store: lister}

	details, err := svc.GetMediaDetails(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "a talk about Go", details.Summary)
	assert.Equal(t, 165.0, details.Duration)
	assert.Equal(t, []string{"concurrency", "go"}, details.Keywords)

	require.Len(t, details.Transcript, 2)
	assert.Equal(t, "hello", details.Transcript[0].Content)
	assert.Equal(t, "welcome everyone", details.Transcript[1].Content)

	require.Len(t, details.OCR, 2)
	assert.Equal(t, "slide one", details.OCR[0])
	assert.Equal(t, "slide two", details.OCR[1])
}

func TestGetMediaDetails_NoChunksErrors(t *testing.T) {
	svc := &Service{Store: &fakeChunkLister{}}
	_, err := svc.GetMediaDetails(context.Background(), 1)
	assert.Error(t, err)
}

func TestGetMediaDetails_PropagatesStoreError(t *testing.T) {
	svc := &Service{Store: &fakeChunkLister{err: assert.AnError}}
	_, err := svc.GetMediaDetails(context.Background(), 1)
	assert.Error(t, err)
}
