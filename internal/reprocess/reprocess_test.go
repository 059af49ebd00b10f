package reprocess

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/knowledgeengine/internal/mdparse"
	"github.com/Aman-CERP/knowledgeengine/internal/media"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
	"github.com/Aman-CERP/knowledgeengine/internal/pipeline"
	"github.com/Aman-CERP/knowledgeengine/internal/splitter"
)

type fakeDocStore struct {
	doc     *model.Document
	cleared []model.Role
	saved   []*model.Chunk
	getErr  error
}

func (f *fakeDocStore) GetDocument(_ context.Context, _ int64) (*model.Document, error) {
	return f.doc, f.getErr
}
func (f *fakeDocStore) SaveChunks(_ context.Context, _ int64, chunks []*model.Chunk) error {
	f.saved = chunks
	return nil
}
func (f *fakeDocStore) DeleteChunksByRole(_ context.Context, _ int64, role model.Role) error {
	f.cleared = append(f.cleared, role)
	return nil
}

type staticEmbedder struct{ dim int }

func (s *staticEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return make([]float32, s.dim), nil
}
func (s *staticEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, s.dim)
	}
	return out, nil
}
func (s *staticEmbedder) Dimensions() int                { return s.dim }
func (s *staticEmbedder) ModelName() string              { return "static" }
func (s *staticEmbedder) Available(context.Context) bool { return true }
func (s *staticEmbedder) Close() error                   { return nil }
func (s *staticEmbedder) SetBatchIndex(int)              {}
func (s *staticEmbedder) SetFinalBatch(bool)             {}

func newService(store *fakeDocStore) *Service {
	sp := splitter.New(splitter.Config{}, nil)
	return &Service{
		Store:    store,
		Pipeline: pipeline.New(sp, mdparse.New(), store, nil),
		Enricher: enrichNoContext{},
		Embedder: &staticEmbedder{dim: 4},
	}
}

type enrichNoContext struct{}

func (enrichNoContext) Enrich(_ *model.Document, c *model.Chunk) string { return c.Content }

func TestReprocessDocument_RejectsNonMediaDocument(t *testing.T) {
	store := &fakeDocStore{doc: &model.Document{ID: 1, MediaType: model.MediaTypeText}}
	svc := newService(store)
	_, err := svc.ReprocessDocument(context.Background(), 1, &model.AnalysisResult{}, true)
	assert.Error(t, err)
}

func TestReprocessDocument_RequiresMetadataSource(t *testing.T) {
	store := &fakeDocStore{doc: &model.Document{ID: 1, MediaType: model.MediaTypeImage, Metadata: map[string]string{}}}
	svc := newService(store)
	_, err := svc.ReprocessDocument(context.Background(), 1, &model.AnalysisResult{}, true)
	assert.Error(t, err)
}

func TestReprocessDocument_ReplacesChunksFromMetadataSource(t *testing.T) {
	store := &fakeDocStore{doc: &model.Document{
		ID: 7, MediaType: model.MediaTypeImage,
		Metadata: map[string]string{"source": "/a/b.png"},
	}}
	svc := newService(store)

	analysis := &model.AnalysisResult{Description: "a rebuilt description"}
	id, err := svc.ReprocessDocument(context.Background(), 7, analysis, true)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	require.Len(t, store.cleared, 3) // summary, transcript, ocr roles
	require.NotEmpty(t, store.saved)
	assert.Equal(t, "a rebuilt description", store.saved[0].Content)
	for _, c := range store.saved {
		assert.NotEmpty(t, c.Embedding)
	}
}

func TestReprocessDocument_PreservesOldChunksWhenNotDeleting(t *testing.T) {
	store := &fakeDocStore{doc: &model.Document{
		ID: 7, MediaType: model.MediaTypeImage,
		Metadata: map[string]string{"source": "/a/b.png"},
	}}
	svc := newService(store)

	_, err := svc.ReprocessDocument(context.Background(), 7, &model.AnalysisResult{Description: "x"}, false)
	require.NoError(t, err)
	assert.Empty(t, store.cleared)
}

func TestReanalyze_CallsAnalyzerThenDelegates(t *testing.T) {
	store := &fakeDocStore{doc: &model.Document{
		ID: 9, MediaType: model.MediaTypeImage,
		Metadata: map[string]string{"source": "/a/b.png"},
	}}
	svc := newService(store)
	svc.Analyzer = media.NewStaticAnalyzer(model.MediaTypeImage)

	id, err := svc.Reanalyze(context.Background(), 9, "focus on the whiteboard")
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)
	require.NotEmpty(t, store.saved)
}

func TestReanalyze_RequiresAnalyzer(t *testing.T) {
	store := &fakeDocStore{doc: &model.Document{ID: 1, MediaType: model.MediaTypeImage}}
	svc := newService(store)
	_, err := svc.Reanalyze(context.Background(), 1, "")
	assert.Error(t, err)
}
