package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/knowledgeengine/internal/mdparse"
	"github.com/Aman-CERP/knowledgeengine/internal/media"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
	"github.com/Aman-CERP/knowledgeengine/internal/pipeline"
	"github.com/Aman-CERP/knowledgeengine/internal/queue"
	"github.com/Aman-CERP/knowledgeengine/internal/splitter"
)

type fakeStore struct {
	nextID     int64
	docs       map[int64]*model.Document
	savedDoc   *model.Document
	savedChunks []*model.Chunk
	cleared    []model.Role
	enqueued   []int64
	tasks      []*model.MediaTask
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, docs: map[int64]*model.Document{}}
}

func (f *fakeStore) SaveDocument(_ context.Context, doc *model.Document) (int64, error) {
	id := f.nextID
	f.nextID++
	doc.ID = id
	f.docs[id] = doc
	f.savedDoc = doc
	return id, nil
}

func (f *fakeStore) SaveChunks(_ context.Context, _ int64, chunks []*model.Chunk) error {
	f.savedChunks = chunks
	return nil
}

func (f *fakeStore) GetDocument(_ context.Context, id int64) (*model.Document, error) {
	return f.docs[id], nil
}

func (f *fakeStore) GetChunksByDocument(_ context.Context, _ int64) ([]*model.Chunk, error) {
	return f.savedChunks, nil
}

func (f *fakeStore) DeleteChunksByRole(_ context.Context, _ int64, role model.Role) error {
	f.cleared = append(f.cleared, role)
	return nil
}

func (f *fakeStore) EnqueueMediaTask(_ context.Context, documentID int64, mediaPath string, mediaType model.MediaType) (int64, error) {
	f.enqueued = append(f.enqueued, documentID)
	f.tasks = append(f.tasks, &model.MediaTask{ID: int64(len(f.tasks) + 1), DocumentID: documentID, MediaPath: mediaPath, MediaType: mediaType})
	return int64(len(f.tasks)), nil
}
func (f *fakeStore) ClaimNextMediaTask(_ context.Context) (*model.MediaTask, error) {
	if len(f.tasks) == 0 {
		return nil, nil
	}
	t := f.tasks[0]
	f.tasks = f.tasks[1:]
	return t, nil
}
func (f *fakeStore) CompleteMediaTask(_ context.Context, _ int64) error      { return nil }
func (f *fakeStore) FailMediaTask(_ context.Context, _ int64, _ string) error { return nil }
func (f *fakeStore) ResetMediaTask(_ context.Context, _ int64) error          { return nil }
func (f *fakeStore) CountPendingMediaTasks(_ context.Context) (int, error)    { return len(f.tasks), nil }

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
func (s *staticEmbedder) SetFinalBatch(bool)              {}

type passthroughEnricher struct{}

func (passthroughEnricher) Enrich(_ *model.Document, c *model.Chunk) string { return c.Content }

func newCore(store *fakeStore) *Core {
	sp := splitter.New(splitter.Config{}, nil)
	return &Core{
		Parser:   mdparse.New(),
		Splitter: sp,
		Enricher: passthroughEnricher{},
		Embedder: &staticEmbedder{dim: 4},
		Store:    store,
		Pipeline: pipeline.New(sp, mdparse.New(), store, nil),
	}
}

func TestIngest_TextPath_ParsesSplitsEmbedsAndSaves(t *testing.T) {
	store := newFakeStore()
	core := newCore(store)

	doc := &model.Document{Source: "notes.md", MediaType: model.MediaTypeText, Content: "# Title\n\nSome body text."}
	id, err := core.Ingest(context.Background(), doc, ModeSync)
	require.NoError(t, err)
	assert.NotZero(t, id)
	require.NotEmpty(t, store.savedChunks)
	for _, c := range store.savedChunks {
		assert.NotEmpty(t, c.Embedding)
	}
}

func TestIngest_MediaPath_SyncRunsAnalyzerAndPipeline(t *testing.T) {
	store := newFakeStore()
	core := newCore(store)
	core.Analyzer = media.NewStaticAnalyzer(model.MediaTypeImage)

	doc := &model.Document{Source: "photo.png", MediaType: model.MediaTypeImage, MediaPath: "photo.png"}
	id, err := core.Ingest(context.Background(), doc, ModeSync)
	require.NoError(t, err)
	assert.NotZero(t, id)
	require.NotEmpty(t, store.savedChunks)
	assert.Equal(t, "summary", store.savedChunks[0].Metadata["role"])
}

func TestIngest_MediaPath_SyncWithoutAnalyzerErrors(t *testing.T) {
	store := newFakeStore()
	core := newCore(store)

	doc := &model.Document{Source: "photo.png", MediaType: model.MediaTypeImage, MediaPath: "photo.png"}
	_, err := core.Ingest(context.Background(), doc, ModeSync)
	assert.Error(t, err)
}

func TestIngest_MediaPath_AsyncEnqueuesWithoutAnalyzing(t *testing.T) {
	store := newFakeStore()
	core := newCore(store)
	core.Queue = queue.New(store, media.NewStaticAnalyzer(model.MediaTypeVideo), nil, core.HandleAnalyzedTask)

	doc := &model.Document{Source: "clip.mp4", MediaType: model.MediaTypeVideo, MediaPath: "clip.mp4"}
	id, err := core.Ingest(context.Background(), doc, ModeAsync)
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Empty(t, store.savedChunks) // not processed yet, only enqueued
	assert.Equal(t, []int64{id}, store.enqueued)
}

func TestIngest_MediaPath_AsyncWithoutQueueErrors(t *testing.T) {
	store := newFakeStore()
	core := newCore(store)

	doc := &model.Document{Source: "clip.mp4", MediaType: model.MediaTypeVideo, MediaPath: "clip.mp4"}
	_, err := core.Ingest(context.Background(), doc, ModeAsync)
	assert.Error(t, err)
}

func TestProcessMediaQueue_DrainsEnqueuedTask(t *testing.T) {
	store := newFakeStore()
	core := newCore(store)
	core.Queue = queue.New(store, media.NewStaticAnalyzer(model.MediaTypeVideo), nil, core.HandleAnalyzedTask)

	doc := &model.Document{Source: "clip.mp4", MediaType: model.MediaTypeVideo, MediaPath: "clip.mp4"}
	id, err := core.Ingest(context.Background(), doc, ModeAsync)
	require.NoError(t, err)

	n, err := core.ProcessMediaQueue(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NotEmpty(t, store.savedChunks)
	_ = id
}

func TestRerunStep_ReconstructsAnalysisFromExistingChunks(t *testing.T) {
	store := newFakeStore()
	core := newCore(store)
	core.Analyzer = media.NewStaticAnalyzer(model.MediaTypeImage)

	doc := &model.Document{Source: "photo.png", MediaType: model.MediaTypeImage, MediaPath: "photo.png"}
	id, err := core.Ingest(context.Background(), doc, ModeSync)
	require.NoError(t, err)

	n, err := core.RerunStep(context.Background(), "summary", id)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, store.cleared, model.RoleSummary)
}
