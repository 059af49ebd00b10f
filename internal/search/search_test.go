package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
	"github.com/Aman-CERP/knowledgeengine/internal/store"
)

type staticEmbedder struct {
	vec []float32
}

func (s *staticEmbedder) Embed(_ context.Context, _ string) ([]float32, error) { return s.vec, nil }
func (s *staticEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vec
	}
	return out, nil
}
func (s *staticEmbedder) Dimensions() int        { return len(s.vec) }
func (s *staticEmbedder) ModelName() string      { return "static" }
func (s *staticEmbedder) Available(context.Context) bool { return true }
func (s *staticEmbedder) Close() error            { return nil }
func (s *staticEmbedder) SetBatchIndex(int)       {}
func (s *staticEmbedder) SetFinalBatch(bool)      {}

type fakeSearcher struct {
	lastOpts store.SearchOptions
	results  []model.ChunkResult
	err      error
}

func (f *fakeSearcher) SearchChunks(_ context.Context, opts store.SearchOptions) ([]model.ChunkResult, error) {
	f.lastOpts = opts
	return f.results, f.err
}

func TestFacade_SearchChunks_EmbedsQueryForVectorMode(t *testing.T) {
	emb := &staticEmbedder{vec: []float32{1, 0, 0}}
	fs := &fakeSearcher{results: []model.ChunkResult{
		{Chunk: &model.Chunk{ID: 1, Content: "alpha"}},
	}}
	f := &Facade{Embedder: emb, Store: fs}

	out, err := f.SearchChunks(context.Background(), "alpha query", Options{Mode: store.SearchModeVector, TopK: 5})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []float32{1, 0, 0}, fs.lastOpts.QueryEmbedding)
}

func TestFacade_SearchChunks_FTSModeSkipsEmbedding(t *testing.T) {
	fs := &fakeSearcher{results: []model.ChunkResult{{Chunk: &model.Chunk{ID: 1}}}}
	f := &Facade{Store: fs}

	_, err := f.SearchChunks(context.Background(), "fox", Options{Mode: store.SearchModeFTS, TopK: 5})
	require.NoError(t, err)
	assert.Nil(t, fs.lastOpts.QueryEmbedding)
	assert.Equal(t, "fox", fs.lastOpts.Query)
}

func TestFacade_SearchChunks_VectorModeWithoutEmbedderErrors(t *testing.T) {
	f := &Facade{Store: &fakeSearcher{}}
	_, err := f.SearchChunks(context.Background(), "q", Options{Mode: store.SearchModeVector})
	assert.Error(t, err)
}

func TestFacade_SearchChunks_AppliesChunkTypeFilter(t *testing.T) {
	fs := &fakeSearcher{results: []model.ChunkResult{
		{Chunk: &model.Chunk{ID: 1, ChunkType: model.ChunkTypeText}},
		{Chunk: &model.Chunk{ID: 2, ChunkType: model.ChunkTypeCode}},
	}}
	f := &Facade{Store: fs}

	out, err := f.SearchChunks(context.Background(), "q", Options{Mode: store.SearchModeFTS, ChunkTypeFilter: model.ChunkTypeCode})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].Chunk.ID)
}

func TestFacade_SearchChunks_AppliesLanguageFilter(t *testing.T) {
	fs := &fakeSearcher{results: []model.ChunkResult{
		{Chunk: &model.Chunk{ID: 1, ChunkType: model.ChunkTypeCode, Language: "go"}},
		{Chunk: &model.Chunk{ID: 2, ChunkType: model.ChunkTypeCode, Language: "python"}},
	}}
	f := &Facade{Store: fs}

	out, err := f.SearchChunks(context.Background(), "q", Options{Mode: store.SearchModeFTS, LanguageFilter: "python"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].Chunk.ID)
}

func TestFacade_SearchChunks_PropagatesStoreError(t *testing.T) {
	fs := &fakeSearcher{err: assert.AnError}
	f := &Facade{Store: fs}
	_, err := f.SearchChunks(context.Background(), "q", Options{Mode: store.SearchModeFTS})
	assert.Error(t, err)
}
