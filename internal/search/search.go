// Package search is the thin facade spec.md §4.9/§6 names: embed the query
// text, delegate retrieval to the store (which owns RRF fusion), and apply
// any filters the store's SearchOptions doesn't express natively. The heavy
// lifting stays in internal/store; this package only adds the query-embed
// step and the post-fusion chunk_type/language narrowing.
package search

import (
	"context"

	"github.com/Aman-CERP/knowledgeengine/internal/embed"
	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
	"github.com/Aman-CERP/knowledgeengine/internal/store"
)

// chunkSearcher is the subset of *store.Store the facade needs.
type chunkSearcher interface {
	SearchChunks(ctx context.Context, opts store.SearchOptions) ([]model.ChunkResult, error)
}

// Options parameterizes SearchChunks. Mode and TopK map straight onto
// store.SearchOptions; ChunkTypeFilter and LanguageFilter are applied by the
// facade after RRF fusion, since the store's retrieval layer doesn't know
// about either.
type Options struct {
	Mode            store.SearchMode
	TopK            int
	RRFK            int
	ChunkTypeFilter model.ChunkType // zero value: no filter
	LanguageFilter  string          // empty: no filter
}

// Facade passes the query text (for FTS/Hybrid modes) and, after embedding
// it, the query vector (for Vector/Hybrid modes) to the store and returns the
// store's fused results, narrowed by any requested filters.
type Facade struct {
	Embedder embed.Embedder
	Store    chunkSearcher
}

// SearchChunks embeds query when the mode needs a vector, calls
// store.SearchChunks, and applies Options' post-fusion filters.
func (f *Facade) SearchChunks(ctx context.Context, query string, opts Options) ([]*model.ChunkResult, error) {
	storeOpts := store.SearchOptions{
		Mode:  opts.Mode,
		Query: query,
		TopK:  opts.TopK,
		RRFK:  opts.RRFK,
	}

	if opts.Mode == store.SearchModeVector || opts.Mode == store.SearchModeHybrid {
		if f.Embedder == nil {
			return nil, errdefs.NewConfigError("vector/hybrid search requires an embedder", nil)
		}
		vec, err := f.Embedder.Embed(ctx, query)
		if err != nil {
			return nil, err
		}
		storeOpts.QueryEmbedding = vec
	}

	results, err := f.Store.SearchChunks(ctx, storeOpts)
	if err != nil {
		return nil, err
	}

	out := make([]*model.ChunkResult, 0, len(results))
	for i := range results {
		r := results[i]
		if opts.ChunkTypeFilter != "" && r.Chunk.ChunkType != opts.ChunkTypeFilter {
			continue
		}
		if opts.LanguageFilter != "" && r.Chunk.Language != opts.LanguageFilter {
			continue
		}
		out = append(out, &r)
	}
	return out, nil
}
