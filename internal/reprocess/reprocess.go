// Package reprocess implements reprocess_document and reanalyze (C15):
// re-run the media pipeline for an already-ingested image/audio/video
// document from a caller-supplied (or freshly re-analyzed) AnalysisResult,
// replacing its chunks.
package reprocess

import (
	"context"

	"github.com/Aman-CERP/knowledgeengine/internal/embed"
	"github.com/Aman-CERP/knowledgeengine/internal/enrich"
	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
	"github.com/Aman-CERP/knowledgeengine/internal/media"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
	"github.com/Aman-CERP/knowledgeengine/internal/pipeline"
)

// docStore is the subset of *store.Store the service needs.
type docStore interface {
	GetDocument(ctx context.Context, id int64) (*model.Document, error)
	SaveChunks(ctx context.Context, documentID int64, chunks []*model.Chunk) error
	DeleteChunksByRole(ctx context.Context, documentID int64, role model.Role) error
}

// Service reprocesses a media document's chunks from a fresh analysis.
type Service struct {
	Store    docStore
	Pipeline *pipeline.Pipeline
	Enricher enrich.Strategy
	Embedder embed.Embedder
	Analyzer media.Analyzer // required only by Reanalyze
}

var reprocessableRoles = []model.Role{model.RoleSummary, model.RoleTranscript, model.RoleOCR}

// ReprocessDocument loads documentID, validates its media type, optionally
// clears its existing summary/transcript/ocr chunks, re-runs the media
// pipeline over analysis, and embeds and saves the resulting chunks.
// The media_tasks queue is never consulted: media_path always comes from
// document.Metadata["source"], the single source of truth.
func (s *Service) ReprocessDocument(ctx context.Context, documentID int64, analysis *model.AnalysisResult, deleteOldChunks bool) (int64, error) {
	doc, err := s.Store.GetDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if !isMedia(doc.MediaType) {
		return 0, errdefs.NewStoreError(errdefs.SubkindInvalidState, "document is not image/audio/video", nil)
	}

	mediaPath := doc.Metadata["source"]
	if mediaPath == "" {
		return 0, errdefs.NewConfigError("document.metadata.source is required to reprocess", nil)
	}
	doc.MediaPath = mediaPath

	if deleteOldChunks {
		for _, role := range reprocessableRoles {
			if err := s.Store.DeleteChunksByRole(ctx, documentID, role); err != nil {
				return 0, err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return 0, errdefs.NewCancelled("reprocess cancelled before pipeline run")
	}

	pctx, err := s.Pipeline.Run(pipeline.NewContext(mediaPath, doc, analysis))
	if err != nil {
		return 0, err
	}

	if err := s.embedChunks(ctx, doc, pctx.Chunks); err != nil {
		return 0, err
	}
	if err := s.Store.SaveChunks(ctx, documentID, pctx.Chunks); err != nil {
		return 0, err
	}
	return documentID, nil
}

// Reanalyze calls the analyzer anew, optionally steered by customInstructions,
// then delegates to ReprocessDocument with delete_old_chunks=true.
func (s *Service) Reanalyze(ctx context.Context, documentID int64, customInstructions string) (int64, error) {
	if s.Analyzer == nil {
		return 0, errdefs.NewConfigError("reanalyze requires an analyzer", nil)
	}
	doc, err := s.Store.GetDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	if !isMedia(doc.MediaType) {
		return 0, errdefs.NewStoreError(errdefs.SubkindInvalidState, "document is not image/audio/video", nil)
	}
	mediaPath := doc.Metadata["source"]
	if mediaPath == "" {
		return 0, errdefs.NewConfigError("document.metadata.source is required to reanalyze", nil)
	}

	analysis, err := s.Analyzer.Analyze(ctx, mediaPath, doc.MediaType, media.AnalyzeOptions{CustomInstructions: customInstructions})
	if err != nil {
		return 0, err
	}
	return s.ReprocessDocument(ctx, documentID, analysis, true)
}

func (s *Service) embedChunks(ctx context.Context, doc *model.Document, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	inputs := make([]string, len(chunks))
	for i, c := range chunks {
		c.EmbeddingInput = s.Enricher.Enrich(doc, c)
		inputs[i] = c.EmbeddingInput
	}
	vectors, err := s.Embedder.EmbedBatch(ctx, inputs)
	if err != nil {
		return err
	}
	for i, v := range vectors {
		chunks[i].Embedding = v
	}
	return nil
}

func isMedia(mt model.MediaType) bool {
	return mt == model.MediaTypeImage || mt == model.MediaTypeAudio || mt == model.MediaTypeVideo
}
