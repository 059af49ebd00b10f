// Package ingest wires the parser, splitter, enrichment strategy, embedder,
// media analyzer/queue/pipeline, and store into the single ingest(document)
// operation spec.md §4.9 names: resolve the path by media type, run
// parser→splitter (text) or analyzer→pipeline (media, sync) or
// analyzer→queue (media, async), enrich each chunk, embed, save (the
// document first, then its chunks in a separate write).
package ingest

import (
	"context"
	"strings"

	"github.com/Aman-CERP/knowledgeengine/internal/embed"
	"github.com/Aman-CERP/knowledgeengine/internal/enrich"
	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
	"github.com/Aman-CERP/knowledgeengine/internal/mdparse"
	"github.com/Aman-CERP/knowledgeengine/internal/media"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
	"github.com/Aman-CERP/knowledgeengine/internal/pipeline"
	"github.com/Aman-CERP/knowledgeengine/internal/queue"
	"github.com/Aman-CERP/knowledgeengine/internal/splitter"
)

// Mode selects whether Ingest analyzes and chunks a media document right
// away or defers that work to the media task queue.
type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// docStore is the subset of *store.Store the ingestion core needs.
type docStore interface {
	SaveDocument(ctx context.Context, doc *model.Document) (int64, error)
	SaveChunks(ctx context.Context, documentID int64, chunks []*model.Chunk) error
	GetDocument(ctx context.Context, id int64) (*model.Document, error)
	GetChunksByDocument(ctx context.Context, documentID int64) ([]*model.Chunk, error)
}

// Core is the single orchestration point wiring C2→C3→C4→C5→C8 for
// text/markdown documents and C9→C10/C11→C5→C8 for media.
type Core struct {
	Parser   *mdparse.Parser
	Splitter *splitter.Splitter
	Enricher enrich.Strategy
	Embedder embed.Embedder
	Store    docStore
	Pipeline *pipeline.Pipeline
	Analyzer media.Analyzer // optional: required only for sync media ingestion
	Queue    *queue.Queue   // optional: required only for async media ingestion
}

// Ingest saves doc, then its derived chunks in a separate store call,
// returning the new document id. The two writes are not one transaction: if
// a step after the document save fails, the document row stays stored
// without chunks.
func (c *Core) Ingest(ctx context.Context, doc *model.Document, mode Mode) (int64, error) {
	if doc.MediaType == model.MediaTypeText {
		return c.ingestText(ctx, doc)
	}
	return c.ingestMedia(ctx, doc, mode)
}

func (c *Core) ingestText(ctx context.Context, doc *model.Document) (int64, error) {
	segments, err := c.Parser.Parse(doc.Content)
	if err != nil {
		return 0, err
	}

	docID, err := c.Store.SaveDocument(ctx, doc)
	if err != nil {
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		return 0, errdefs.NewCancelled("ingestion cancelled before embedding")
	}

	chunks := c.Splitter.Split(docID, segments)
	if err := c.embedChunks(ctx, doc, chunks); err != nil {
		return 0, err
	}

	if err := c.Store.SaveChunks(ctx, docID, chunks); err != nil {
		return 0, err
	}
	return docID, nil
}

func (c *Core) ingestMedia(ctx context.Context, doc *model.Document, mode Mode) (int64, error) {
	docID, err := c.Store.SaveDocument(ctx, doc)
	if err != nil {
		return 0, err
	}

	if mode == ModeAsync {
		if c.Queue == nil {
			return 0, errdefs.NewConfigError("async media ingestion requires a queue", nil)
		}
		if _, err := c.Queue.Enqueue(ctx, docID, doc.MediaPath, doc.MediaType); err != nil {
			return 0, err
		}
		return docID, nil
	}

	if c.Analyzer == nil {
		return 0, errdefs.NewConfigError("sync media ingestion requires an analyzer", nil)
	}
	analysis, err := c.Analyzer.Analyze(ctx, doc.MediaPath, doc.MediaType, media.AnalyzeOptions{})
	if err != nil {
		return 0, err
	}

	if err := ctx.Err(); err != nil {
		return 0, errdefs.NewCancelled("ingestion cancelled before chunking")
	}

	doc.ID = docID
	pctx, err := c.Pipeline.Run(pipeline.NewContext(doc.MediaPath, doc, analysis))
	if err != nil {
		return 0, err
	}

	if err := c.embedChunks(ctx, doc, pctx.Chunks); err != nil {
		return 0, err
	}
	if err := c.Store.SaveChunks(ctx, docID, pctx.Chunks); err != nil {
		return 0, err
	}
	return docID, nil
}

// embedChunks builds each chunk's embedding input via the configured
// enrichment strategy, then fills in its embedding, in place.
func (c *Core) embedChunks(ctx context.Context, doc *model.Document, chunks []*model.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	inputs := make([]string, len(chunks))
	for i, chunk := range chunks {
		chunk.EmbeddingInput = c.Enricher.Enrich(doc, chunk)
		inputs[i] = chunk.EmbeddingInput
	}

	vectors, err := c.Embedder.EmbedBatch(ctx, inputs)
	if err != nil {
		return err
	}
	for i, v := range vectors {
		chunks[i].Embedding = v
	}
	return nil
}

// HandleAnalyzedTask is the queue.AnalysisHandler a caller wires into
// queue.New: it loads the task's document, runs the media pipeline over the
// analyzer's result, embeds the new chunks, and saves them. Used for the
// async media path, where analysis happens on a worker's ProcessBatch call
// rather than inline in Ingest.
func (c *Core) HandleAnalyzedTask(ctx context.Context, task *model.MediaTask, result *model.AnalysisResult) error {
	doc, err := c.Store.GetDocument(ctx, task.DocumentID)
	if err != nil {
		return err
	}
	doc.MediaPath = task.MediaPath

	pctx, err := c.Pipeline.Run(pipeline.NewContext(task.MediaPath, doc, result))
	if err != nil {
		return err
	}
	if err := c.embedChunks(ctx, doc, pctx.Chunks); err != nil {
		return err
	}
	return c.Store.SaveChunks(ctx, task.DocumentID, pctx.Chunks)
}

// RegisterStep forwards to the media pipeline's step registration.
func (c *Core) RegisterStep(step pipeline.ProcessingStep, position *int) {
	c.Pipeline.RegisterStep(step, position)
}

// ProcessMediaQueue drains up to max pending media tasks from the queue.
func (c *Core) ProcessMediaQueue(ctx context.Context, max int) (int, error) {
	if c.Queue == nil {
		return 0, errdefs.NewConfigError("process_media_queue requires a queue", nil)
	}
	return c.Queue.ProcessBatch(ctx, max)
}

// RerunStep re-runs just stepName for documentID. Since the media
// analyzer's output is not persisted separately from the chunks it
// produced, RerunStep reconstructs a best-effort AnalysisResult from the
// document's current chunks (the rerun_step idempotence property only
// requires repeated identical calls to agree, not a live analyzer call),
// clears that step's prior chunks, re-runs it, re-embeds, and saves the
// result. Returns the number of chunks produced.
func (c *Core) RerunStep(ctx context.Context, stepName string, documentID int64) (int, error) {
	doc, err := c.Store.GetDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}

	existing, err := c.Store.GetChunksByDocument(ctx, documentID)
	if err != nil {
		return 0, err
	}
	analysis := reconstructAnalysis(doc, existing)

	start := pipeline.NewContext(doc.MediaPath, doc, analysis)
	newChunks, err := c.Pipeline.RerunStep(ctx, stepName, documentID, start)
	if err != nil {
		return 0, err
	}
	if len(newChunks) == 0 {
		return 0, nil
	}

	if err := c.embedChunks(ctx, doc, newChunks); err != nil {
		return 0, err
	}
	if err := c.Store.SaveChunks(ctx, documentID, newChunks); err != nil {
		return 0, err
	}
	return len(newChunks), nil
}

// reconstructAnalysis rebuilds an AnalysisResult approximation from a
// document's already-stored chunks, so RerunStep can re-derive a step's
// output without calling the analyzer again.
func reconstructAnalysis(doc *model.Document, chunks []*model.Chunk) *model.AnalysisResult {
	prefix := summaryMetadataPrefix(doc.MediaType)
	result := &model.AnalysisResult{Type: doc.MediaType}

	var transcript, ocr []string
	for _, c := range chunks {
		switch c.Metadata["role"] {
		case string(model.RoleSummary):
			result.Description = c.Content
			if k := c.Metadata[prefix+"keywords"]; k != "" {
				result.Keywords = strings.Split(k, ", ")
			}
			if p := c.Metadata[prefix+"participants"]; p != "" {
				result.Participants = strings.Split(p, ", ")
			}
		case string(model.RoleTranscript):
			transcript = append(transcript, c.Content)
		case string(model.RoleOCR):
			ocr = append(ocr, c.Content)
		}
	}
	result.Transcription = strings.Join(transcript, "\n")
	result.OCRText = strings.Join(ocr, "\n\n")
	return result
}

func summaryMetadataPrefix(mt model.MediaType) string {
	switch mt {
	case model.MediaTypeAudio:
		return "_audio_"
	case model.MediaTypeVideo:
		return "_video_"
	default:
		return "_vision_"
	}
}
