package embed

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
)

// BatchStatus is a BatchHandle's lifecycle state.
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
)

// BatchRequest is one unit of work in a batch submission, correlated back to
// its caller by CustomID.
type BatchRequest struct {
	CustomID string
	Text     string
}

// BatchResult is one request's outcome, correlated by CustomID.
type BatchResult struct {
	CustomID  string
	Embedding []float32
	Err       error
}

// BatchHandle tracks an in-flight batch submission.
type BatchHandle struct {
	id string

	mu      sync.Mutex
	status  BatchStatus
	results []BatchResult
}

// ID returns the handle's opaque identifier.
func (h *BatchHandle) ID() string { return h.id }

// BatchEmbedder adapts any synchronous Embedder to the spec's batch
// submit/poll/retrieve contract by running requests through a bounded
// worker pool and correlating results by CustomID — no reference embedding
// provider here (Ollama, static) exposes a native batch endpoint.
type BatchEmbedder struct {
	inner      Embedder
	concurrency int

	mu      sync.Mutex
	handles map[string]*BatchHandle
	nextID  int
}

// NewBatchEmbedder wraps inner with batch semantics. concurrency bounds how
// many requests run at once; values <= 0 default to 4.
func NewBatchEmbedder(inner Embedder, concurrency int) *BatchEmbedder {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &BatchEmbedder{inner: inner, concurrency: concurrency, handles: make(map[string]*BatchHandle)}
}

// SubmitBatch starts processing requests asynchronously and returns a handle
// immediately; use CheckStatus/RetrieveResults to observe completion.
func (b *BatchEmbedder) SubmitBatch(ctx context.Context, requests []BatchRequest) (*BatchHandle, error) {
	if len(requests) == 0 {
		return nil, errdefs.NewEmbedError(errdefs.SubkindPermanent, "batch submission must contain at least one request", nil)
	}

	b.mu.Lock()
	b.nextID++
	handle := &BatchHandle{id: batchIDFromCounter(b.nextID), status: BatchStatusPending}
	b.handles[handle.id] = handle
	b.mu.Unlock()

	go b.run(ctx, handle, requests)
	return handle, nil
}

func (b *BatchEmbedder) run(ctx context.Context, handle *BatchHandle, requests []BatchRequest) {
	handle.mu.Lock()
	handle.status = BatchStatusProcessing
	handle.mu.Unlock()

	results := make([]BatchResult, len(requests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			vec, err := b.inner.Embed(gctx, req.Text)
			results[i] = BatchResult{CustomID: req.CustomID, Embedding: vec, Err: err}
			return nil // per-request errors are carried in the result, not the group
		})
	}
	_ = g.Wait()

	handle.mu.Lock()
	handle.results = results
	handle.status = BatchStatusCompleted
	for _, r := range results {
		if r.Err != nil {
			handle.status = BatchStatusFailed
			break
		}
	}
	handle.mu.Unlock()
}

// CheckStatus returns handle's current lifecycle state.
func (b *BatchEmbedder) CheckStatus(_ context.Context, handle *BatchHandle) (BatchStatus, error) {
	handle.mu.Lock()
	defer handle.mu.Unlock()
	return handle.status, nil
}

// RetrieveResults returns handle's results once Completed or Failed, or a
// QueueError{invalid_state} while still Pending/Processing.
func (b *BatchEmbedder) RetrieveResults(_ context.Context, handle *BatchHandle) ([]BatchResult, error) {
	handle.mu.Lock()
	defer handle.mu.Unlock()
	if handle.status != BatchStatusCompleted && handle.status != BatchStatusFailed {
		return nil, errdefs.NewQueueError(errdefs.SubkindInvalidState, "batch results not ready")
	}
	return handle.results, nil
}

func batchIDFromCounter(n int) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "batch-0"
	}
	var b []byte
	for n > 0 {
		b = append([]byte{alphabet[n%len(alphabet)]}, b...)
		n /= len(alphabet)
	}
	return "batch-" + string(b)
}
