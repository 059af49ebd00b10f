// Package queue implements a durable, in-process FIFO for media analysis
// tasks, backed by the media_tasks table in the shared store database.
package queue

import (
	"context"

	"github.com/Aman-CERP/knowledgeengine/internal/embed"
	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
	"github.com/Aman-CERP/knowledgeengine/internal/media"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

// taskStore is the subset of *store.Store the queue needs, kept as an
// interface so tests can exercise Queue against a fake without a real
// database.
type taskStore interface {
	EnqueueMediaTask(ctx context.Context, documentID int64, mediaPath string, mediaType model.MediaType) (int64, error)
	ClaimNextMediaTask(ctx context.Context) (*model.MediaTask, error)
	CompleteMediaTask(ctx context.Context, id int64) error
	FailMediaTask(ctx context.Context, id int64, lastErr string) error
	ResetMediaTask(ctx context.Context, id int64) error
	CountPendingMediaTasks(ctx context.Context) (int, error)
}

// AnalysisHandler receives a claimed task's analysis result for routing into
// the media pipeline; returning an error marks the task failed.
type AnalysisHandler func(ctx context.Context, task *model.MediaTask, result *model.AnalysisResult) error

// outcome is the result of attempting a single task claim+process cycle.
type outcome int

const (
	outcomeEmpty outcome = iota
	outcomeCompleted
	outcomeFailed
)

// Queue drives process_one/process_batch over taskStore, invoking analyzer
// under limiter before handing the result to handle.
type Queue struct {
	store    taskStore
	analyzer media.Analyzer
	limiter  *embed.TokenBucket
	handle   AnalysisHandler
}

// New builds a Queue. limiter may be nil to skip rate limiting (e.g. in
// tests against a StaticAnalyzer).
func New(store taskStore, analyzer media.Analyzer, limiter *embed.TokenBucket, handle AnalysisHandler) *Queue {
	return &Queue{store: store, analyzer: analyzer, limiter: limiter, handle: handle}
}

// Enqueue adds a new pending task for a document's media file.
func (q *Queue) Enqueue(ctx context.Context, documentID int64, mediaPath string, mediaType model.MediaType) (int64, error) {
	return q.store.EnqueueMediaTask(ctx, documentID, mediaPath, mediaType)
}

// ProcessOne claims the oldest pending task, analyzes it under the rate
// limiter, and writes completed/failed. Returns whether work was done
// (false means the queue was empty).
func (q *Queue) ProcessOne(ctx context.Context) (bool, error) {
	result, err := q.processOne(ctx)
	if err != nil {
		return false, err
	}
	return result != outcomeEmpty, nil
}

// ProcessBatch calls process_one up to max times, stopping on the queue
// emptying or on the first task that ends in a failed state. Returns the
// number of tasks that completed successfully.
func (q *Queue) ProcessBatch(ctx context.Context, max int) (int, error) {
	completed := 0
	for i := 0; i < max; i++ {
		result, err := q.processOne(ctx)
		if err != nil {
			return completed, err
		}
		switch result {
		case outcomeEmpty:
			return completed, nil
		case outcomeFailed:
			return completed, nil
		case outcomeCompleted:
			completed++
		}
	}
	return completed, nil
}

// processOne claims a single task (if any is pending), analyzes it, routes
// the result through handle, and records the terminal state.
func (q *Queue) processOne(ctx context.Context) (outcome, error) {
	task, err := q.store.ClaimNextMediaTask(ctx)
	if err != nil {
		return outcomeEmpty, err
	}
	if task == nil {
		return outcomeEmpty, nil
	}

	if err := ctx.Err(); err != nil {
		_ = q.store.FailMediaTask(ctx, task.ID, err.Error())
		return outcomeFailed, errdefs.NewCancelled("media task processing cancelled")
	}

	if q.limiter != nil {
		if err := q.limiter.Acquire(ctx, 1); err != nil {
			_ = q.store.FailMediaTask(ctx, task.ID, err.Error())
			return outcomeFailed, nil
		}
	}

	result, err := q.analyzer.Analyze(ctx, task.MediaPath, task.MediaType, media.AnalyzeOptions{})
	if err != nil {
		_ = q.store.FailMediaTask(ctx, task.ID, err.Error())
		return outcomeFailed, nil
	}

	if err := q.handle(ctx, task, result); err != nil {
		_ = q.store.FailMediaTask(ctx, task.ID, err.Error())
		return outcomeFailed, nil
	}

	if err := q.store.CompleteMediaTask(ctx, task.ID); err != nil {
		return outcomeEmpty, err
	}
	return outcomeCompleted, nil
}

// GetPendingCount reports the number of tasks still awaiting a claim.
func (q *Queue) GetPendingCount(ctx context.Context) (int, error) {
	return q.store.CountPendingMediaTasks(ctx)
}

// Retry resets a failed task back to pending so a future ProcessOne picks
// it up again.
func (q *Queue) Retry(ctx context.Context, taskID int64) error {
	return q.store.ResetMediaTask(ctx, taskID)
}
