package embed

import (
	"context"
	"math/rand"
	"time"

	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
)

// EmbedRetryPolicy is the exponential-backoff-with-jitter policy applied to
// every synchronous embed request, per the classifier in classify.go.
type EmbedRetryPolicy struct {
	Base        time.Duration
	Cap         time.Duration
	MaxAttempts int
}

// DefaultEmbedRetryPolicy returns base 1s, cap 30s, 6 attempts.
func DefaultEmbedRetryPolicy() EmbedRetryPolicy {
	return EmbedRetryPolicy{Base: time.Second, Cap: 30 * time.Second, MaxAttempts: 6}
}

// Classifier reports whether an error (and, when known, an HTTP status) is
// retryable. statusCode is 0 when unavailable.
type Classifier func(statusCode int, err error) FailureClass

// DefaultClassifier classifies by HTTP status when present, otherwise by
// inspecting the transport error.
func DefaultClassifier(statusCode int, err error) FailureClass {
	if statusCode != 0 {
		return ClassifyHTTPStatus(statusCode)
	}
	return ClassifyError(err)
}

// RunWithRetry executes fn under the policy, classifying each failure via
// classify. It returns *errdefs.Error with Kind=KindEmbed for a failed
// request: Permanent for a terminal classification, RetriesExhausted once
// attempts run out. A cancelled ctx yields Kind=KindCancelled instead.
func RunWithRetry[T any](ctx context.Context, policy EmbedRetryPolicy, classify Classifier, fn func(ctx context.Context) (T, int, error)) (T, error) {
	return RunWithRetryAs(ctx, policy, classify, errdefs.NewEmbedError, "embed request", fn)
}

// ErrFactory builds a *errdefs.Error of a caller-chosen Kind for a given
// Subkind/message/cause, letting RunWithRetryAs's backoff loop be reused by
// non-embed callers (the media analyzer's retries, per its own Kind).
type ErrFactory func(subkind errdefs.Subkind, message string, cause error) *errdefs.Error

// RunWithRetryAs is RunWithRetry generalized over the error Kind produced on
// failure, so other packages can reuse the same classify/backoff/jitter
// mechanics against their own errdefs constructor.
func RunWithRetryAs[T any](ctx context.Context, policy EmbedRetryPolicy, classify Classifier, newErr ErrFactory, opName string, fn func(ctx context.Context) (T, int, error)) (T, error) {
	var zero T
	delay := policy.Base
	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, errdefs.NewCancelled(opName + " cancelled")
		}

		value, status, err := fn(ctx)
		if err == nil {
			return value, nil
		}
		lastErr = err

		class := classify(status, err)
		if class == ClassTerminal {
			return zero, newErr(errdefs.SubkindPermanent, opName+" failed (non-retryable)", err)
		}

		if attempt == policy.MaxAttempts {
			break
		}

		wait := jitter(delay, policy.Cap)
		select {
		case <-ctx.Done():
			return zero, errdefs.NewCancelled(opName + " cancelled")
		case <-time.After(wait):
		}

		delay *= 2
		if delay > policy.Cap {
			delay = policy.Cap
		}
	}

	return zero, newErr(errdefs.SubkindRetriesExhausted, opName+" retries exhausted", lastErr)
}

// jitter returns a random duration in [0, min(delay, cap)], full jitter per
// the standard exponential-backoff-with-jitter algorithm.
func jitter(delay, cap time.Duration) time.Duration {
	if delay > cap {
		delay = cap
	}
	if delay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(delay) + 1))
}
