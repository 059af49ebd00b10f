package embed

import (
	"context"
	"errors"
	"net"
	"net/http"
)

// FailureClass is the outcome of classifying an embed request error against
// the retry policy.
type FailureClass int

const (
	// ClassRetryable covers transient network errors, 5xx, 429, and timeouts.
	ClassRetryable FailureClass = iota
	// ClassTerminal covers 4xx (other than 429) and schema errors: retrying
	// would not help.
	ClassTerminal
)

// ClassifyHTTPStatus maps a response status code to a FailureClass.
func ClassifyHTTPStatus(statusCode int) FailureClass {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ClassRetryable
	case statusCode >= 500:
		return ClassRetryable
	case statusCode >= 400:
		return ClassTerminal
	default:
		return ClassRetryable
	}
}

// ClassifyError inspects a transport-level error (no HTTP status available)
// and classifies it as retryable unless it is a context cancellation,
// which callers should treat as terminal since retrying cannot help.
func ClassifyError(err error) FailureClass {
	if err == nil {
		return ClassRetryable
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassTerminal
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ClassRetryable
	}

	return ClassRetryable
}
