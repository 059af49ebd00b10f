// Package errdefs defines the structured error kinds shared by every
// component. Callers match on Kind, never on a concrete Go type.
package errdefs

import (
	"errors"
	"fmt"
)

// Kind identifies the class of failure, stable across releases.
type Kind string

const (
	KindParse        Kind = "parse_error"
	KindSplit        Kind = "split_error"
	KindEmbed        Kind = "embed_error"
	KindRateLimit    Kind = "rate_limit_error"
	KindStore        Kind = "store_error"
	KindAnalyze      Kind = "analyze_error"
	KindQueue        Kind = "queue_error"
	KindPipeline     Kind = "pipeline_error"
	KindCancelled    Kind = "cancelled"
	KindConfig       Kind = "config_error"
)

// Subkind further classifies an error within its Kind (e.g. EmbedError's
// Transient/Permanent/RetriesExhausted split from spec.md §7).
type Subkind string

const (
	SubkindNone Subkind = ""

	// EmbedError subkinds.
	SubkindTransient       Subkind = "transient"
	SubkindPermanent       Subkind = "permanent"
	SubkindRetriesExhausted Subkind = "retries_exhausted"

	// RateLimitError subkinds.
	SubkindWaitExceeded Subkind = "wait_exceeded"

	// StoreError subkinds.
	SubkindIO               Subkind = "io"
	SubkindConstraint       Subkind = "constraint"
	SubkindVectorDimMismatch Subkind = "vector_dim_mismatch"
	SubkindMigrationFailed  Subkind = "migration_failed"

	// AnalyzeError subkinds.
	SubkindSchema   Subkind = "schema"
	SubkindUpstream Subkind = "upstream"
	SubkindTimeout  Subkind = "timeout"

	// QueueError subkinds.
	SubkindNotFound     Subkind = "not_found"
	SubkindInvalidState Subkind = "invalid_state"
)

// Error is the structured error type returned by every component.
type Error struct {
	Kind      Kind
	Subkind   Subkind
	Message   string
	Cause     error
	Retryable bool
	Details   map[string]string
}

func (e *Error) Error() string {
	if e.Subkind != SubkindNone {
		return fmt.Sprintf("[%s/%s] %s", e.Kind, e.Subkind, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is enables errors.Is(err, &Error{Kind: ..., Subkind: ...}) matching on
// Kind and Subkind alone, ignoring Message/Cause/Details.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != "" && t.Kind != e.Kind {
		return false
	}
	if t.Subkind != "" && t.Subkind != e.Subkind {
		return false
	}
	return true
}

// WithDetail attaches a key/value detail and returns the error for chaining.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

func new_(kind Kind, subkind Subkind, message string, cause error, retryable bool) *Error {
	return &Error{Kind: kind, Subkind: subkind, Message: message, Cause: cause, Retryable: retryable}
}

func NewParseError(message string, cause error) *Error {
	return new_(KindParse, SubkindNone, message, cause, false)
}

func NewSplitError(message string, cause error) *Error {
	return new_(KindSplit, SubkindNone, message, cause, false)
}

// NewEmbedError classifies the failure as transient (retryable), permanent
// (not retryable), or retries-exhausted (not retryable, retries were tried).
func NewEmbedError(subkind Subkind, message string, cause error) *Error {
	retryable := subkind == SubkindTransient
	return new_(KindEmbed, subkind, message, cause, retryable)
}

func NewRateLimitError(message string) *Error {
	return new_(KindRateLimit, SubkindWaitExceeded, message, nil, true)
}

func NewStoreError(subkind Subkind, message string, cause error) *Error {
	return new_(KindStore, subkind, message, cause, subkind == SubkindIO)
}

func NewAnalyzeError(subkind Subkind, message string, cause error) *Error {
	retryable := subkind == SubkindUpstream || subkind == SubkindTimeout
	return new_(KindAnalyze, subkind, message, cause, retryable)
}

func NewQueueError(subkind Subkind, message string) *Error {
	return new_(KindQueue, subkind, message, nil, false)
}

func NewPipelineError(stepName, message string, cause error) *Error {
	return new_(KindPipeline, SubkindNone, message, cause, false).WithDetail("step_name", stepName)
}

func NewCancelled(message string) *Error {
	return new_(KindCancelled, SubkindNone, message, nil, false)
}

func NewConfigError(message string, cause error) *Error {
	return new_(KindConfig, SubkindNone, message, cause, false)
}

// IsRetryable reports whether err (an *Error or wrapping one) is retryable.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}

// GetKind extracts the Kind from err, or "" if err is not an *Error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
