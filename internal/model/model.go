// Package model defines the domain types shared across the ingestion,
// storage, media, and search layers.
package model

import "time"

// MediaType identifies the kind of payload a Document carries.
type MediaType string

const (
	MediaTypeText  MediaType = "text"
	MediaTypeImage MediaType = "image"
	MediaTypeAudio MediaType = "audio"
	MediaTypeVideo MediaType = "video"
)

// ChunkType identifies the content shape of a Chunk, driving split and
// enrichment behavior.
type ChunkType string

const (
	ChunkTypeText       ChunkType = "text"
	ChunkTypeCode       ChunkType = "code"
	ChunkTypeTable      ChunkType = "table"
	ChunkTypeImageRef   ChunkType = "image_ref"
	ChunkTypeAudioRef   ChunkType = "audio_ref"
	ChunkTypeVideoRef   ChunkType = "video_ref"
	ChunkTypeTranscript ChunkType = "transcript"
	ChunkTypeOCR        ChunkType = "ocr"
)

// Role further classifies a chunk's provenance within a document, used by
// the media pipeline to distinguish synthetic chunks from source text.
type Role string

const (
	RoleSource     Role = "source"
	RoleTranscript Role = "transcript"
	RoleOCR        Role = "ocr"
	RoleSummary    Role = "summary"
)

// TaskStatus is the lifecycle state of a MediaTask in the persistent queue.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// MatchType records which retrieval branch(es) produced a ChunkResult.
type MatchType string

const (
	MatchTypeVector MatchType = "vector"
	MatchTypeFTS    MatchType = "fts"
	MatchTypeHybrid MatchType = "hybrid"
)

// Document is a unit of ingestion: source text, or a pointer to a media
// file accompanied by metadata.
type Document struct {
	ID        int64
	Source    string // stable external identifier (file path, URL, upload key)
	MediaType MediaType
	MediaPath string // populated when MediaType != text
	Content   string // raw text for MediaTypeText, empty otherwise
	Title     string
	Metadata  map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Chunk is a retrievable unit produced by splitting a Document, optionally
// enriched with surrounding context before embedding.
type Chunk struct {
	ID              int64
	DocumentID      int64
	ChunkIndex      int
	ChunkType       ChunkType
	Content         string // stored content (without enrichment prefix)
	EmbeddingInput  string // content actually embedded (may include enrichment)
	Language        string // populated for ChunkTypeCode
	HeadingPath     []string
	StartLine       int
	EndLine         int
	Embedding       []float32
	Metadata        map[string]string
	CreatedAt       time.Time
}

// ChunkResult is a single hit returned from a search operation.
type ChunkResult struct {
	Chunk     *Chunk
	Score     float64
	MatchType MatchType
	VectorRank int // 0 when absent from the vector branch
	FTSRank    int // 0 when absent from the FTS branch
}

// MediaTask is a unit of work in the persistent media analysis queue.
type MediaTask struct {
	ID          int64
	DocumentID  int64
	MediaPath   string
	MediaType   MediaType
	Status      TaskStatus
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	ClaimedAt   *time.Time
	CompletedAt *time.Time
}

// AnalysisResult is the structured output of a media Analyzer (C9): a
// description suitable for a summary chunk, plus whichever of the optional
// fields the media type and model populate.
type AnalysisResult struct {
	Type            MediaType
	Description     string
	Keywords        []string
	Transcription   string   // non-empty for audio/video with speech
	OCRText         string   // non-empty when on-screen/in-image text was found
	AltText         string   // short alt-text for images
	Participants    []string // speaker/subject identification, audio/video
	ActionItems     []string
	DurationSeconds float64 // 0 when not applicable/unknown
}

// Segment is an intermediate unit produced by the markdown parser (C2)
// before splitting, carrying the heading breadcrumb active at its position.
type Segment struct {
	Type        ChunkType
	Content     string
	Language    string
	HeadingPath []string
	Metadata    map[string]string
	StartLine   int
	EndLine     int
}
