// Package splitter converts a parsed segment stream into size-bounded,
// semantically homogeneous chunks.
package splitter

import (
	"strconv"
	"strings"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

// Config controls the size thresholds used when flushing accumulator
// buffers. Zero values fall back to the spec defaults.
type Config struct {
	ChunkSize           int
	CodeChunkSize       int
	TranscriptChunkSize int
	OCRChunkSize        int
}

const (
	defaultChunkSize     = 1800
	defaultCodeChunkSize = 2000
)

func (c Config) normalized() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = defaultChunkSize
	}
	if c.CodeChunkSize <= 0 {
		c.CodeChunkSize = defaultCodeChunkSize
	}
	if c.TranscriptChunkSize <= 0 {
		c.TranscriptChunkSize = c.ChunkSize
	}
	if c.OCRChunkSize <= 0 {
		c.OCRChunkSize = c.ChunkSize
	}
	return c
}

// Splitter turns segments into Chunks obeying Config's size bounds.
type Splitter struct {
	cfg     Config
	snapper *statementSnapper
}

// New returns a Splitter. snapper may be nil to disable tree-sitter
// statement-boundary snapping on oversized code segments.
func New(cfg Config, snapper *statementSnapper) *Splitter {
	return &Splitter{cfg: cfg.normalized(), snapper: snapper}
}

// accumulator buffers homogeneous text/table/transcript/ocr segments until a
// size threshold is reached, tracking the heading path of its first member.
type accumulator struct {
	chunkType   model.ChunkType
	buf         strings.Builder
	headingPath []string
}

func (a *accumulator) empty() bool {
	return a.buf.Len() == 0
}

func (a *accumulator) append(seg model.Segment) {
	if a.empty() {
		a.chunkType = seg.Type
		a.headingPath = copyStrings(seg.HeadingPath)
	} else {
		a.buf.WriteString("\n\n")
	}
	a.buf.WriteString(seg.Content)
}

func (a *accumulator) reset() {
	a.buf.Reset()
	a.chunkType = ""
	a.headingPath = nil
}

// Split converts an ordered segment stream into a dense, 0-indexed list of
// Chunks. documentID, when known, is stamped onto every chunk's metadata as
// source_id; pass 0 to let the caller fill it in after the document is saved.
func (s *Splitter) Split(documentID int64, segments []model.Segment) []*model.Chunk {
	var chunks []*model.Chunk
	idx := 0
	var acc accumulator

	threshold := func(t model.ChunkType) int {
		switch t {
		case model.ChunkTypeTranscript:
			return s.cfg.TranscriptChunkSize
		case model.ChunkTypeOCR:
			return s.cfg.OCRChunkSize
		default:
			return s.cfg.ChunkSize
		}
	}

	flush := func() {
		if acc.empty() {
			return
		}
		chunks = append(chunks, s.newChunk(documentID, idx, acc.chunkType, acc.buf.String(), "", acc.headingPath, nil))
		idx++
		acc.reset()
	}

	for _, seg := range segments {
		switch seg.Type {
		case model.ChunkTypeText, model.ChunkTypeTable, model.ChunkTypeTranscript, model.ChunkTypeOCR:
			if !acc.empty() && acc.chunkType != seg.Type {
				flush()
			}
			acc.append(seg)
			if acc.buf.Len() >= threshold(seg.Type) {
				flush()
			}

		case model.ChunkTypeCode:
			flush()
			for _, part := range s.splitCode(seg) {
				chunks = append(chunks, s.newChunk(documentID, idx, model.ChunkTypeCode, part, seg.Language, seg.HeadingPath, seg.Metadata))
				idx++
			}

		default: // image_ref, audio_ref, video_ref: always isolated
			flush()
			chunks = append(chunks, s.newChunk(documentID, idx, seg.Type, seg.Content, "", seg.HeadingPath, seg.Metadata))
			idx++
		}
	}
	flush()

	return chunks
}

func (s *Splitter) newChunk(documentID int64, idx int, chunkType model.ChunkType, content, language string, headingPath []string, segMeta map[string]string) *model.Chunk {
	meta := make(map[string]string, len(segMeta)+1)
	for k, v := range segMeta {
		meta[k] = v
	}
	if documentID != 0 {
		meta["source_id"] = strconv.FormatInt(documentID, 10)
	}
	return &model.Chunk{
		DocumentID:  documentID,
		ChunkIndex:  idx,
		ChunkType:   chunkType,
		Content:     content,
		Language:    language,
		HeadingPath: copyStrings(headingPath),
		Metadata:    meta,
	}
}

// splitCode returns seg's content as one or more line-bounded pieces, each
// no larger than CodeChunkSize, optionally snapped to statement boundaries.
func (s *Splitter) splitCode(seg model.Segment) []string {
	if len(seg.Content) <= s.cfg.CodeChunkSize {
		return []string{seg.Content}
	}

	if s.snapper != nil {
		if parts, ok := s.snapper.split(seg.Language, seg.Content, s.cfg.CodeChunkSize); ok {
			var out []string
			for _, p := range parts {
				out = append(out, splitLinesBySize(p, s.cfg.CodeChunkSize)...)
			}
			return out
		}
	}
	return splitLinesBySize(seg.Content, s.cfg.CodeChunkSize)
}

// splitLinesBySize accumulates whole lines until adding the next line would
// exceed size, then starts a new piece. A single line longer than size is
// kept intact rather than broken mid-line.
func splitLinesBySize(content string, size int) []string {
	lines := strings.Split(content, "\n")
	var parts []string
	var buf strings.Builder

	for _, line := range lines {
		if buf.Len() > 0 && buf.Len()+1+len(line) > size {
			parts = append(parts, buf.String())
			buf.Reset()
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}
	if buf.Len() > 0 {
		parts = append(parts, buf.String())
	}
	if len(parts) == 0 {
		parts = []string{content}
	}
	return parts
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

