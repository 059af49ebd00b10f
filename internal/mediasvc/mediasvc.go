// Package mediasvc assembles the get_media_details(document_id) view
// spec.md §4.11/§6 names: aggregate a media document's summary, transcript,
// OCR, and keyword chunks into a single caller-facing DTO.
package mediasvc

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

// TimedSegment is one line of a reconstructed transcript, ordered by its
// position in the source media.
type TimedSegment struct {
	StartSeconds float64
	Content      string
}

// MediaDetails is the aggregated view of a media document's derived chunks.
type MediaDetails struct {
	Summary    string
	Transcript []TimedSegment // role=transcript chunks ordered by StartSeconds
	OCR        []string       // role=ocr chunks ordered by ChunkIndex
	Keywords   []string       // deduped union of _vision_keywords/_audio_keywords/_video_keywords
	Duration   float64        // from the summary chunk's metadata, 0 if absent
}

// chunkLister is the subset of *store.Store the service needs.
type chunkLister interface {
	GetChunksByDocument(ctx context.Context, documentID int64) ([]*model.Chunk, error)
}

// Service aggregates a document's chunks into a MediaDetails view.
type Service struct {
	Store chunkLister
}

// GetMediaDetails partitions documentID's chunks by role and assembles them
// into a MediaDetails view, ordering the transcript by timestamp and OCR by
// chunk order.
func (s *Service) GetMediaDetails(ctx context.Context, documentID int64) (*MediaDetails, error) {
	chunks, err := s.Store.GetChunksByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return nil, errdefs.NewStoreError(errdefs.SubkindNotFound, "document has no chunks", nil)
	}

	details := &MediaDetails{}
	keywordSet := map[string]struct{}{}
	var ocrChunks []*model.Chunk

	for _, c := range chunks {
		switch c.Metadata["role"] {
		case string(model.RoleSummary):
			details.Summary = c.Content
			details.Duration = firstFloat(c.Metadata, "_vision_duration_seconds", "_audio_duration_seconds", "_video_duration_seconds")
			addKeywords(keywordSet, c.Metadata, "_vision_keywords", "_audio_keywords", "_video_keywords")
		case string(model.RoleTranscript):
			details.Transcript = append(details.Transcript, TimedSegment{
				StartSeconds: parseFloat(c.Metadata["start_seconds"]),
				Content:      c.Content,
			})
		case string(model.RoleOCR):
			ocrChunks = append(ocrChunks, c)
		}
	}

	sort.SliceStable(details.Transcript, func(i, j int) bool {
		return details.Transcript[i].StartSeconds < details.Transcript[j].StartSeconds
	})
	sort.SliceStable(ocrChunks, func(i, j int) bool {
		return ocrChunks[i].ChunkIndex < ocrChunks[j].ChunkIndex
	})
	for _, c := range ocrChunks {
		details.OCR = append(details.OCR, c.Content)
	}

	details.Keywords = make([]string, 0, len(keywordSet))
	for k := range keywordSet {
		details.Keywords = append(details.Keywords, k)
	}
	sort.Strings(details.Keywords)

	return details, nil
}

func addKeywords(set map[string]struct{}, meta map[string]string, keys ...string) {
	for _, k := range keys {
		raw := meta[k]
		if raw == "" {
			continue
		}
		for _, kw := range strings.Split(raw, ", ") {
			kw = strings.TrimSpace(kw)
			if kw != "" {
				set[kw] = struct{}{}
			}
		}
	}
}

func firstFloat(meta map[string]string, keys ...string) float64 {
	for _, k := range keys {
		if raw := meta[k]; raw != "" {
			return parseFloat(raw)
		}
	}
	return 0
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
