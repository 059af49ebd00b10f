// Package enrich builds the enriched prompt sent to the embedder for each
// chunk. The chunk's stored content is never modified by a strategy.
package enrich

import (
	"fmt"
	"strings"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

// Strategy produces the text actually embedded for a chunk, given the
// owning document for title/metadata context.
type Strategy interface {
	Enrich(doc *model.Document, c *model.Chunk) string
}

// HierarchicalStrategy is the default strategy: it prefixes chunk content
// with the document title, heading breadcrumb, and a type label, so the
// embedded text carries context the raw chunk content lacks on its own.
type HierarchicalStrategy struct{}

func (HierarchicalStrategy) Enrich(doc *model.Document, c *model.Chunk) string {
	var b strings.Builder

	if doc != nil && doc.Title != "" {
		fmt.Fprintf(&b, "Document: %s\n", doc.Title)
	}
	if len(c.HeadingPath) > 0 {
		fmt.Fprintf(&b, "Section: %s\n", strings.Join(c.HeadingPath, " > "))
	}

	switch c.ChunkType {
	case model.ChunkTypeCode:
		label := "Code"
		if c.Language != "" {
			label = fmt.Sprintf("%s Code", strings.Title(c.Language))
		}
		fmt.Fprintf(&b, "Type: %s\n", label)
		fmt.Fprintf(&b, "Code: %s", c.Content)

	case model.ChunkTypeImageRef:
		b.WriteString("Type: Image Reference\n")
		if alt := firstNonEmpty(c.Metadata, "_vision_alt_text", "alt"); alt != "" {
			fmt.Fprintf(&b, "Description: %s\n", alt)
		}
		if title := c.Metadata["title"]; title != "" {
			fmt.Fprintf(&b, "Title: %s\n", title)
		}
		if k := c.Metadata["_vision_keywords"]; k != "" {
			fmt.Fprintf(&b, "Keywords: %s\n", k)
		}
		fmt.Fprintf(&b, "Source: %s", c.Content)

	case model.ChunkTypeAudioRef:
		b.WriteString("Type: Audio\n")
		writeMediaEnrichment(&b, c, "_audio_")

	case model.ChunkTypeVideoRef:
		b.WriteString("Type: Video\n")
		writeMediaEnrichment(&b, c, "_video_")

	default:
		if c.Metadata["quote"] == "true" {
			b.WriteString("Type: Quote\n")
		}
		fmt.Fprintf(&b, "Content: %s", c.Content)
	}

	return strings.TrimSpace(b.String())
}

// writeMediaEnrichment appends Transcription/Keywords/Participants/Duration
// lines onto an audio/video ref's prompt. The media pipeline's summary step
// namespaces keyword/participant/duration metadata under a reserved
// prefix (_audio_/_video_) to avoid colliding with other chunk metadata;
// simple media references produced directly by the markdown parser (a link
// to an audio/video file with no pipeline behind it) use unprefixed keys.
// Both are checked, prefixed first.
func writeMediaEnrichment(b *strings.Builder, c *model.Chunk, prefix string) {
	if t := firstNonEmpty(c.Metadata, prefix+"transcription", "transcription"); t != "" {
		fmt.Fprintf(b, "Transcription: %s\n", t)
	}
	if k := firstNonEmpty(c.Metadata, prefix+"keywords", "keywords"); k != "" {
		fmt.Fprintf(b, "Keywords: %s\n", k)
	}
	if p := firstNonEmpty(c.Metadata, prefix+"participants"); p != "" {
		fmt.Fprintf(b, "Participants: %s\n", p)
	}
	if d := firstNonEmpty(c.Metadata, prefix+"duration_seconds", "duration"); d != "" {
		fmt.Fprintf(b, "Duration: %s\n", d)
	}
	fmt.Fprintf(b, "Source: %s", c.Content)
}

func firstNonEmpty(m map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := m[k]; v != "" {
			return v
		}
	}
	return ""
}

// NoContextStrategy returns the chunk's stored content unchanged, bypassing
// enrichment entirely.
type NoContextStrategy struct{}

func (NoContextStrategy) Enrich(_ *model.Document, c *model.Chunk) string {
	return c.Content
}
