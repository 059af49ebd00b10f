package enrich

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

func TestHierarchicalStrategy_Text(t *testing.T) {
	doc := &model.Document{Title: "Runbook"}
	c := &model.Chunk{ChunkType: model.ChunkTypeText, Content: "do the thing", HeadingPath: []string{"Intro", "Steps"}}

	out := HierarchicalStrategy{}.Enrich(doc, c)
	assert.Contains(t, out, "Document: Runbook")
	assert.Contains(t, out, "Section: Intro > Steps")
	assert.Contains(t, out, "Content: do the thing")
}

func TestHierarchicalStrategy_Code(t *testing.T) {
	c := &model.Chunk{ChunkType: model.ChunkTypeCode, Content: "func main() {}", Language: "go"}
	out := HierarchicalStrategy{}.Enrich(nil, c)
	assert.Contains(t, out, "Type: Go Code")
	assert.Contains(t, out, "Code: func main() {}")
}

func TestHierarchicalStrategy_ImageRef(t *testing.T) {
	c := &model.Chunk{
		ChunkType: model.ChunkTypeImageRef,
		Content:   "diagram.png",
		Metadata:  map[string]string{"alt": "architecture diagram", "title": "fig 1"},
	}
	out := HierarchicalStrategy{}.Enrich(nil, c)
	assert.Contains(t, out, "Type: Image Reference")
	assert.Contains(t, out, "Description: architecture diagram")
	assert.Contains(t, out, "Title: fig 1")
	assert.Contains(t, out, "Source: diagram.png")
}

func TestHierarchicalStrategy_AudioRefWithTranscription(t *testing.T) {
	c := &model.Chunk{
		ChunkType: model.ChunkTypeAudioRef,
		Content:   "clip.mp3",
		Metadata:  map[string]string{"transcription": "hello world", "duration": "12s"},
	}
	out := HierarchicalStrategy{}.Enrich(nil, c)
	assert.Contains(t, out, "Type: Audio")
	assert.Contains(t, out, "Transcription: hello world")
	assert.Contains(t, out, "Duration: 12s")
}

func TestHierarchicalStrategy_Quote(t *testing.T) {
	c := &model.Chunk{ChunkType: model.ChunkTypeText, Content: "wise words", Metadata: map[string]string{"quote": "true"}}
	out := HierarchicalStrategy{}.Enrich(nil, c)
	assert.Contains(t, out, "Type: Quote")
}

func TestNoContextStrategy_ReturnsContentUnchanged(t *testing.T) {
	c := &model.Chunk{Content: "raw content", HeadingPath: []string{"A"}}
	out := NoContextStrategy{}.Enrich(&model.Document{Title: "X"}, c)
	assert.Equal(t, "raw content", out)
}
