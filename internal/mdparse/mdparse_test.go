package mdparse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

func TestParse_EmptyDocument(t *testing.T) {
	p := New()
	segs, err := p.Parse("")
	require.NoError(t, err)
	assert.Empty(t, segs)
}

func TestParse_RejectsInvalidUTF8(t *testing.T) {
	p := New()
	_, err := p.Parse(string([]byte{0xff, 0xfe, 0xfd}))
	require.Error(t, err)
}

func TestParse_HeadingHierarchy(t *testing.T) {
	p := New()
	src := "# Title\n\nIntro text.\n\n## Section A\n\nBody A.\n\n### Subsection\n\nBody sub.\n\n## Section B\n\nBody B.\n"
	segs, err := p.Parse(src)
	require.NoError(t, err)

	var texts []model.Segment
	for _, s := range segs {
		if s.Type == model.ChunkTypeText {
			texts = append(texts, s)
		}
	}
	require.Len(t, texts, 4)
	assert.Equal(t, []string{"Title"}, texts[0].HeadingPath)
	assert.Equal(t, []string{"Title", "Section A"}, texts[1].HeadingPath)
	assert.Equal(t, []string{"Title", "Section A", "Subsection"}, texts[2].HeadingPath)
	assert.Equal(t, []string{"Title", "Section B"}, texts[3].HeadingPath)
}

func TestParse_FencedCodeBlock(t *testing.T) {
	p := New()
	src := "# Doc\n\n```go\nfunc main() {}\n```\n"
	segs, err := p.Parse(src)
	require.NoError(t, err)

	var code *model.Segment
	for i := range segs {
		if segs[i].Type == model.ChunkTypeCode {
			code = &segs[i]
		}
	}
	require.NotNil(t, code)
	assert.Equal(t, "go", code.Language)
	assert.Contains(t, code.Content, "func main()")
}

func TestParse_ImageClassifiesByExtension(t *testing.T) {
	p := New()
	src := "![a diagram](diagram.png)\n\n![narration](clip.mp3)\n\n![clip](movie.mp4)\n"
	segs, err := p.Parse(src)
	require.NoError(t, err)

	require.Len(t, segs, 3)
	assert.Equal(t, model.ChunkTypeImageRef, segs[0].Type)
	assert.Equal(t, "a diagram", segs[0].Metadata["alt"])
	assert.Equal(t, model.ChunkTypeAudioRef, segs[1].Type)
	assert.Equal(t, model.ChunkTypeVideoRef, segs[2].Type)
}

func TestParse_LinkToMediaFileIsolatesSegment(t *testing.T) {
	p := New()
	src := "See the [recording](session.wav) for details.\n"
	segs, err := p.Parse(src)
	require.NoError(t, err)

	var audio *model.Segment
	for i := range segs {
		if segs[i].Type == model.ChunkTypeAudioRef {
			audio = &segs[i]
		}
	}
	require.NotNil(t, audio)
	assert.Equal(t, "session.wav", audio.Content)
}

func TestParse_Blockquote(t *testing.T) {
	p := New()
	src := "> quoted wisdom\n"
	segs, err := p.Parse(src)
	require.NoError(t, err)

	require.Len(t, segs, 1)
	assert.Equal(t, "true", segs[0].Metadata["quote"])
	assert.Contains(t, segs[0].Content, "quoted wisdom")
}

func TestParse_Table(t *testing.T) {
	p := New()
	src := "| a | b |\n| --- | --- |\n| 1 | 2 |\n"
	segs, err := p.Parse(src)
	require.NoError(t, err)

	require.Len(t, segs, 1)
	assert.Equal(t, model.ChunkTypeTable, segs[0].Type)
	assert.True(t, strings.Contains(segs[0].Content, "1") && strings.Contains(segs[0].Content, "2"))
}

func TestParse_List(t *testing.T) {
	p := New()
	src := "- one\n- two\n- three\n"
	segs, err := p.Parse(src)
	require.NoError(t, err)

	require.Len(t, segs, 1)
	assert.Contains(t, segs[0].Content, "one")
	assert.Contains(t, segs[0].Content, "three")
}
