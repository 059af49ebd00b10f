package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/knowledgeengine/internal/mdparse"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
	"github.com/Aman-CERP/knowledgeengine/internal/splitter"
)

func newOCRStep(warn func(string)) OCRStep {
	return OCRStep{
		Splitter: splitter.New(splitter.Config{}, nil),
		Parser:   mdparse.New(),
		Warn:     warn,
	}
}

func TestOCRStep_ShouldRun_RequiresOCRText(t *testing.T) {
	step := newOCRStep(nil)
	assert.False(t, step.ShouldRun(NewContext("a.png", &model.Document{}, &model.AnalysisResult{})))
	assert.True(t, step.ShouldRun(NewContext("a.png", &model.Document{}, &model.AnalysisResult{OCRText: "Welcome"})))
}

func TestOCRStep_Process_TagsRoleOCR(t *testing.T) {
	doc := &model.Document{ID: 4}
	analysis := &model.AnalysisResult{OCRText: "Welcome to the app\n\nTap continue to proceed."}
	ctx := NewContext("screen.png", doc, analysis)

	out, err := newOCRStep(nil).Process(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, out.Chunks)
	for _, c := range out.Chunks {
		assert.Equal(t, "ocr", c.Metadata["role"])
	}
}

func TestOCRStep_Process_FencedCodeIsolatesAsCode(t *testing.T) {
	doc := &model.Document{ID: 5}
	analysis := &model.AnalysisResult{OCRText: "some prose\n\n```\nfunc main() {}\n```\n"}
	ctx := NewContext("screen.png", doc, analysis)

	out, err := newOCRStep(nil).Process(ctx)
	require.NoError(t, err)

	var sawCode bool
	for _, c := range out.Chunks {
		if c.ChunkType == model.ChunkTypeCode {
			sawCode = true
		}
	}
	assert.True(t, sawCode)
}

func TestOCRStep_Process_WarnsWhenMostlyCode(t *testing.T) {
	doc := &model.Document{ID: 6}
	analysis := &model.AnalysisResult{OCRText: "```\nx = 1\n```\n"}
	ctx := NewContext("screen.png", doc, analysis)

	var warned string
	step := newOCRStep(func(msg string) { warned = msg })
	_, err := step.Process(ctx)
	require.NoError(t, err)
	assert.Contains(t, warned, "classified as code")
}

func TestOCRStep_IsOptional(t *testing.T) {
	assert.True(t, OCRStep{}.IsOptional())
}
