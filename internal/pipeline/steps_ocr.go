package pipeline

import (
	"fmt"

	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
	"github.com/Aman-CERP/knowledgeengine/internal/mdparse"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
	"github.com/Aman-CERP/knowledgeengine/internal/splitter"
)

// OCRStep wraps analysis.OCRText as a markdown-typed synthetic document
// (so fenced code in the recognized text isolates into its own code
// chunks rather than diluting prose) and splits it with the shared
// splitter, tagging each resulting chunk with role=ocr.
type OCRStep struct {
	Splitter *splitter.Splitter
	Parser   *mdparse.Parser
	Warn     func(msg string)
}

func (OCRStep) StepName() string { return "ocr" }

func (OCRStep) ShouldRun(ctx *Context) bool {
	return ctx.Analysis != nil && ctx.Analysis.OCRText != ""
}

func (OCRStep) IsOptional() bool { return true }

func (o OCRStep) Process(ctx *Context) (*Context, error) {
	segments, err := o.Parser.Parse(ctx.Analysis.OCRText)
	if err != nil {
		return nil, errdefs.NewPipelineError("ocr", "parse ocr text as markdown", err)
	}
	for i := range segments {
		if segments[i].Type == model.ChunkTypeText {
			segments[i].Type = model.ChunkTypeOCR
		}
	}

	chunks := o.Splitter.Split(ctx.Document.ID, segments)

	codeCount := 0
	for i, c := range chunks {
		c.ChunkIndex = ctx.BaseIndex + i
		if c.Metadata == nil {
			c.Metadata = map[string]string{}
		}
		c.Metadata["role"] = string(model.RoleOCR)
		if c.ChunkType == model.ChunkTypeCode {
			codeCount++
		}
	}

	if o.Warn != nil && len(chunks) > 0 && float64(codeCount)/float64(len(chunks)) > 0.5 {
		o.Warn(fmt.Sprintf("ocr: %d/%d chunks classified as code; on-screen text may be misdetected", codeCount, len(chunks)))
	}

	return ctx.WithChunks(chunks), nil
}
