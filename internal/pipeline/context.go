// Package pipeline converts a media Analyzer's AnalysisResult, plus the
// source Document, into an ordered list of chunks via a sequence of
// immutable processing steps.
package pipeline

import (
	"github.com/Aman-CERP/knowledgeengine/internal/model"
)

// Context is the immutable accumulator threaded through each ProcessingStep.
// Every mutation goes through WithChunks, which returns a new Context rather
// than modifying the receiver — a step can never see another step's
// in-progress state, only what was frozen before it ran.
type Context struct {
	MediaPath        string
	Document         *model.Document
	Analysis         *model.AnalysisResult
	Chunks           []*model.Chunk
	BaseIndex        int
	Services         map[string]any
	UserInstructions string
}

// NewContext builds the initial Context for a document's media pipeline
// run, with no chunks produced yet.
func NewContext(mediaPath string, doc *model.Document, analysis *model.AnalysisResult) *Context {
	return &Context{
		MediaPath: mediaPath,
		Document:  doc,
		Analysis:  analysis,
		Services:  map[string]any{},
	}
}

// WithChunks returns a new Context with newChunks appended and BaseIndex
// advanced accordingly. The receiver is left untouched.
func (c *Context) WithChunks(newChunks []*model.Chunk) *Context {
	next := *c
	next.Chunks = append(append([]*model.Chunk{}, c.Chunks...), newChunks...)
	next.BaseIndex = c.BaseIndex + len(newChunks)
	return &next
}

// WithUserInstructions returns a new Context carrying custom instructions
// (used by reanalyze to steer a single step's re-run).
func (c *Context) WithUserInstructions(instructions string) *Context {
	next := *c
	next.UserInstructions = instructions
	return &next
}
