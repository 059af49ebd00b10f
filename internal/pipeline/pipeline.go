package pipeline

import (
	"context"
	"fmt"

	"github.com/Aman-CERP/knowledgeengine/internal/errdefs"
	"github.com/Aman-CERP/knowledgeengine/internal/mdparse"
	"github.com/Aman-CERP/knowledgeengine/internal/model"
	"github.com/Aman-CERP/knowledgeengine/internal/splitter"
)

// chunkStore is the narrow slice of store.Store the pipeline needs:
// clearing a step's prior output before rerun_step re-runs it.
type chunkStore interface {
	DeleteChunksByRole(ctx context.Context, documentID int64, role model.Role) error
}

// stepRole maps a step name to the chunk role its output carries.
var stepRole = map[string]model.Role{
	"summary":       model.RoleSummary,
	"transcription": model.RoleTranscript,
	"ocr":           model.RoleOCR,
}

// Pipeline runs an ordered sequence of ProcessingSteps over a Context to
// produce a media document's chunks. An optional step's failure is demoted
// to a warning and the run continues; a critical step's failure aborts it.
type Pipeline struct {
	steps []ProcessingStep
	store chunkStore
	warn  func(msg string)
}

// New returns a Pipeline seeded with the default step order: summary,
// transcription, ocr. sp and parser back the transcription/ocr steps; warn
// receives non-fatal diagnostics (nil discards them).
func New(sp *splitter.Splitter, parser *mdparse.Parser, store chunkStore, warn func(msg string)) *Pipeline {
	if warn == nil {
		warn = func(string) {}
	}
	return &Pipeline{
		steps: []ProcessingStep{
			SummaryStep{},
			TranscriptionStep{Splitter: sp},
			OCRStep{Splitter: sp, Parser: parser, Warn: warn},
		},
		store: store,
		warn:  warn,
	}
}

// RegisterStep inserts step at position, or appends it when position is nil
// or out of range.
func (p *Pipeline) RegisterStep(step ProcessingStep, position *int) {
	if position == nil || *position < 0 || *position > len(p.steps) {
		p.steps = append(p.steps, step)
		return
	}
	p.steps = append(p.steps[:*position:*position], append([]ProcessingStep{step}, p.steps[*position:]...)...)
}

// Run threads start through every registered step in order, skipping steps
// whose ShouldRun returns false.
func (p *Pipeline) Run(start *Context) (*Context, error) {
	cur := start
	for _, step := range p.steps {
		if !step.ShouldRun(cur) {
			continue
		}
		next, err := step.Process(cur)
		if err != nil {
			if step.IsOptional() {
				p.warn(fmt.Sprintf("pipeline: optional step %q failed: %v", step.StepName(), err))
				continue
			}
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// RerunStep deletes documentID's existing chunks of the role stepName
// produces, then re-runs just that step against start, returning the
// chunks it produced (empty when the step's ShouldRun now reports false).
func (p *Pipeline) RerunStep(ctx context.Context, stepName string, documentID int64, start *Context) ([]*model.Chunk, error) {
	role, ok := stepRole[stepName]
	if !ok {
		return nil, errdefs.NewPipelineError(stepName, "unknown step name", nil)
	}

	var step ProcessingStep
	for _, s := range p.steps {
		if s.StepName() == stepName {
			step = s
			break
		}
	}
	if step == nil {
		return nil, errdefs.NewPipelineError(stepName, "step not registered", nil)
	}

	if err := p.store.DeleteChunksByRole(ctx, documentID, role); err != nil {
		return nil, err
	}

	if !step.ShouldRun(start) {
		return nil, nil
	}

	next, err := step.Process(start)
	if err != nil {
		return nil, errdefs.NewPipelineError(stepName, "rerun failed", err)
	}
	return next.Chunks[start.BaseIndex:], nil
}
