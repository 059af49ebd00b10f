package pipeline

// ProcessingStep is one stage of the media pipeline. Steps never mutate the
// Context they receive; Process returns a new Context built via
// Context.WithChunks.
type ProcessingStep interface {
	// StepName is a stable identifier used for registration, logging, and
	// rerun_step lookups.
	StepName() string

	// ShouldRun reports whether this step applies to ctx's analysis.
	ShouldRun(ctx *Context) bool

	// IsOptional reports whether a failure here should be swallowed (logged,
	// pipeline continues) rather than aborting the whole run.
	IsOptional() bool

	// Process runs the step and returns the resulting Context.
	Process(ctx *Context) (*Context, error)
}
