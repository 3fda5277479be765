package domain

import "context"

// GenerationParams carries the creator-supplied parameters of one
// generation job.
type GenerationParams struct {
	Title         string
	Topic         string
	Difficulty    string
	NumQuestions  int
	ModelOverride string
}

// GenerationJob is one unit of asynchronous generation work tied to a
// quiz ID. It is created by the submission service or the rebuild
// selector, consumed exactly once by the job runner, then discarded.
type GenerationJob struct {
	QuizID    string
	FilePaths []string
	Params    GenerationParams
}

// TextProvider is a single text-generation backend. Providers report
// whether they are usable via Available so that an unconfigured or
// disabled provider can be skipped without counting as a failure.
type TextProvider interface {
	Name() string
	Available() bool
	Generate(ctx context.Context, system, prompt, model string) (string, error)
}

// TextGenerator is the provider fallback chain as seen by the job
// runner: one call that either yields raw model output or fails with
// CodeProviderUnavailable once every provider is exhausted.
type TextGenerator interface {
	Generate(ctx context.Context, system, prompt, model string) (string, error)
}

// SourceExtractor turns a staged source document into plain text
// usable as model input.
type SourceExtractor interface {
	Extract(path string) (string, error)
}

// JobQueue schedules a generation job for asynchronous execution. The
// call must return without waiting for the job to run.
type JobQueue interface {
	Enqueue(job GenerationJob) error
}
