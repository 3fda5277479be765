package service

import (
	"context"
	"strings"

	"smartquiz/internal/cache"
	"smartquiz/internal/domain"
	"smartquiz/internal/logger"
	"smartquiz/internal/quizgen"

	"go.uber.org/zap"
)

// JobRunner executes one generation job to completion. It never lets a
// failure escape its own boundary: every path, including panics, ends
// with the quiz in a terminal, query-able status.
type JobRunner struct {
	quizzes         domain.QuizRepository
	questions       domain.QuestionRepository
	tx              domain.TransactionManager
	extractor       domain.SourceExtractor
	generator       domain.TextGenerator
	lifecycle       *QuizLifecycle
	detailCache     domain.Cache
	sourceCharLimit int
}

// NewJobRunner creates a JobRunner. detailCache may be nil when no
// cache is configured.
func NewJobRunner(
	quizzes domain.QuizRepository,
	questions domain.QuestionRepository,
	tx domain.TransactionManager,
	extractor domain.SourceExtractor,
	generator domain.TextGenerator,
	lifecycle *QuizLifecycle,
	detailCache domain.Cache,
	sourceCharLimit int,
) *JobRunner {
	return &JobRunner{
		quizzes:         quizzes,
		questions:       questions,
		tx:              tx,
		extractor:       extractor,
		generator:       generator,
		lifecycle:       lifecycle,
		detailCache:     detailCache,
		sourceCharLimit: sourceCharLimit,
	}
}

// Run executes the job. It is the worker-pool unit of work and must
// not panic or return: all outcomes are expressed as status writes.
func (r *JobRunner) Run(ctx context.Context, job domain.GenerationJob) {
	log := logger.Get().With(zap.String("quiz_id", job.QuizID))

	defer func() {
		if p := recover(); p != nil {
			log.Error("Generation job panicked", zap.Any("panic", p))
			r.finish(ctx, job.QuizID, domain.StatusDraft, "panic")
		}
	}()

	quiz, err := r.quizzes.GetQuizByID(ctx, job.QuizID)
	if err != nil {
		log.Error("Failed to load quiz for generation job", zap.Error(err))
		return
	}
	if quiz == nil {
		// Orphaned job: the quiz row is gone, nothing to update.
		log.Warn("Quiz not found for generation job, aborting")
		return
	}

	if len(job.FilePaths) == 0 {
		log.Warn("Generation job has no staged files")
		r.finish(ctx, job.QuizID, domain.StatusDraft, "no_files")
		return
	}

	// Only the first staged file feeds the prompt in this design.
	sourceText, err := r.extractor.Extract(job.FilePaths[0])
	if err != nil {
		log.Error("Source extraction failed",
			zap.String("stage", "extract"),
			zap.String("file", job.FilePaths[0]),
			zap.Error(err))
		r.finish(ctx, job.QuizID, domain.StatusDraft, "extract")
		return
	}

	taskPrompt := quizgen.BuildTaskPrompt(job.Params, sourceText, r.sourceCharLimit)
	raw, err := r.generator.Generate(ctx, quizgen.SystemPrompt, taskPrompt, job.Params.ModelOverride)
	if err != nil {
		log.Error("Provider chain exhausted",
			zap.String("stage", "provider"),
			zap.Error(err))
		r.finish(ctx, job.QuizID, domain.StatusDraft, "provider")
		return
	}

	parsed, err := quizgen.Parse(raw, job.Params.NumQuestions)
	if err != nil {
		log.Error("Failed to parse model output",
			zap.String("stage", "parse"),
			zap.Error(err))
		r.finish(ctx, job.QuizID, domain.StatusDraft, "parse")
		return
	}

	saved, err := r.persist(ctx, job.QuizID, parsed)
	if err != nil {
		log.Error("Failed to persist generated questions",
			zap.String("stage", "persist"),
			zap.Error(err))
		r.finish(ctx, job.QuizID, domain.StatusDraft, "persist")
		return
	}

	// An empty batch still finishes ready: a degenerate but valid
	// outcome the read side can observe.
	r.finish(ctx, job.QuizID, domain.StatusReady, "")
	log.Info("Generation job succeeded", zap.Int("questions_saved", saved))
}

// persist writes the valid normalized questions in one transaction and
// reports how many were saved. Items with empty text are skipped
// individually, never failing the batch.
func (r *JobRunner) persist(ctx context.Context, quizID string, parsed []quizgen.ParsedQuestion) (int, error) {
	questions := make([]*domain.Question, 0, len(parsed))
	for _, p := range parsed {
		if strings.TrimSpace(p.Text) == "" {
			logger.Get().Warn("Skipping generated question with empty text",
				zap.String("quiz_id", quizID))
			continue
		}
		questions = append(questions, &domain.Question{
			QuizID:        quizID,
			Text:          p.Text,
			OptionA:       p.OptionA,
			OptionB:       p.OptionB,
			OptionC:       p.OptionC,
			OptionD:       p.OptionD,
			CorrectOption: p.CorrectOption,
			Explanation:   p.Explanation,
			AIGenerated:   true,
		})
	}

	if len(questions) == 0 {
		return 0, nil
	}

	err := r.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return r.questions.SaveQuestions(txCtx, questions)
	})
	if err != nil {
		return 0, err
	}
	return len(questions), nil
}

// finish resolves the quiz to a terminal status and drops any stale
// cached detail so readers observe the new state.
func (r *JobRunner) finish(ctx context.Context, quizID string, status domain.QuizStatus, failedStage string) {
	if err := r.lifecycle.Transition(ctx, quizID, status); err != nil {
		logger.Get().Error("Failed to write terminal quiz status",
			zap.String("quiz_id", quizID),
			zap.String("status", string(status)),
			zap.String("failed_stage", failedStage),
			zap.Error(err))
		return
	}
	if r.detailCache != nil {
		if err := r.detailCache.Delete(ctx, cache.QuizDetailKey(quizID)); err != nil {
			logger.Get().Warn("Failed to invalidate quiz detail cache",
				zap.String("quiz_id", quizID),
				zap.Error(err))
		}
	}
}
