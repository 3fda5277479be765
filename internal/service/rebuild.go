package service

import (
	"context"

	"smartquiz/internal/cache"
	"smartquiz/internal/domain"
	"smartquiz/internal/dto"
	"smartquiz/internal/logger"
	"smartquiz/internal/storage"

	"go.uber.org/zap"
)

// rebuildQuestionCount is the fixed batch size for a rebuild run. A
// rebuild replaces nothing; it appends a fresh batch on top of what
// the quiz already has.
const rebuildQuestionCount = 10

// RebuildService re-runs generation for an existing quiz against the
// caller's most recent staged upload.
type RebuildService struct {
	quizzes     domain.QuizRepository
	lifecycle   *QuizLifecycle
	staging     *storage.Staging
	queue       domain.JobQueue
	recognized  func(string) bool
	detailCache domain.Cache
}

func NewRebuildService(
	quizzes domain.QuizRepository,
	lifecycle *QuizLifecycle,
	staging *storage.Staging,
	queue domain.JobQueue,
	recognized func(string) bool,
	detailCache domain.Cache,
) *RebuildService {
	return &RebuildService{
		quizzes:     quizzes,
		lifecycle:   lifecycle,
		staging:     staging,
		queue:       queue,
		recognized:  recognized,
		detailCache: detailCache,
	}
}

// Rebuild validates ownership, locates the newest staged source for
// the caller, flips the quiz back to generating and enqueues a new
// generation job.
func (s *RebuildService) Rebuild(ctx context.Context, ident domain.Identity, quizID string) (*dto.RebuildResponse, error) {
	quiz, err := s.quizzes.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz for rebuild", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if quiz.CreatorID != ident.ID && !ident.Privileged() {
		return nil, domain.NewPermissionDeniedError("only the quiz creator can rebuild it")
	}

	dir, paths, err := s.staging.LatestWithSource(ident.ID, s.recognized)
	if err != nil {
		return nil, err
	}

	if err := s.lifecycle.Transition(ctx, quizID, domain.StatusGenerating); err != nil {
		return nil, err
	}
	// The quiz is no longer ready; a cached detail would keep serving
	// it as published for the whole generation window.
	if s.detailCache != nil {
		if err := s.detailCache.Delete(ctx, cache.QuizDetailKey(quizID)); err != nil {
			logger.Get().Warn("Failed to invalidate quiz detail cache",
				zap.String("quiz_id", quizID),
				zap.Error(err))
		}
	}

	job := domain.GenerationJob{
		QuizID:    quizID,
		FilePaths: paths,
		Params: domain.GenerationParams{
			Title:        quiz.Title,
			Topic:        quiz.Topic,
			Difficulty:   quiz.Difficulty,
			NumQuestions: rebuildQuestionCount,
		},
	}
	if err := s.queue.Enqueue(job); err != nil {
		if derr := s.lifecycle.Transition(ctx, quizID, domain.StatusDraft); derr != nil {
			logger.Get().Error("Failed to roll quiz back to draft after enqueue failure",
				zap.String("quiz_id", quizID),
				zap.Error(derr))
		}
		return nil, domain.NewStorageError("failed to schedule rebuild job", err)
	}

	logger.Get().Info("Quiz rebuild scheduled",
		zap.String("quiz_id", quizID),
		zap.String("creator_id", ident.ID),
		zap.Int("files_count", len(paths)))

	return &dto.RebuildResponse{
		QuizID:     quizID,
		Status:     string(domain.StatusGenerating),
		SourceUsed: dir,
		FilesCount: len(paths),
	}, nil
}
