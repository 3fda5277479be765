package service

import (
	"context"
	"fmt"

	"smartquiz/internal/domain"
	"smartquiz/internal/dto"
	"smartquiz/internal/logger"
	"smartquiz/internal/storage"

	"go.uber.org/zap"
)

// SubmissionService validates a creation request, stages uploaded
// files, creates the quiz record and schedules the generation job. It
// returns as soon as the job is enqueued; the caller never waits on
// generation.
type SubmissionService struct {
	quizzes          domain.QuizRepository
	lifecycle        *QuizLifecycle
	staging          *storage.Staging
	queue            domain.JobQueue
	maxFiles         int
	defaultQuestions int
}

// NewSubmissionService creates a SubmissionService.
func NewSubmissionService(
	quizzes domain.QuizRepository,
	lifecycle *QuizLifecycle,
	staging *storage.Staging,
	queue domain.JobQueue,
	maxFiles int,
	defaultQuestions int,
) *SubmissionService {
	if maxFiles <= 0 {
		maxFiles = 10
	}
	if defaultQuestions <= 0 {
		defaultQuestions = 5
	}
	return &SubmissionService{
		quizzes:          quizzes,
		lifecycle:        lifecycle,
		staging:          staging,
		queue:            queue,
		maxFiles:         maxFiles,
		defaultQuestions: defaultQuestions,
	}
}

// Submit implements the submission contract: validation happens before
// any row or file is written; once the quiz row exists, a staging
// failure forces the quiz back to draft and surfaces a storage error.
func (s *SubmissionService) Submit(ctx context.Context, ident domain.Identity, req dto.GenerateQuizRequest, files []storage.SourceFile) (*dto.SubmitResponse, error) {
	if !ident.CanCreateQuizzes() {
		return nil, domain.NewValidationError("creator role required to generate quizzes")
	}
	if len(files) == 0 {
		return nil, domain.NewValidationError("no files uploaded")
	}
	if len(files) > s.maxFiles {
		return nil, domain.NewValidationError(
			fmt.Sprintf("too many files: max allowed is %d", s.maxFiles))
	}

	numQuestions := req.NumQuestions
	if numQuestions <= 0 {
		numQuestions = s.defaultQuestions
	}

	quiz := domain.NewQuiz(ident.ID, req.Title, req.Topic, "AI-generated from uploaded file(s)", req.Difficulty)
	if err := quiz.Validate(); err != nil {
		return nil, err
	}
	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return nil, domain.NewStorageError("failed to create quiz record", err)
	}

	dir, paths, err := s.staging.Stage(ident.ID, files)
	if err != nil {
		s.forceDraft(ctx, quiz.ID, "staging")
		return nil, err
	}

	job := domain.GenerationJob{
		QuizID:    quiz.ID,
		FilePaths: paths,
		Params: domain.GenerationParams{
			Title:         req.Title,
			Topic:         req.Topic,
			Difficulty:    quiz.Difficulty,
			NumQuestions:  numQuestions,
			ModelOverride: req.Model,
		},
	}

	if err := s.queue.Enqueue(job); err != nil {
		s.forceDraft(ctx, quiz.ID, "scheduling")
		return nil, domain.NewStorageError("failed to schedule generation job", err)
	}

	logger.Get().Info("Generation job scheduled",
		zap.String("quiz_id", quiz.ID),
		zap.String("creator_id", ident.ID),
		zap.String("staging_dir", dir),
		zap.Int("files", len(paths)),
		zap.Int("num_questions", numQuestions))

	return &dto.SubmitResponse{
		QuizID: quiz.ID,
		Status: string(domain.StatusGenerating),
	}, nil
}

// forceDraft resolves the quiz to its failure-terminal status after a
// submission-time error. Best effort: the original error is what the
// caller sees.
func (s *SubmissionService) forceDraft(ctx context.Context, quizID, stage string) {
	if err := s.lifecycle.Transition(ctx, quizID, domain.StatusDraft); err != nil {
		logger.Get().Error("Failed to force quiz to draft",
			zap.String("quiz_id", quizID),
			zap.String("stage", stage),
			zap.Error(err))
	}
}
