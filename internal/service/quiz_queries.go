package service

import (
	"context"
	"encoding/json"
	"time"

	"smartquiz/internal/cache"
	"smartquiz/internal/domain"
	"smartquiz/internal/dto"
	"smartquiz/internal/logger"

	"go.uber.org/zap"
)

const defaultListLimit = 50

// QuizQueryService serves the read side: status polling, quiz detail
// and list endpoints. Ready quiz details are cached; anything still in
// flight is always read from the database.
type QuizQueryService struct {
	quizzes     domain.QuizRepository
	questions   domain.QuestionRepository
	detailCache domain.Cache
	detailTTL   time.Duration
}

func NewQuizQueryService(
	quizzes domain.QuizRepository,
	questions domain.QuestionRepository,
	detailCache domain.Cache,
	detailTTL time.Duration,
) *QuizQueryService {
	return &QuizQueryService{
		quizzes:     quizzes,
		questions:   questions,
		detailCache: detailCache,
		detailTTL:   detailTTL,
	}
}

// GetStatus returns the current lifecycle status of a quiz.
func (s *QuizQueryService) GetStatus(ctx context.Context, quizID string) (*dto.StatusResponse, error) {
	quiz, err := s.quizzes.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz status", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	return &dto.StatusResponse{QuizID: quiz.ID, Status: string(quiz.Status)}, nil
}

// GetDetail returns a quiz with its questions. Ready quizzes are
// public; drafts and in-flight quizzes are visible only to their
// creator or a privileged caller.
func (s *QuizQueryService) GetDetail(ctx context.Context, ident domain.Identity, quizID string) (*dto.QuizDetailResponse, error) {
	if cached := s.cachedDetail(ctx, quizID); cached != nil {
		return cached, nil
	}

	quiz, err := s.quizzes.GetQuizByID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	if quiz.Status != domain.StatusReady && quiz.CreatorID != ident.ID && !ident.Privileged() {
		return nil, domain.NewPermissionDeniedError("quiz is not published")
	}

	questions, err := s.questions.GetQuestionsByQuizID(ctx, quizID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz questions", err)
	}

	detail := &dto.QuizDetailResponse{
		QuizResponse: toQuizResponse(quiz),
		Questions:    make([]dto.QuestionResponse, 0, len(questions)),
	}
	for _, q := range questions {
		detail.Questions = append(detail.Questions, dto.QuestionResponse{
			ID:            q.ID,
			Text:          q.Text,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			OptionD:       q.OptionD,
			CorrectOption: q.CorrectOption,
			Explanation:   q.Explanation,
			AIGenerated:   q.AIGenerated,
		})
	}

	// Only ready quizzes are cached; their detail never changes until
	// a rebuild, which invalidates the key.
	if quiz.Status == domain.StatusReady {
		s.storeDetail(ctx, quizID, detail)
	}
	return detail, nil
}

// ListReady returns published quizzes ordered newest first.
func (s *QuizQueryService) ListReady(ctx context.Context) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizzes.ListByStatus(ctx, domain.StatusReady, defaultListLimit)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes", err)
	}
	return toQuizResponses(quizzes), nil
}

// ListByCreator returns every quiz the caller created, whatever its
// status.
func (s *QuizQueryService) ListByCreator(ctx context.Context, ident domain.Identity) ([]dto.QuizResponse, error) {
	quizzes, err := s.quizzes.ListByCreator(ctx, ident.ID)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes by creator", err)
	}
	return toQuizResponses(quizzes), nil
}

func (s *QuizQueryService) cachedDetail(ctx context.Context, quizID string) *dto.QuizDetailResponse {
	if s.detailCache == nil {
		return nil
	}
	raw, err := s.detailCache.Get(ctx, cache.QuizDetailKey(quizID))
	if err != nil {
		if err != domain.ErrCacheMiss {
			logger.Get().Warn("Quiz detail cache read failed",
				zap.String("quiz_id", quizID), zap.Error(err))
		}
		return nil
	}
	var detail dto.QuizDetailResponse
	if err := json.Unmarshal([]byte(raw), &detail); err != nil {
		logger.Get().Warn("Dropping undecodable quiz detail cache entry",
			zap.String("quiz_id", quizID), zap.Error(err))
		return nil
	}
	return &detail
}

func (s *QuizQueryService) storeDetail(ctx context.Context, quizID string, detail *dto.QuizDetailResponse) {
	if s.detailCache == nil {
		return
	}
	payload, err := json.Marshal(detail)
	if err != nil {
		logger.Get().Warn("Failed to encode quiz detail for cache",
			zap.String("quiz_id", quizID), zap.Error(err))
		return
	}
	if err := s.detailCache.Set(ctx, cache.QuizDetailKey(quizID), string(payload), s.detailTTL); err != nil {
		logger.Get().Warn("Quiz detail cache write failed",
			zap.String("quiz_id", quizID), zap.Error(err))
	}
}

func toQuizResponse(q *domain.Quiz) dto.QuizResponse {
	return dto.QuizResponse{
		ID:          q.ID,
		Title:       q.Title,
		Topic:       q.Topic,
		Description: q.Description,
		Difficulty:  q.Difficulty,
		Status:      string(q.Status),
		CreatedAt:   q.CreatedAt,
	}
}

func toQuizResponses(quizzes []*domain.Quiz) []dto.QuizResponse {
	out := make([]dto.QuizResponse, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, toQuizResponse(q))
	}
	return out
}
