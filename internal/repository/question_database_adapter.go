package repository

import (
	"context"
	"fmt"
	"time"

	"smartquiz/internal/domain"
	"smartquiz/internal/repository/models"
	"smartquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuestionDatabaseAdapter implements domain.QuestionRepository using sqlx.DB
type QuestionDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuestionDatabaseAdapter creates a new instance of QuestionDatabaseAdapter
func NewQuestionDatabaseAdapter(db *sqlx.DB) domain.QuestionRepository {
	return &QuestionDatabaseAdapter{db: db}
}

// SaveQuestions implements domain.QuestionRepository. Questions are
// inserted in order; run inside a transaction via the transaction
// manager when atomicity across the batch is required.
func (a *QuestionDatabaseAdapter) SaveQuestions(ctx context.Context, questions []*domain.Question) error {
	query := `INSERT INTO questions (
		id, quiz_id, text, option_a, option_b, option_c, option_d,
		correct_option, explanation, ai_generated, created_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11
	)`

	executor := GetExecutor(ctx, a.db)
	for _, q := range questions {
		if q == nil {
			return fmt.Errorf("cannot save nil question")
		}
		if q.ID == "" {
			q.ID = util.NewULID()
		}
		if q.CreatedAt.IsZero() {
			q.CreatedAt = time.Now()
		}

		aiGenerated := 0
		if q.AIGenerated {
			aiGenerated = 1
		}

		_, err := executor.ExecContext(ctx, query,
			q.ID,
			q.QuizID,
			q.Text,
			util.StringToNullString(q.OptionA),
			util.StringToNullString(q.OptionB),
			util.StringToNullString(q.OptionC),
			util.StringToNullString(q.OptionD),
			q.CorrectOption,
			util.StringToNullString(q.Explanation),
			aiGenerated,
			q.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to save question for quiz %s: %w", q.QuizID, err)
		}
	}
	return nil
}

// GetQuestionsByQuizID implements domain.QuestionRepository, in
// insertion order.
func (a *QuestionDatabaseAdapter) GetQuestionsByQuizID(ctx context.Context, quizID string) ([]*domain.Question, error) {
	var modelQuestions []models.Question
	query := `SELECT
		id "id",
		quiz_id "quiz_id",
		text "text",
		option_a "option_a",
		option_b "option_b",
		option_c "option_c",
		option_d "option_d",
		correct_option "correct_option",
		explanation "explanation",
		ai_generated "ai_generated",
		created_at "created_at"
	FROM questions
	WHERE quiz_id = :1
	ORDER BY created_at ASC, id ASC`

	executor := GetExecutor(ctx, a.db)
	if err := executor.SelectContext(ctx, &modelQuestions, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %s: %w", quizID, err)
	}

	questions := make([]*domain.Question, 0, len(modelQuestions))
	for i := range modelQuestions {
		questions = append(questions, toDomainQuestion(&modelQuestions[i]))
	}
	return questions, nil
}

func toDomainQuestion(m *models.Question) *domain.Question {
	return &domain.Question{
		ID:            m.ID,
		QuizID:        m.QuizID,
		Text:          m.Text,
		OptionA:       util.NullStringToString(m.OptionA),
		OptionB:       util.NullStringToString(m.OptionB),
		OptionC:       util.NullStringToString(m.OptionC),
		OptionD:       util.NullStringToString(m.OptionD),
		CorrectOption: m.CorrectOption,
		Explanation:   util.NullStringToString(m.Explanation),
		AIGenerated:   m.AIGenerated == 1,
		CreatedAt:     m.CreatedAt,
	}
}
