package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"smartquiz/internal/domain"
	"smartquiz/internal/repository/models"
	"smartquiz/internal/util"

	"github.com/jmoiron/sqlx"
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db *sqlx.DB
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB) domain.QuizRepository {
	return &QuizDatabaseAdapter{db: db}
}

const quizColumns = `
	id "id",
	creator_id "creator_id",
	title "title",
	topic "topic",
	description "description",
	difficulty "difficulty",
	status "status",
	created_at "created_at"`

// CreateQuiz implements domain.QuizRepository. The quiz gets a fresh
// ULID when the caller has not assigned one.
func (a *QuizDatabaseAdapter) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if quiz == nil {
		return fmt.Errorf("cannot save nil quiz")
	}
	if quiz.ID == "" {
		quiz.ID = util.NewULID()
	}
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = time.Now()
	}

	query := `INSERT INTO quizzes (
		id, creator_id, title, topic, description, difficulty, status, created_at
	) VALUES (
		:1, :2, :3, :4, :5, :6, :7, :8
	)`

	executor := GetExecutor(ctx, a.db)
	_, err := executor.ExecContext(ctx, query,
		quiz.ID,
		quiz.CreatorID,
		quiz.Title,
		util.StringToNullString(quiz.Topic),
		util.StringToNullString(quiz.Description),
		quiz.Difficulty,
		string(quiz.Status),
		quiz.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save quiz: %w", err)
	}
	return nil
}

// GetQuizByID implements domain.QuizRepository. Returns (nil, nil)
// when no row exists.
func (a *QuizDatabaseAdapter) GetQuizByID(ctx context.Context, id string) (*domain.Quiz, error) {
	var modelQuiz models.Quiz
	query := `SELECT ` + quizColumns + `
	FROM quizzes
	WHERE id = :1`

	executor := GetExecutor(ctx, a.db)
	err := executor.GetContext(ctx, &modelQuiz, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %s: %w", id, err)
	}
	return toDomainQuiz(&modelQuiz), nil
}

// UpdateStatus implements domain.QuizRepository.
func (a *QuizDatabaseAdapter) UpdateStatus(ctx context.Context, id string, status domain.QuizStatus) error {
	query := `UPDATE quizzes SET status = :1 WHERE id = :2`

	executor := GetExecutor(ctx, a.db)
	if _, err := executor.ExecContext(ctx, query, string(status), id); err != nil {
		return fmt.Errorf("failed to update quiz status for %s: %w", id, err)
	}
	return nil
}

// ListByStatus implements domain.QuizRepository, most recent first.
func (a *QuizDatabaseAdapter) ListByStatus(ctx context.Context, status domain.QuizStatus, limit int) ([]*domain.Quiz, error) {
	var modelQuizzes []models.Quiz
	query := `SELECT ` + quizColumns + `
	FROM quizzes
	WHERE status = :1
	ORDER BY created_at DESC
	FETCH FIRST :2 ROWS ONLY`

	executor := GetExecutor(ctx, a.db)
	if err := executor.SelectContext(ctx, &modelQuizzes, query, string(status), limit); err != nil {
		return nil, fmt.Errorf("failed to list quizzes by status %s: %w", status, err)
	}
	return toDomainQuizzes(modelQuizzes), nil
}

// ListByCreator implements domain.QuizRepository, most recent first.
func (a *QuizDatabaseAdapter) ListByCreator(ctx context.Context, creatorID string) ([]*domain.Quiz, error) {
	var modelQuizzes []models.Quiz
	query := `SELECT ` + quizColumns + `
	FROM quizzes
	WHERE creator_id = :1
	ORDER BY created_at DESC`

	executor := GetExecutor(ctx, a.db)
	if err := executor.SelectContext(ctx, &modelQuizzes, query, creatorID); err != nil {
		return nil, fmt.Errorf("failed to list quizzes by creator %s: %w", creatorID, err)
	}
	return toDomainQuizzes(modelQuizzes), nil
}

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	return &domain.Quiz{
		ID:          m.ID,
		CreatorID:   m.CreatorID,
		Title:       m.Title,
		Topic:       util.NullStringToString(m.Topic),
		Description: util.NullStringToString(m.Description),
		Difficulty:  m.Difficulty,
		Status:      domain.QuizStatus(m.Status),
		CreatedAt:   m.CreatedAt,
	}
}

func toDomainQuizzes(ms []models.Quiz) []*domain.Quiz {
	quizzes := make([]*domain.Quiz, 0, len(ms))
	for i := range ms {
		quizzes = append(quizzes, toDomainQuiz(&ms[i]))
	}
	return quizzes
}
