package domain

import "context"

// QuizRepository is the persistence port for quizzes. GetQuizByID
// returns (nil, nil) when no row exists.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *Quiz) error
	GetQuizByID(ctx context.Context, id string) (*Quiz, error)
	UpdateStatus(ctx context.Context, id string, status QuizStatus) error
	ListByStatus(ctx context.Context, status QuizStatus, limit int) ([]*Quiz, error)
	ListByCreator(ctx context.Context, creatorID string) ([]*Quiz, error)
}

// QuestionRepository is the persistence port for questions.
type QuestionRepository interface {
	SaveQuestions(ctx context.Context, questions []*Question) error
	GetQuestionsByQuizID(ctx context.Context, quizID string) ([]*Question, error)
}

// TransactionManager runs fn within a single database transaction.
// The transaction is carried through the context so repositories can
// pick it up transparently.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
