package service

import (
	"context"
	"fmt"

	"smartquiz/internal/domain"
	"smartquiz/internal/logger"

	"go.uber.org/zap"
)

// QuizLifecycle owns every write to the quiz status column. Both the
// job runner and the submission path go through it, so the transition
// table in domain.QuizStatus is enforced in exactly one place.
type QuizLifecycle struct {
	quizzes domain.QuizRepository
}

// NewQuizLifecycle creates the lifecycle manager.
func NewQuizLifecycle(quizzes domain.QuizRepository) *QuizLifecycle {
	return &QuizLifecycle{quizzes: quizzes}
}

// Transition moves the quiz to the next status if the state machine
// permits it. Invalid transitions are rejected with a validation
// error; the stored status is left untouched.
func (l *QuizLifecycle) Transition(ctx context.Context, quizID string, next domain.QuizStatus) error {
	if !next.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("unknown quiz status: %s", next))
	}

	quiz, err := l.quizzes.GetQuizByID(ctx, quizID)
	if err != nil {
		return domain.NewInternalError("failed to load quiz for status transition", err)
	}
	if quiz == nil {
		return domain.NewQuizNotFoundError(quizID)
	}

	if quiz.Status == next {
		// Repeating a terminal write is harmless and keeps failure
		// paths idempotent.
		return nil
	}

	if !quiz.Status.CanTransitionTo(next) {
		return domain.NewValidationError(
			fmt.Sprintf("invalid status transition %s -> %s for quiz %s", quiz.Status, next, quizID))
	}

	if err := l.quizzes.UpdateStatus(ctx, quizID, next); err != nil {
		return domain.NewInternalError("failed to update quiz status", err)
	}

	logger.Get().Info("Quiz status transition",
		zap.String("quiz_id", quizID),
		zap.String("from", string(quiz.Status)),
		zap.String("to", string(next)))
	return nil
}
