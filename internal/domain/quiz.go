package domain

import (
	"strings"
	"time"
)

// QuizStatus is the lifecycle status of a quiz.
type QuizStatus string

const (
	StatusDraft      QuizStatus = "draft"
	StatusGenerating QuizStatus = "generating"
	StatusReady      QuizStatus = "ready"
)

// IsValid reports whether s is one of the three known statuses.
func (s QuizStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusGenerating, StatusReady:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle state machine permits
// moving from s to next. draft -> generating happens on job scheduling,
// generating -> ready on successful persistence, generating -> draft on
// any failure, and ready -> generating only via an explicit rebuild.
func (s QuizStatus) CanTransitionTo(next QuizStatus) bool {
	switch s {
	case StatusDraft:
		return next == StatusGenerating
	case StatusGenerating:
		return next == StatusReady || next == StatusDraft
	case StatusReady:
		return next == StatusGenerating
	}
	return false
}

// Quiz represents a quiz in the domain
type Quiz struct {
	ID          string
	CreatorID   string
	Title       string
	Topic       string
	Description string
	Difficulty  string
	Status      QuizStatus
	CreatedAt   time.Time
}

// NewQuiz creates a new Quiz in the generating state, ready to be
// handed to the generation pipeline.
func NewQuiz(creatorID, title, topic, description, difficulty string) *Quiz {
	if difficulty == "" {
		difficulty = "any"
	}
	return &Quiz{
		CreatorID:   creatorID,
		Title:       title,
		Topic:       topic,
		Description: description,
		Difficulty:  difficulty,
		Status:      StatusGenerating,
		CreatedAt:   time.Now(),
	}
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return NewValidationError("title is required")
	}
	if q.CreatorID == "" {
		return NewValidationError("creator ID is required")
	}
	if !q.Status.IsValid() {
		return NewValidationError("unknown quiz status: " + string(q.Status))
	}
	return nil
}

// Question represents one multiple-choice question belonging to a quiz.
// Questions are created by the generation pipeline after parser
// validation and are immutable afterwards.
type Question struct {
	ID            string
	QuizID        string
	Text          string
	OptionA       string
	OptionB       string
	OptionC       string
	OptionD       string
	CorrectOption string
	Explanation   string
	AIGenerated   bool
	CreatedAt     time.Time
}

// CorrectOptions are the only labels a question may mark as correct.
var CorrectOptions = []string{"a", "b", "c", "d"}

// IsCorrectOption reports whether v is one of the four option labels.
func IsCorrectOption(v string) bool {
	switch v {
	case "a", "b", "c", "d":
		return true
	}
	return false
}

// Validate validates the question
func (q *Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return NewValidationError("question text is required")
	}
	if !IsCorrectOption(q.CorrectOption) {
		return NewValidationError("correct option must be one of a, b, c, d")
	}
	return nil
}
