package validation

import (
	"regexp"
	"strings"

	"smartquiz/internal/domain"
	"smartquiz/internal/dto"
)

const (
	maxTitleLength      = 200
	maxTopicLength      = 200
	maxQuestionsPerQuiz = 20
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerateRequest validates a generate-from-file submission.
func (v *Validator) ValidateGenerateRequest(req *dto.GenerateQuizRequest) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(req.Title) == "" {
		errors = append(errors, domain.NewMissingFieldError("title"))
	} else if len(req.Title) > maxTitleLength {
		errors = append(errors, domain.NewOutOfRangeError("title", len(req.Title), 1, maxTitleLength))
	}

	if len(req.Topic) > maxTopicLength {
		errors = append(errors, domain.NewOutOfRangeError("topic", len(req.Topic), 0, maxTopicLength))
	}

	if req.Difficulty != "" && !isValidDifficulty(req.Difficulty) {
		errors = append(errors, domain.NewInvalidFormatError("difficulty", req.Difficulty))
	}

	// Zero means "use the configured default"; anything else must be
	// within range.
	if req.NumQuestions < 0 || req.NumQuestions > maxQuestionsPerQuiz {
		errors = append(errors, domain.NewOutOfRangeError("num_questions", req.NumQuestions, 1, maxQuestionsPerQuiz))
	}

	return errors
}

// ValidateQuizID validates a quiz ID path parameter.
func (v *Validator) ValidateQuizID(quizID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(quizID) == "" {
		errors = append(errors, domain.NewMissingFieldError("quiz_id"))
	} else if !isValidULID(quizID) {
		errors = append(errors, domain.NewInvalidFormatError("quiz_id", quizID))
	}

	return errors
}

// Helper functions for validation

func isValidDifficulty(s string) bool {
	switch strings.ToLower(s) {
	case "any", "easy", "medium", "hard":
		return true
	}
	return false
}

// isValidULID checks if the string is a valid ULID format
func isValidULID(s string) bool {
	// ULID is 26 characters long, base32 encoded
	if len(s) != 26 {
		return false
	}
	// Check if all characters are valid base32 (Crockford's Base32)
	validULID := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	return validULID.MatchString(s)
}
