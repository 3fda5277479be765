package validation

import (
	"strings"
	"testing"

	"smartquiz/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateGenerateRequestValid(t *testing.T) {
	v := NewValidator()

	errs := v.ValidateGenerateRequest(&dto.GenerateQuizRequest{
		Title:        "Networking Basics",
		Topic:        "TCP",
		Difficulty:   "medium",
		NumQuestions: 5,
	})
	assert.Empty(t, errs)
}

func TestValidateGenerateRequestMissingTitle(t *testing.T) {
	v := NewValidator()

	errs := v.ValidateGenerateRequest(&dto.GenerateQuizRequest{Title: "   "})
	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Field)
}

func TestValidateGenerateRequestBadDifficulty(t *testing.T) {
	v := NewValidator()

	errs := v.ValidateGenerateRequest(&dto.GenerateQuizRequest{
		Title:      "Networking",
		Difficulty: "impossible",
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "difficulty", errs[0].Field)
}

func TestValidateGenerateRequestQuestionCountRange(t *testing.T) {
	v := NewValidator()

	errs := v.ValidateGenerateRequest(&dto.GenerateQuizRequest{
		Title:        "Networking",
		NumQuestions: 50,
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "num_questions", errs[0].Field)

	// Zero means default, not an error.
	errs = v.ValidateGenerateRequest(&dto.GenerateQuizRequest{Title: "Networking"})
	assert.Empty(t, errs)
}

func TestValidateGenerateRequestTitleTooLong(t *testing.T) {
	v := NewValidator()

	errs := v.ValidateGenerateRequest(&dto.GenerateQuizRequest{
		Title: strings.Repeat("x", 201),
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "title", errs[0].Field)
}

func TestValidateQuizID(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateQuizID("01HZXCV0123456789ABCDEFGHJ"))
	assert.Len(t, v.ValidateQuizID(""), 1)
	assert.Len(t, v.ValidateQuizID("not-a-ulid"), 1)
	assert.Len(t, v.ValidateQuizID("01HZXCV0123456789ABCDEFGHI"), 1) // 'I' not in Crockford base32
}
