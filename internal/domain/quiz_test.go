package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to QuizStatus }{
		{StatusDraft, StatusGenerating},
		{StatusGenerating, StatusReady},
		{StatusGenerating, StatusDraft},
		{StatusReady, StatusGenerating},
	}
	for _, tc := range allowed {
		assert.True(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}

	rejected := []struct{ from, to QuizStatus }{
		{StatusDraft, StatusReady},
		{StatusDraft, StatusDraft},
		{StatusReady, StatusDraft},
		{StatusReady, StatusReady},
		{StatusGenerating, StatusGenerating},
	}
	for _, tc := range rejected {
		assert.False(t, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestQuizStatusIsValid(t *testing.T) {
	assert.True(t, StatusDraft.IsValid())
	assert.True(t, StatusGenerating.IsValid())
	assert.True(t, StatusReady.IsValid())
	assert.False(t, QuizStatus("archived").IsValid())
	assert.False(t, QuizStatus("").IsValid())
}

func TestNewQuizDefaults(t *testing.T) {
	quiz := NewQuiz("creator1", "Networking", "TCP", "desc", "")
	assert.Equal(t, StatusGenerating, quiz.Status)
	assert.Equal(t, "any", quiz.Difficulty)
	assert.False(t, quiz.CreatedAt.IsZero())
}

func TestQuizValidate(t *testing.T) {
	quiz := NewQuiz("creator1", "Networking", "", "", "easy")
	require.NoError(t, quiz.Validate())

	quiz.Title = "  "
	assert.Error(t, quiz.Validate())

	quiz.Title = "Networking"
	quiz.CreatorID = ""
	assert.Error(t, quiz.Validate())
}

func TestQuestionValidate(t *testing.T) {
	q := &Question{Text: "What is TCP?", CorrectOption: "a"}
	require.NoError(t, q.Validate())

	q.CorrectOption = "e"
	assert.Error(t, q.Validate())

	q.CorrectOption = "b"
	q.Text = ""
	assert.Error(t, q.Validate())
}

func TestIdentityRoles(t *testing.T) {
	assert.True(t, Identity{ID: "t", Role: RoleTeacher}.CanCreateQuizzes())
	assert.True(t, Identity{ID: "a", Role: RoleAdmin}.CanCreateQuizzes())
	assert.False(t, Identity{ID: "s", Role: RoleStudent}.CanCreateQuizzes())
	assert.False(t, Identity{}.CanCreateQuizzes())
}
