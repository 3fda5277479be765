package service

import (
	"context"
	"errors"
	"testing"

	"smartquiz/internal/cache"
	"smartquiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const validModelOutput = `[
	{"text": "What does TCP stand for?", "option_a": "Transmission Control Protocol", "option_b": "b", "option_c": "c", "option_d": "d", "correct_option": "a", "explanation": "By definition."},
	{"text": "", "option_a": "x", "option_b": "y", "correct_option": "b"},
	{"text": "How many handshake steps?", "option_a": "1", "option_b": "2", "option_c": "3", "option_d": "4", "correct_option": "C"}
]`

type runnerFixture struct {
	runner    *JobRunner
	repo      *MockQuizRepository
	questions *MockQuestionRepository
	tx        *MockTransactionManager
	extractor *MockSourceExtractor
	generator *MockTextGenerator
	cache     *MockCache
}

func newRunnerFixture() *runnerFixture {
	f := &runnerFixture{
		repo:      new(MockQuizRepository),
		questions: new(MockQuestionRepository),
		tx:        new(MockTransactionManager),
		extractor: new(MockSourceExtractor),
		generator: new(MockTextGenerator),
		cache:     new(MockCache),
	}
	f.runner = NewJobRunner(
		f.repo, f.questions, f.tx, f.extractor, f.generator,
		NewQuizLifecycle(f.repo), f.cache, 12000,
	)
	return f
}

func generatingJob() domain.GenerationJob {
	return domain.GenerationJob{
		QuizID:    "01HZXCV0000000000000000000",
		FilePaths: []string{"/tmp/staged/lecture.pdf"},
		Params: domain.GenerationParams{
			Title:        "Networking",
			Topic:        "TCP",
			Difficulty:   "medium",
			NumQuestions: 5,
		},
	}
}

func TestRunSuccessPersistsAndGoesReady(t *testing.T) {
	f := newRunnerFixture()
	job := generatingJob()

	f.repo.On("GetQuizByID", mock.Anything, job.QuizID).Return(quizInStatus(domain.StatusGenerating), nil)
	f.extractor.On("Extract", job.FilePaths[0]).Return("source text", nil)
	f.generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, "").Return(validModelOutput, nil)
	f.tx.On("WithTransaction", mock.Anything).Return(nil)
	f.questions.On("SaveQuestions", mock.Anything, mock.AnythingOfType("[]*domain.Question")).Return(nil)
	f.repo.On("UpdateStatus", mock.Anything, job.QuizID, domain.StatusReady).Return(nil)
	f.cache.On("Delete", mock.Anything, cache.QuizDetailKey(job.QuizID)).Return(nil)

	f.runner.Run(context.Background(), job)

	// The empty-text question is dropped; the other two are persisted.
	saved := f.questions.Calls[0].Arguments.Get(1).([]*domain.Question)
	require.Len(t, saved, 2)
	assert.Equal(t, "a", saved[0].CorrectOption)
	assert.Equal(t, "c", saved[1].CorrectOption)
	assert.True(t, saved[0].AIGenerated)
	f.repo.AssertCalled(t, "UpdateStatus", mock.Anything, job.QuizID, domain.StatusReady)
	f.cache.AssertExpectations(t)
}

func TestRunOrphanQuizAborts(t *testing.T) {
	f := newRunnerFixture()
	job := generatingJob()

	f.repo.On("GetQuizByID", mock.Anything, job.QuizID).Return(nil, nil)

	f.runner.Run(context.Background(), job)

	f.extractor.AssertNotCalled(t, "Extract", mock.Anything)
	f.repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunNoFilesGoesDraft(t *testing.T) {
	f := newRunnerFixture()
	job := generatingJob()
	job.FilePaths = nil

	f.repo.On("GetQuizByID", mock.Anything, job.QuizID).Return(quizInStatus(domain.StatusGenerating), nil)
	f.repo.On("UpdateStatus", mock.Anything, job.QuizID, domain.StatusDraft).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	f.runner.Run(context.Background(), job)

	f.repo.AssertCalled(t, "UpdateStatus", mock.Anything, job.QuizID, domain.StatusDraft)
	f.extractor.AssertNotCalled(t, "Extract", mock.Anything)
}

func TestRunExtractionFailureGoesDraft(t *testing.T) {
	f := newRunnerFixture()
	job := generatingJob()

	f.repo.On("GetQuizByID", mock.Anything, job.QuizID).Return(quizInStatus(domain.StatusGenerating), nil)
	f.extractor.On("Extract", job.FilePaths[0]).Return("", domain.NewExtractionError("unreadable pdf", errors.New("bad xref")))
	f.repo.On("UpdateStatus", mock.Anything, job.QuizID, domain.StatusDraft).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	f.runner.Run(context.Background(), job)

	f.repo.AssertCalled(t, "UpdateStatus", mock.Anything, job.QuizID, domain.StatusDraft)
	f.generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunProviderFailureGoesDraft(t *testing.T) {
	f := newRunnerFixture()
	job := generatingJob()

	f.repo.On("GetQuizByID", mock.Anything, job.QuizID).Return(quizInStatus(domain.StatusGenerating), nil)
	f.extractor.On("Extract", job.FilePaths[0]).Return("source text", nil)
	f.generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, "").
		Return("", domain.NewProviderUnavailableError(errors.New("all providers down")))
	f.repo.On("UpdateStatus", mock.Anything, job.QuizID, domain.StatusDraft).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	f.runner.Run(context.Background(), job)

	f.repo.AssertCalled(t, "UpdateStatus", mock.Anything, job.QuizID, domain.StatusDraft)
	f.questions.AssertNotCalled(t, "SaveQuestions", mock.Anything, mock.Anything)
}

func TestRunParseFailureGoesDraft(t *testing.T) {
	f := newRunnerFixture()
	job := generatingJob()

	f.repo.On("GetQuizByID", mock.Anything, job.QuizID).Return(quizInStatus(domain.StatusGenerating), nil)
	f.extractor.On("Extract", job.FilePaths[0]).Return("source text", nil)
	f.generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, "").
		Return("Sorry, I cannot help with that.", nil)
	f.repo.On("UpdateStatus", mock.Anything, job.QuizID, domain.StatusDraft).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	f.runner.Run(context.Background(), job)

	f.repo.AssertCalled(t, "UpdateStatus", mock.Anything, job.QuizID, domain.StatusDraft)
	f.questions.AssertNotCalled(t, "SaveQuestions", mock.Anything, mock.Anything)
}

func TestRunPersistFailureGoesDraft(t *testing.T) {
	f := newRunnerFixture()
	job := generatingJob()

	f.repo.On("GetQuizByID", mock.Anything, job.QuizID).Return(quizInStatus(domain.StatusGenerating), nil)
	f.extractor.On("Extract", job.FilePaths[0]).Return("source text", nil)
	f.generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, "").Return(validModelOutput, nil)
	f.tx.On("WithTransaction", mock.Anything).Return(nil)
	f.questions.On("SaveQuestions", mock.Anything, mock.Anything).Return(errors.New("ORA-01400"))
	f.repo.On("UpdateStatus", mock.Anything, job.QuizID, domain.StatusDraft).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	f.runner.Run(context.Background(), job)

	f.repo.AssertCalled(t, "UpdateStatus", mock.Anything, job.QuizID, domain.StatusDraft)
}

func TestRunEmptyBatchStillGoesReady(t *testing.T) {
	f := newRunnerFixture()
	job := generatingJob()

	f.repo.On("GetQuizByID", mock.Anything, job.QuizID).Return(quizInStatus(domain.StatusGenerating), nil)
	f.extractor.On("Extract", job.FilePaths[0]).Return("source text", nil)
	f.generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, "").Return("[]", nil)
	f.repo.On("UpdateStatus", mock.Anything, job.QuizID, domain.StatusReady).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	f.runner.Run(context.Background(), job)

	f.repo.AssertCalled(t, "UpdateStatus", mock.Anything, job.QuizID, domain.StatusReady)
	f.questions.AssertNotCalled(t, "SaveQuestions", mock.Anything, mock.Anything)
}

func TestRunModelOverridePassedThrough(t *testing.T) {
	f := newRunnerFixture()
	job := generatingJob()
	job.Params.ModelOverride = "gemini-1.5-pro"

	f.repo.On("GetQuizByID", mock.Anything, job.QuizID).Return(quizInStatus(domain.StatusGenerating), nil)
	f.extractor.On("Extract", job.FilePaths[0]).Return("source text", nil)
	f.generator.On("Generate", mock.Anything, mock.Anything, mock.Anything, "gemini-1.5-pro").Return("[]", nil)
	f.repo.On("UpdateStatus", mock.Anything, job.QuizID, domain.StatusReady).Return(nil)
	f.cache.On("Delete", mock.Anything, mock.Anything).Return(nil)

	f.runner.Run(context.Background(), job)

	f.generator.AssertExpectations(t)
}
