package dto

import "time"

// GenerateQuizRequest carries the multipart form fields of a
// generate-from-file submission.
type GenerateQuizRequest struct {
	Title        string `json:"title" form:"title"`
	Topic        string `json:"topic" form:"topic"`
	Difficulty   string `json:"difficulty" form:"difficulty"`
	NumQuestions int    `json:"num_questions" form:"num_questions"`
	Model        string `json:"model" form:"model"`
}

// SubmitResponse acknowledges an accepted submission.
type SubmitResponse struct {
	QuizID string `json:"quiz_id"`
	Status string `json:"status"`
}

// RebuildResponse acknowledges an accepted rebuild request.
type RebuildResponse struct {
	QuizID     string `json:"quiz_id"`
	Status     string `json:"status"`
	SourceUsed string `json:"source_used"`
	FilesCount int    `json:"files_count"`
}

// StatusResponse reports the lifecycle status of a quiz.
type StatusResponse struct {
	QuizID string `json:"quiz_id"`
	Status string `json:"status"`
}

// QuizResponse represents a quiz in list endpoints.
type QuizResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Topic       string    `json:"topic,omitempty"`
	Description string    `json:"description,omitempty"`
	Difficulty  string    `json:"difficulty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// QuestionResponse represents one question in a quiz detail.
type QuestionResponse struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation,omitempty"`
	AIGenerated   bool   `json:"ai_generated"`
}

// QuizDetailResponse is a quiz together with its questions.
type QuizDetailResponse struct {
	QuizResponse
	Questions []QuestionResponse `json:"questions"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
