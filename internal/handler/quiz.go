package handler

import (
	"context"

	"smartquiz/internal/domain"
	"smartquiz/internal/dto"
	"smartquiz/internal/logger"
	"smartquiz/internal/middleware"
	"smartquiz/internal/storage"
	"smartquiz/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// SubmissionPort is the submit side of the pipeline as the transport
// layer sees it.
type SubmissionPort interface {
	Submit(ctx context.Context, ident domain.Identity, req dto.GenerateQuizRequest, files []storage.SourceFile) (*dto.SubmitResponse, error)
}

// RebuildPort schedules a fresh generation run for an existing quiz.
type RebuildPort interface {
	Rebuild(ctx context.Context, ident domain.Identity, quizID string) (*dto.RebuildResponse, error)
}

// QueryPort is the read side of the quiz catalogue.
type QueryPort interface {
	GetStatus(ctx context.Context, quizID string) (*dto.StatusResponse, error)
	GetDetail(ctx context.Context, ident domain.Identity, quizID string) (*dto.QuizDetailResponse, error)
	ListReady(ctx context.Context) ([]dto.QuizResponse, error)
	ListByCreator(ctx context.Context, ident domain.Identity) ([]dto.QuizResponse, error)
}

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	submission SubmissionPort
	rebuild    RebuildPort
	queries    QueryPort
	validator  *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(submission SubmissionPort, rebuild RebuildPort, queries QueryPort) *QuizHandler {
	return &QuizHandler{
		submission: submission,
		rebuild:    rebuild,
		queries:    queries,
		validator:  validation.NewValidator(),
	}
}

// GenerateFromFile handles POST /api/quizzes/generate-from-file. It
// accepts a multipart form with quiz metadata and one or more source
// documents, stages them and schedules a background generation job.
func (h *QuizHandler) GenerateFromFile(c *fiber.Ctx) error {
	ident, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		logger.Get().Warn("Failed to parse generate request body", zap.Error(err))
		return domain.NewValidationError("malformed request body")
	}

	if errs := h.validator.ValidateGenerateRequest(&req); len(errs) > 0 {
		return errs
	}

	form, err := c.MultipartForm()
	if err != nil {
		return domain.NewValidationError("request must be multipart/form-data")
	}
	headers := form.File["files"]

	files := make([]storage.SourceFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return domain.NewStorageError("failed to read uploaded file "+header.Filename, err)
		}
		defer f.Close()
		files = append(files, storage.SourceFile{Name: header.Filename, Content: f})
	}

	resp, err := h.submission.Submit(c.Context(), ident, req, files)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// RebuildQuiz handles POST /api/quizzes/:id/rebuild.
func (h *QuizHandler) RebuildQuiz(c *fiber.Ctx) error {
	ident, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	quizID := c.Params("id")
	if errs := h.validator.ValidateQuizID(quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.rebuild.Rebuild(c.Context(), ident, quizID)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusAccepted).JSON(resp)
}

// GetQuizStatus handles GET /api/quizzes/:id/status.
func (h *QuizHandler) GetQuizStatus(c *fiber.Ctx) error {
	quizID := c.Params("id")
	if errs := h.validator.ValidateQuizID(quizID); len(errs) > 0 {
		return errs
	}

	resp, err := h.queries.GetStatus(c.Context(), quizID)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// GetQuizDetail handles GET /api/quizzes/:id. Anonymous callers see
// only published quizzes; the creator sees their own in any status.
func (h *QuizHandler) GetQuizDetail(c *fiber.Ctx) error {
	quizID := c.Params("id")
	if errs := h.validator.ValidateQuizID(quizID); len(errs) > 0 {
		return errs
	}

	// Anonymous access is fine; the zero identity matches nothing.
	ident, _ := middleware.IdentityFromCtx(c)

	resp, err := h.queries.GetDetail(c.Context(), ident, quizID)
	if err != nil {
		return err
	}

	return c.JSON(resp)
}

// ListQuizzes handles GET /api/quizzes, the public catalogue of ready
// quizzes.
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	resp, err := h.queries.ListReady(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// ListMyQuizzes handles GET /api/quizzes/my.
func (h *QuizHandler) ListMyQuizzes(c *fiber.Ctx) error {
	ident, ok := middleware.IdentityFromCtx(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
	}

	resp, err := h.queries.ListByCreator(c.Context(), ident)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
