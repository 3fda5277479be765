package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"testing"

	"smartquiz/internal/config"
	"smartquiz/internal/domain"
	"smartquiz/internal/dto"
	"smartquiz/internal/logger"
	"smartquiz/internal/middleware"
	"smartquiz/internal/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error"}); err != nil {
		panic("Failed to initialize logger for tests: " + err.Error())
	}
	exitVal := m.Run()
	_ = logger.Sync()
	os.Exit(exitVal)
}

const testQuizID = "01HZXCV0123456789ABCDEFGHJ"

// stubPorts scripts the service layer for handler tests.
type stubPorts struct {
	submitResp  *dto.SubmitResponse
	submitErr   error
	submitFiles int
	rebuildResp *dto.RebuildResponse
	rebuildErr  error
	statusResp  *dto.StatusResponse
	statusErr   error
	detailResp  *dto.QuizDetailResponse
	detailErr   error
	listResp    []dto.QuizResponse
}

func (s *stubPorts) Submit(ctx context.Context, ident domain.Identity, req dto.GenerateQuizRequest, files []storage.SourceFile) (*dto.SubmitResponse, error) {
	s.submitFiles = len(files)
	return s.submitResp, s.submitErr
}

func (s *stubPorts) Rebuild(ctx context.Context, ident domain.Identity, quizID string) (*dto.RebuildResponse, error) {
	return s.rebuildResp, s.rebuildErr
}

func (s *stubPorts) GetStatus(ctx context.Context, quizID string) (*dto.StatusResponse, error) {
	return s.statusResp, s.statusErr
}

func (s *stubPorts) GetDetail(ctx context.Context, ident domain.Identity, quizID string) (*dto.QuizDetailResponse, error) {
	return s.detailResp, s.detailErr
}

func (s *stubPorts) ListReady(ctx context.Context) ([]dto.QuizResponse, error) {
	return s.listResp, nil
}

func (s *stubPorts) ListByCreator(ctx context.Context, ident domain.Identity) ([]dto.QuizResponse, error) {
	return s.listResp, nil
}

// injectIdentity stands in for the auth middleware during tests.
func injectIdentity(ident domain.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.IdentityKey, ident)
		return c.Next()
	}
}

func newTestApp(ports *stubPorts, ident *domain.Identity) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	h := NewQuizHandler(ports, ports, ports)

	group := app.Group("/api/quizzes")
	if ident != nil {
		group.Use(injectIdentity(*ident))
	}
	group.Post("/generate-from-file", h.GenerateFromFile)
	group.Post("/:id/rebuild", h.RebuildQuiz)
	group.Get("/:id/status", h.GetQuizStatus)
	group.Get("/:id", h.GetQuizDetail)
	group.Get("/", h.ListQuizzes)
	return app
}

func multipartBody(t *testing.T, fields map[string]string, fileNames ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, name := range fileNames {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("pdf bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestGenerateFromFileAccepted(t *testing.T) {
	ports := &stubPorts{submitResp: &dto.SubmitResponse{QuizID: testQuizID, Status: "generating"}}
	ident := domain.Identity{ID: "creator1", Role: domain.RoleTeacher}
	app := newTestApp(ports, &ident)

	body, contentType := multipartBody(t, map[string]string{
		"title":      "Networking",
		"topic":      "TCP",
		"difficulty": "medium",
	}, "lecture.pdf")

	req := httptest.NewRequest("POST", "/api/quizzes/generate-from-file", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
	assert.Equal(t, 1, ports.submitFiles)

	var out dto.SubmitResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Equal(t, testQuizID, out.QuizID)
	assert.Equal(t, "generating", out.Status)
}

func TestGenerateFromFileRequiresAuth(t *testing.T) {
	ports := &stubPorts{}
	app := newTestApp(ports, nil)

	body, contentType := multipartBody(t, map[string]string{"title": "Networking"}, "lecture.pdf")
	req := httptest.NewRequest("POST", "/api/quizzes/generate-from-file", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestGenerateFromFileValidationFailure(t *testing.T) {
	ports := &stubPorts{}
	ident := domain.Identity{ID: "creator1", Role: domain.RoleTeacher}
	app := newTestApp(ports, &ident)

	// Missing title.
	body, contentType := multipartBody(t, map[string]string{"topic": "TCP"}, "lecture.pdf")
	req := httptest.NewRequest("POST", "/api/quizzes/generate-from-file", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, ports.submitFiles)
}

func TestRebuildQuizAccepted(t *testing.T) {
	ports := &stubPorts{rebuildResp: &dto.RebuildResponse{QuizID: testQuizID, Status: "generating", FilesCount: 1}}
	ident := domain.Identity{ID: "creator1", Role: domain.RoleTeacher}
	app := newTestApp(ports, &ident)

	req := httptest.NewRequest("POST", "/api/quizzes/"+testQuizID+"/rebuild", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
}

func TestRebuildQuizPermissionDenied(t *testing.T) {
	ports := &stubPorts{rebuildErr: domain.NewPermissionDeniedError("only the quiz creator can rebuild it")}
	ident := domain.Identity{ID: "stranger", Role: domain.RoleTeacher}
	app := newTestApp(ports, &ident)

	req := httptest.NewRequest("POST", "/api/quizzes/"+testQuizID+"/rebuild", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestGetQuizStatus(t *testing.T) {
	ports := &stubPorts{statusResp: &dto.StatusResponse{QuizID: testQuizID, Status: "ready"}}
	app := newTestApp(ports, nil)

	req := httptest.NewRequest("GET", "/api/quizzes/"+testQuizID+"/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestGetQuizStatusBadID(t *testing.T) {
	ports := &stubPorts{}
	app := newTestApp(ports, nil)

	req := httptest.NewRequest("GET", "/api/quizzes/not-a-ulid/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetQuizStatusNotFound(t *testing.T) {
	ports := &stubPorts{statusErr: domain.NewQuizNotFoundError(testQuizID)}
	app := newTestApp(ports, nil)

	req := httptest.NewRequest("GET", "/api/quizzes/"+testQuizID+"/status", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetQuizDetail(t *testing.T) {
	ports := &stubPorts{detailResp: &dto.QuizDetailResponse{
		QuizResponse: dto.QuizResponse{ID: testQuizID, Title: "Networking", Status: "ready"},
	}}
	app := newTestApp(ports, nil)

	req := httptest.NewRequest("GET", "/api/quizzes/"+testQuizID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestListQuizzes(t *testing.T) {
	ports := &stubPorts{listResp: []dto.QuizResponse{{ID: testQuizID, Status: "ready"}}}
	app := newTestApp(ports, nil)

	req := httptest.NewRequest("GET", "/api/quizzes/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out []dto.QuizResponse
	raw, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out, 1)
	assert.Equal(t, testQuizID, out[0].ID)
}
