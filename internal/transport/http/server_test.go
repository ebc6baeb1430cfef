package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herbarium/internal/domain/models"
	"herbarium/internal/storage"
	"herbarium/internal/transport/http/dto"
)

// стабы сервисов на функциональных полях: в каждом тесте задаются только
// нужные операции
type stubHerbService struct {
	create func(ctx context.Context, req dto.CreateHerbRequest) (*models.Herb, error)
	get    func(ctx context.Context, slug string) (*models.Herb, error)
	list   func(ctx context.Context, query, letter string) ([]models.Herb, error)
	update func(ctx context.Context, slug string, req dto.UpdateHerbRequest) (*models.Herb, error)
	delete func(ctx context.Context, slug string) error
}

func (s *stubHerbService) CreateHerb(ctx context.Context, req dto.CreateHerbRequest) (*models.Herb, error) {
	return s.create(ctx, req)
}

func (s *stubHerbService) GetHerb(ctx context.Context, slug string) (*models.Herb, error) {
	return s.get(ctx, slug)
}

func (s *stubHerbService) ListHerbs(ctx context.Context, query, letter string) ([]models.Herb, error) {
	return s.list(ctx, query, letter)
}

func (s *stubHerbService) UpdateHerb(ctx context.Context, slug string, req dto.UpdateHerbRequest) (*models.Herb, error) {
	return s.update(ctx, slug, req)
}

func (s *stubHerbService) DeleteHerb(ctx context.Context, slug string) error {
	return s.delete(ctx, slug)
}

type stubSectionService struct {
	reorder func(ctx context.Context, slug string, from, to int) ([]models.Section, error)
	add     func(ctx context.Context, slug, kind string) (*models.Section, error)
}

func (s *stubSectionService) GetSections(ctx context.Context, slug string) ([]models.Section, error) {
	return nil, nil
}

func (s *stubSectionService) ReplaceSections(ctx context.Context, slug string, payload []dto.SectionPayload) ([]models.Section, error) {
	return nil, nil
}

func (s *stubSectionService) AddSection(ctx context.Context, slug string, kind string) (*models.Section, error) {
	return s.add(ctx, slug, kind)
}

func (s *stubSectionService) RemoveSection(ctx context.Context, slug, sectionID string) error {
	return nil
}

func (s *stubSectionService) UpdateSection(ctx context.Context, slug, sectionID string, req dto.UpdateSectionRequest) ([]models.Section, error) {
	return nil, nil
}

func (s *stubSectionService) ReorderSections(ctx context.Context, slug string, from, to int) ([]models.Section, error) {
	return s.reorder(ctx, slug, from, to)
}

func (s *stubSectionService) EditView(ctx context.Context, slug string) (*dto.SectionsEditResponse, error) {
	return nil, nil
}

func (s *stubSectionService) SaveEditView(ctx context.Context, slug string, req dto.SaveSectionsEditRequest) ([]models.Section, error) {
	return nil, nil
}

type stubImageService struct {
	upload func(ctx context.Context, slug string, files []dto.UploadImageInput) (*dto.UploadImagesResult, error)
}

func (s *stubImageService) ListImages(ctx context.Context, slug string) ([]models.Image, error) {
	return nil, nil
}

func (s *stubImageService) UploadImages(ctx context.Context, slug string, files []dto.UploadImageInput) (*dto.UploadImagesResult, error) {
	return s.upload(ctx, slug, files)
}

func (s *stubImageService) DeleteImage(ctx context.Context, slug string, imageID uuid.UUID) error {
	return nil
}

func (s *stubImageService) SetPrimary(ctx context.Context, slug string, imageID uuid.UUID) error {
	return nil
}

func (s *stubImageService) Reorder(ctx context.Context, slug string, req dto.ReorderImagesRequest) ([]models.Image, error) {
	return nil, nil
}

func (s *stubImageService) UpdateAlt(ctx context.Context, slug string, imageID uuid.UUID, alt *string) (*models.Image, error) {
	return nil, nil
}

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func newTestContext(t *testing.T, method, path, body, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func testRouterLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLiveness_AlwaysOK(t *testing.T) {
	r := NewRouter(testRouterLogger(), nil, nil, nil, nil, nil, nil)

	c, rec := newTestContext(t, http.MethodGet, "/health", "", "")

	require.NoError(t, r.Liveness(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "success")
}

func TestGetHerb_NotFoundMapsTo404(t *testing.T) {
	herbs := &stubHerbService{
		get: func(ctx context.Context, slug string) (*models.Herb, error) {
			return nil, storage.ErrHerbNotFound
		},
	}
	r := NewRouter(testRouterLogger(), herbs, nil, nil, nil, nil, nil)

	c, rec := newTestContext(t, http.MethodGet, "/api/v1/herbs/missing", "", "")
	c.SetParamNames("slug")
	c.SetParamValues("missing")

	require.NoError(t, r.GetHerb(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "herb_not_found")
}

func TestCreateHerb_Success(t *testing.T) {
	herbs := &stubHerbService{
		create: func(ctx context.Context, req dto.CreateHerbRequest) (*models.Herb, error) {
			return &models.Herb{ID: uuid.New(), Slug: "mint", Name: req.Name}, nil
		},
	}
	r := NewRouter(testRouterLogger(), herbs, nil, nil, nil, nil, nil)

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/herbs", `{"name":"Mint"}`, echo.MIMEApplicationJSON)

	require.NoError(t, r.CreateHerb(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body["status"])
}

func TestCreateHerb_DuplicateSlugMapsTo409(t *testing.T) {
	herbs := &stubHerbService{
		create: func(ctx context.Context, req dto.CreateHerbRequest) (*models.Herb, error) {
			return nil, storage.ErrHerbExists
		},
	}
	r := NewRouter(testRouterLogger(), herbs, nil, nil, nil, nil, nil)

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/herbs", `{"name":"Mint"}`, echo.MIMEApplicationJSON)

	require.NoError(t, r.CreateHerb(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateHerb_MissingNameFailsValidation(t *testing.T) {
	r := NewRouter(testRouterLogger(), &stubHerbService{}, nil, nil, nil, nil, nil)

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/herbs", `{"slug":"x"}`, echo.MIMEApplicationJSON)

	require.NoError(t, r.CreateHerb(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReorderSections_ValidationErrorMapsTo400(t *testing.T) {
	sections := &stubSectionService{
		reorder: func(ctx context.Context, slug string, from, to int) ([]models.Section, error) {
			return nil, models.NewValidationError("to index %d out of range", to)
		},
	}
	r := NewRouter(testRouterLogger(), nil, sections, nil, nil, nil, nil)

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/herbs/mint/sections/reorder", `{"from":0,"to":9}`, echo.MIMEApplicationJSON)
	c.SetParamNames("slug")
	c.SetParamValues("mint")

	require.NoError(t, r.ReorderSections(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "out of range")
}

func TestAddSection_UnknownKindMapsTo400(t *testing.T) {
	sections := &stubSectionService{
		add: func(ctx context.Context, slug, kind string) (*models.Section, error) {
			return nil, models.NewValidationError("unknown section kind %q", kind)
		},
	}
	r := NewRouter(testRouterLogger(), nil, sections, nil, nil, nil, nil)

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/herbs/mint/sections", `{"kind":"table"}`, echo.MIMEApplicationJSON)
	c.SetParamNames("slug")
	c.SetParamValues("mint")

	require.NoError(t, r.AddSection(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadImages_RejectedBatchMapsTo422(t *testing.T) {
	images := &stubImageService{
		upload: func(ctx context.Context, slug string, files []dto.UploadImageInput) (*dto.UploadImagesResult, error) {
			return &dto.UploadImagesResult{
				Rejected: []dto.RejectedFile{{Filename: "evil.png", Reason: "file signature does not match"}},
			}, nil
		},
	}
	r := NewRouter(testRouterLogger(), nil, nil, images, nil, nil, nil)

	body := &strings.Builder{}
	body.WriteString("--boundary\r\n")
	body.WriteString("Content-Disposition: form-data; name=\"files\"; filename=\"evil.png\"\r\n")
	body.WriteString("Content-Type: image/png\r\n\r\n")
	body.WriteString("MZ\x90\x00")
	body.WriteString("\r\n--boundary--\r\n")

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/herbs/mint/images", body.String(), "multipart/form-data; boundary=boundary")
	c.SetParamNames("slug")
	c.SetParamValues("mint")

	require.NoError(t, r.UploadImages(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "evil.png")
}
