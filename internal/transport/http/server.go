package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"herbarium/internal/domain/models"
	"herbarium/internal/lib/logger/sl"
	"herbarium/internal/services/auth"
	"herbarium/internal/storage"
	"herbarium/internal/transport/http/dto"
	"herbarium/internal/transport/http/dto/request"
	"herbarium/internal/transport/http/dto/response"

	_ "herbarium/docs"
)

type HerbService interface {
	CreateHerb(ctx context.Context, req dto.CreateHerbRequest) (*models.Herb, error)
	GetHerb(ctx context.Context, slug string) (*models.Herb, error)
	ListHerbs(ctx context.Context, query, letter string) ([]models.Herb, error)
	UpdateHerb(ctx context.Context, slug string, req dto.UpdateHerbRequest) (*models.Herb, error)
	DeleteHerb(ctx context.Context, slug string) error
}

type SectionService interface {
	GetSections(ctx context.Context, slug string) ([]models.Section, error)
	ReplaceSections(ctx context.Context, slug string, payload []dto.SectionPayload) ([]models.Section, error)
	AddSection(ctx context.Context, slug string, kind string) (*models.Section, error)
	RemoveSection(ctx context.Context, slug, sectionID string) error
	UpdateSection(ctx context.Context, slug, sectionID string, req dto.UpdateSectionRequest) ([]models.Section, error)
	ReorderSections(ctx context.Context, slug string, from, to int) ([]models.Section, error)
	EditView(ctx context.Context, slug string) (*dto.SectionsEditResponse, error)
	SaveEditView(ctx context.Context, slug string, req dto.SaveSectionsEditRequest) ([]models.Section, error)
}

type ImageService interface {
	ListImages(ctx context.Context, slug string) ([]models.Image, error)
	UploadImages(ctx context.Context, slug string, files []dto.UploadImageInput) (*dto.UploadImagesResult, error)
	DeleteImage(ctx context.Context, slug string, imageID uuid.UUID) error
	SetPrimary(ctx context.Context, slug string, imageID uuid.UUID) error
	Reorder(ctx context.Context, slug string, req dto.ReorderImagesRequest) ([]models.Image, error)
	UpdateAlt(ctx context.Context, slug string, imageID uuid.UUID, alt *string) (*models.Image, error)
}

type AuthService interface {
	Login(ctx context.Context, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context) error
	Verify(tokenString string) (string, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Routers struct {
	log            *slog.Logger
	HerbService    HerbService
	SectionService SectionService
	ImageService   ImageService
	AuthService    AuthService
	DB             HealthChecker
	Cache          HealthChecker
}

func NewRouter(log *slog.Logger, herbs HerbService, sections SectionService, images ImageService, authSvc AuthService, db, cache HealthChecker) *Routers {
	return &Routers{
		log:            log,
		HerbService:    herbs,
		SectionService: sections,
		ImageService:   images,
		AuthService:    authSvc,
		DB:             db,
		Cache:          cache,
	}
}

// Login godoc
// @Summary Вход администратора
// @Description Вход по паролю единственной административной учётки. Возвращает пару JWT-токенов.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Пароль администратора"
// @Success 200 {object} response.Response{data=models.TokenPair} "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Неверный формат запроса"
// @Failure 401 {object} response.ErrorResponse "Ошибка аутентификации"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Router /api/v1/admin/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.LoginRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid format request", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	pair, err := r.AuthService.Login(c.Request().Context(), req.Password)
	if err != nil {
		log.Warn("login failed", slog.String("client_ip", c.RealIP()))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	// Cookie-сессия для браузерных сценариев, токены — для API-клиентов.
	if sess, err := session.Get("session", c); err == nil {
		sess.Values["subject"] = auth.AdminSubject
		sess.Save(c.Request(), c.Response())
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Refresh godoc
// @Summary Обновление токенов
// @Description Меняет действующий refresh-токен на новую пару токенов.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body request.RefreshRequest true "Refresh-токен"
// @Success 200 {object} response.Response{data=models.TokenPair}
// @Failure 401 {object} response.ErrorResponse "Токен недействителен"
// @Router /api/v1/admin/refresh [post]
func (r *Routers) Refresh(c echo.Context) error {
	const op = "http.routers.Refresh"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.RefreshRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	pair, err := r.AuthService.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		log.Warn("refresh rejected", sl.Err(err))
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(pair))
}

// Logout godoc
// @Summary Выход администратора
// @Description Отзывает все сессии администратора.
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Security ApiKeyAuth
// @Router /api/v1/admin/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	if err := r.AuthService.Logout(c.Request().Context()); err != nil {
		r.log.Error("logout failed", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "logout_failed"})
	}

	if sess, err := session.Get("session", c); err == nil {
		sess.Options.MaxAge = -1
		sess.Save(c.Request(), c.Response())
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "logged out"})
}

// CheckAuth godoc
// @Summary Проверка сессии
// @Description Проверяет, что access-токен действителен.
// @Tags auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/admin/check [get]
func (r *Routers) CheckAuth(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "authenticated"})
}

// ListHerbs godoc
// @Summary Список трав
// @Description Список трав с фильтрацией по подстроке и первой букве названия.
// @Tags herbs
// @Produce json
// @Param q query string false "Подстрока в названии, латинском имени или описании"
// @Param letter query string false "Первая буква названия"
// @Success 200 {object} response.Response{data=[]models.Herb}
// @Router /api/v1/herbs [get]
func (r *Routers) ListHerbs(c echo.Context) error {
	const op = "http.routers.ListHerbs"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.ListHerbsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	herbs, err := r.HerbService.ListHerbs(c.Request().Context(), req.Query, req.Letter)
	if err != nil {
		log.Error("failed to list herbs", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "internal_error"})
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(herbs))
}

// GetHerb godoc
// @Summary Получить траву
// @Description Возвращает траву по slug вместе с изображениями.
// @Tags herbs
// @Produce json
// @Param slug path string true "Slug травы"
// @Success 200 {object} response.Response{data=models.Herb}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/herbs/{slug} [get]
func (r *Routers) GetHerb(c echo.Context) error {
	const op = "http.routers.GetHerb"

	herb, err := r.HerbService.GetHerb(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(herb))
}

// CreateHerb godoc
// @Summary Создать траву
// @Description Создаёт запись травы. Slug выводится из названия, если не задан.
// @Tags herbs
// @Accept json
// @Produce json
// @Param request body dto.CreateHerbRequest true "Данные травы"
// @Success 201 {object} response.Response{data=models.Herb}
// @Failure 400 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse "Трава с таким slug уже существует"
// @Security ApiKeyAuth
// @Router /api/v1/herbs [post]
func (r *Routers) CreateHerb(c echo.Context) error {
	const op = "http.routers.CreateHerb"

	log := r.log.With(
		slog.String("op", op),
	)

	var req dto.CreateHerbRequest

	if err := c.Bind(&req); err != nil {
		log.Warn("invalid request data", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	herb, err := r.HerbService.CreateHerb(c.Request().Context(), req)
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(herb))
}

// UpdateHerb godoc
// @Summary Обновить траву
// @Description Частичное обновление полей травы, nil-поля не меняются.
// @Tags herbs
// @Accept json
// @Produce json
// @Param slug path string true "Slug травы"
// @Param request body dto.UpdateHerbRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Herb}
// @Failure 400 {object} response.ErrorResponse
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug} [patch]
func (r *Routers) UpdateHerb(c echo.Context) error {
	const op = "http.routers.UpdateHerb"

	var req dto.UpdateHerbRequest

	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	}

	herb, err := r.HerbService.UpdateHerb(c.Request().Context(), c.Param("slug"), req)
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(herb))
}

// DeleteHerb godoc
// @Summary Удалить траву
// @Tags herbs
// @Produce json
// @Param slug path string true "Slug травы"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug} [delete]
func (r *Routers) DeleteHerb(c echo.Context) error {
	const op = "http.routers.DeleteHerb"

	if err := r.HerbService.DeleteHerb(c.Request().Context(), c.Param("slug")); err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "herb deleted"})
}

// GetSections godoc
// @Summary Секции травы
// @Description Возвращает секции травы в сохранённом порядке.
// @Tags sections
// @Produce json
// @Param slug path string true "Slug травы"
// @Success 200 {object} response.Response{data=[]models.Section}
// @Failure 404 {object} response.ErrorResponse
// @Router /api/v1/herbs/{slug}/sections [get]
func (r *Routers) GetSections(c echo.Context) error {
	const op = "http.routers.GetSections"

	sections, err := r.SectionService.GetSections(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(sections))
}

// ReplaceSections godoc
// @Summary Заменить секции
// @Description Заменяет всю коллекцию секций присланным списком.
// @Tags sections
// @Accept json
// @Produce json
// @Param slug path string true "Slug травы"
// @Param request body []dto.SectionPayload true "Новая коллекция секций"
// @Success 200 {object} response.Response{data=[]models.Section}
// @Failure 400 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/sections [put]
func (r *Routers) ReplaceSections(c echo.Context) error {
	const op = "http.routers.ReplaceSections"

	var payload []dto.SectionPayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	sections, err := r.SectionService.ReplaceSections(c.Request().Context(), c.Param("slug"), payload)
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(sections))
}

// AddSection godoc
// @Summary Добавить секцию
// @Description Добавляет пустую секцию указанного типа в конец коллекции.
// @Tags sections
// @Accept json
// @Produce json
// @Param slug path string true "Slug травы"
// @Param request body dto.AddSectionRequest true "Тип секции"
// @Success 201 {object} response.Response{data=models.Section}
// @Failure 400 {object} response.ErrorResponse "Недопустимый тип секции"
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/sections [post]
func (r *Routers) AddSection(c echo.Context) error {
	const op = "http.routers.AddSection"

	var req dto.AddSectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	section, err := r.SectionService.AddSection(c.Request().Context(), c.Param("slug"), req.Kind)
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(section))
}

// UpdateSection godoc
// @Summary Обновить секцию
// @Description Частичное обновление секции: заголовок, тип, значение.
// @Tags sections
// @Accept json
// @Produce json
// @Param slug path string true "Slug травы"
// @Param section_id path string true "ID секции"
// @Param request body dto.UpdateSectionRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=[]models.Section}
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/sections/{section_id} [patch]
func (r *Routers) UpdateSection(c echo.Context) error {
	const op = "http.routers.UpdateSection"

	var req dto.UpdateSectionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	sections, err := r.SectionService.UpdateSection(c.Request().Context(), c.Param("slug"), c.Param("section_id"), req)
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(sections))
}

// RemoveSection godoc
// @Summary Удалить секцию
// @Description Удаляет секцию. Отсутствующий id не считается ошибкой.
// @Tags sections
// @Produce json
// @Param slug path string true "Slug травы"
// @Param section_id path string true "ID секции"
// @Success 200 {object} response.Response
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/sections/{section_id} [delete]
func (r *Routers) RemoveSection(c echo.Context) error {
	const op = "http.routers.RemoveSection"

	if err := r.SectionService.RemoveSection(c.Request().Context(), c.Param("slug"), c.Param("section_id")); err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "section removed"})
}

// ReorderSections godoc
// @Summary Переставить секцию
// @Description Переносит секцию с позиции from на позицию to.
// @Tags sections
// @Accept json
// @Produce json
// @Param slug path string true "Slug травы"
// @Param request body dto.ReorderSectionsRequest true "Позиции from и to"
// @Success 200 {object} response.Response{data=[]models.Section}
// @Failure 400 {object} response.ErrorResponse "Позиция вне диапазона"
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/sections/reorder [post]
func (r *Routers) ReorderSections(c echo.Context) error {
	const op = "http.routers.ReorderSections"

	var req dto.ReorderSectionsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	sections, err := r.SectionService.ReorderSections(c.Request().Context(), c.Param("slug"), req.From, req.To)
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(sections))
}

// SectionsEditView godoc
// @Summary Представление редактора секций
// @Description Значения всех слотов реестра по умолчанию плюс дополнительные секции.
// @Tags sections
// @Produce json
// @Param slug path string true "Slug травы"
// @Success 200 {object} response.Response{data=dto.SectionsEditResponse}
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/sections/edit [get]
func (r *Routers) SectionsEditView(c echo.Context) error {
	const op = "http.routers.SectionsEditView"

	view, err := r.SectionService.EditView(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(view))
}

// SaveSectionsEditView godoc
// @Summary Сохранить представление редактора
// @Description Сохраняет слоты реестра в каноническом порядке, затем дополнительные секции.
// @Tags sections
// @Accept json
// @Produce json
// @Param slug path string true "Slug травы"
// @Param request body dto.SaveSectionsEditRequest true "Заполненные слоты и дополнительные секции"
// @Success 200 {object} response.Response{data=[]models.Section}
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/sections/edit [put]
func (r *Routers) SaveSectionsEditView(c echo.Context) error {
	const op = "http.routers.SaveSectionsEditView"

	var req dto.SaveSectionsEditRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	sections, err := r.SectionService.SaveEditView(c.Request().Context(), c.Param("slug"), req)
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(sections))
}

// ListImages godoc
// @Summary Изображения травы
// @Tags images
// @Produce json
// @Param slug path string true "Slug травы"
// @Success 200 {object} response.Response{data=[]models.Image}
// @Router /api/v1/herbs/{slug}/images [get]
func (r *Routers) ListImages(c echo.Context) error {
	const op = "http.routers.ListImages"

	images, err := r.ImageService.ListImages(c.Request().Context(), c.Param("slug"))
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(images))
}

// UploadImages godoc
// @Summary Загрузить изображения
// @Description Принимает multipart-форму с файлами. Партия проверяется целиком: один негодный файл отклоняет всю загрузку, в ответе — список отклонённых с причинами.
// @Tags images
// @Accept multipart/form-data
// @Produce json
// @Param slug path string true "Slug травы"
// @Param files formData file true "Файлы изображений (jpeg, png, webp, до 5 МиБ)"
// @Success 201 {object} response.Response{data=dto.UploadImagesResult}
// @Failure 400 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/images [post]
func (r *Routers) UploadImages(c echo.Context) error {
	const op = "http.routers.UploadImages"

	log := r.log.With(
		slog.String("op", op),
		slog.String("slug", c.Param("slug")),
	)

	form, err := c.MultipartForm()
	if err != nil {
		log.Warn("bad multipart form", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "at least one file is required"))
	}

	var alt *string
	if v := c.FormValue("alt"); v != "" {
		alt = &v
	}

	files := make([]dto.UploadImageInput, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		src, err := fh.Open()
		if err != nil {
			log.Error("failed to open uploaded file", sl.Err(err))
			return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
		}

		data, err := io.ReadAll(io.LimitReader(src, models.MaxUploadSize+1))
		src.Close()
		if err != nil {
			log.Error("failed to read uploaded file", sl.Err(err))
			return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
		}

		files = append(files, dto.UploadImageInput{
			Filename: fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Data:     data,
			Alt:      alt,
		})
	}

	result, err := r.ImageService.UploadImages(c.Request().Context(), c.Param("slug"), files)
	if err != nil {
		return r.herbError(c, op, err)
	}

	if len(result.Rejected) > 0 {
		return c.JSON(http.StatusUnprocessableEntity, response.Response{Status: "error", Data: result})
	}

	log.Info("images uploaded", slog.Int("count", len(result.Images)))
	return c.JSON(http.StatusCreated, response.SuccessResponse(result))
}

// DeleteImage godoc
// @Summary Удалить изображение
// @Description Удаляет запись и файл. Главное изображение не переназначается.
// @Tags images
// @Produce json
// @Param slug path string true "Slug травы"
// @Param image_id path string true "UUID изображения" format(uuid)
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/images/{image_id} [delete]
func (r *Routers) DeleteImage(c echo.Context) error {
	const op = "http.routers.DeleteImage"

	imageID, err := uuid.Parse(c.Param("image_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid image ID format"))
	}

	if err := r.ImageService.DeleteImage(c.Request().Context(), c.Param("slug"), imageID); err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "image deleted"})
}

// SetPrimaryImage godoc
// @Summary Назначить главное изображение
// @Tags images
// @Accept json
// @Produce json
// @Param slug path string true "Slug травы"
// @Param request body dto.SetPrimaryImageRequest true "UUID изображения"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/images/primary [put]
func (r *Routers) SetPrimaryImage(c echo.Context) error {
	const op = "http.routers.SetPrimaryImage"

	var req dto.SetPrimaryImageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.ImageService.SetPrimary(c.Request().Context(), c.Param("slug"), req.ImageID); err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "primary image updated"})
}

// ReorderImages godoc
// @Summary Переставить изображения
// @Description Принимает полный список id в новом порядке. Неполный или чужой список отклоняется.
// @Tags images
// @Accept json
// @Produce json
// @Param slug path string true "Slug травы"
// @Param request body dto.ReorderImagesRequest true "Новый порядок"
// @Success 200 {object} response.Response{data=[]models.Image}
// @Failure 400 {object} response.ErrorResponse "Список не является перестановкой коллекции"
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/images/reorder [post]
func (r *Routers) ReorderImages(c echo.Context) error {
	const op = "http.routers.ReorderImages"

	var req dto.ReorderImagesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	images, err := r.ImageService.Reorder(c.Request().Context(), c.Param("slug"), req)
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(images))
}

// UpdateImageAlt godoc
// @Summary Изменить alt-текст
// @Tags images
// @Accept json
// @Produce json
// @Param slug path string true "Slug травы"
// @Param image_id path string true "UUID изображения" format(uuid)
// @Param request body dto.UpdateImageAltRequest true "Новый alt-текст"
// @Success 200 {object} response.Response{data=models.Image}
// @Failure 404 {object} response.ErrorResponse
// @Security ApiKeyAuth
// @Router /api/v1/herbs/{slug}/images/{image_id}/alt [patch]
func (r *Routers) UpdateImageAlt(c echo.Context) error {
	const op = "http.routers.UpdateImageAlt"

	imageID, err := uuid.Parse(c.Param("image_id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", "invalid image ID format"))
	}

	var req dto.UpdateImageAltRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	img, err := r.ImageService.UpdateAlt(c.Request().Context(), c.Param("slug"), imageID, req.Alt)
	if err != nil {
		return r.herbError(c, op, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(img))
}

// Health godoc
// @Summary Проверка состояния
// @Description Состояние сервиса и его зависимостей.
// @Tags health
// @Produce json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/health [get]
func (r *Routers) Health(c echo.Context) error {
	ctx := c.Request().Context()

	checks := map[string]string{
		"postgres": "ok",
		"redis":    "ok",
	}
	healthy := true

	if err := r.DB.HealthCheck(ctx); err != nil {
		checks["postgres"] = err.Error()
		healthy = false
	}
	if err := r.Cache.HealthCheck(ctx); err != nil {
		checks["redis"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, response.Response{Status: "success", Data: checks})
}

// Liveness godoc
// @Summary Живость процесса
// @Description Отвечает 200, пока процесс принимает запросы. Зависимости не проверяются.
// @Tags health
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func (r *Routers) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "ok"})
}

// herbError транслирует доменные ошибки в HTTP-ответы.
func (r *Routers) herbError(c echo.Context, op string, err error) error {
	log := r.log.With(slog.String("op", op))

	switch {
	case errors.Is(err, storage.ErrHerbNotFound):
		return c.JSON(http.StatusNotFound, response.ErrHerbNotFound)
	case errors.Is(err, storage.ErrHerbExists):
		return c.JSON(http.StatusConflict, response.ErrHerbAlreadyExists)
	case errors.Is(err, storage.ErrImageNotFound):
		return c.JSON(http.StatusNotFound, response.ErrImageNotFound)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	case models.IsValidationError(err):
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("invalid_request", err.Error()))
	case models.IsNotFoundError(err):
		return c.JSON(http.StatusNotFound, response.ErrorResponseWithDetails("not_found", err.Error()))
	default:
		log.Error("unhandled error", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponse{Status: "error", Error: "internal_error"})
	}
}
