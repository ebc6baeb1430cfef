package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"herbarium/internal/domain/models"
	"herbarium/internal/lib/logger/sl"
	"herbarium/internal/metrics"
	"herbarium/internal/repository"
	storage "herbarium/internal/storage/filestorage"
	"herbarium/internal/transport/http/dto"
)

// ImageService управляет галереей травы: загрузка с контролем допуска,
// удаление, выбор главного изображения и сортировка.
type ImageService struct {
	log         *slog.Logger
	herbs       repository.HerbRepository
	images      repository.ImageRepository
	fileStorage storage.FileStorage
}

func NewImageService(log *slog.Logger, herbs repository.HerbRepository, images repository.ImageRepository, fs storage.FileStorage) *ImageService {
	return &ImageService{
		log:         log,
		herbs:       herbs,
		images:      images,
		fileStorage: fs,
	}
}

// ListImages возвращает изображения травы в порядке позиций.
func (s *ImageService) ListImages(ctx context.Context, slug string) ([]models.Image, error) {
	const op = "service.ImageService.ListImages"

	herb, err := s.herbs.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	images, err := s.images.ListImagesByHerbID(ctx, herb.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

// UploadImages проверяет все файлы партии и либо сохраняет каждый, либо
// возвращает список отклонённых. Частичный приём партии не выполняется:
// один негодный файл отклоняет всю загрузку.
func (s *ImageService) UploadImages(ctx context.Context, slug string, files []dto.UploadImageInput) (*dto.UploadImagesResult, error) {
	const op = "service.ImageService.UploadImages"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
		slog.Int("files", len(files)),
	)

	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", op, models.NewValidationError("no files provided"))
	}

	herb, err := s.herbs.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// Сначала допуск всей партии, запись на диск только после.
	var rejected []dto.RejectedFile
	for _, f := range files {
		admission := models.AdmitUpload(f.Data, f.MimeType, f.Size)
		if !admission.Allowed {
			rejected = append(rejected, dto.RejectedFile{
				Filename: f.Filename,
				Reason:   admission.Reason,
			})
		}
	}
	if len(rejected) > 0 {
		metrics.ImageUploadsTotal.WithLabelValues("rejected").Add(float64(len(rejected)))
		log.Info("upload rejected", slog.Int("rejected", len(rejected)))
		return &dto.UploadImagesResult{Rejected: rejected}, nil
	}

	images := make([]models.Image, 0, len(files))
	for _, f := range files {
		filename := storage.GenerateFilename(f.Filename, herb.Slug)

		relPath, _, err := s.fileStorage.Save(ctx, f.Data, herb.Slug, filename)
		if err != nil {
			metrics.ImageUploadsTotal.WithLabelValues("failed").Inc()
			log.Error("failed to save file", sl.Err(err), slog.String("filename", f.Filename))
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		img, err := s.images.AppendImage(ctx, herb.ID, s.fileStorage.URL(relPath), f.Alt)
		if err != nil {
			// Файл уже на диске, но записи в БД нет — подчищаем.
			if delErr := s.fileStorage.Delete(ctx, relPath); delErr != nil {
				log.Warn("failed to remove orphan file", sl.Err(delErr))
			}
			metrics.ImageUploadsTotal.WithLabelValues("failed").Inc()
			log.Error("failed to append image", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		images = append(images, *img)
	}

	metrics.ImageUploadsTotal.WithLabelValues("accepted").Add(float64(len(images)))
	log.Info("images uploaded", slog.Int("count", len(images)))
	return &dto.UploadImagesResult{Images: images}, nil
}

// DeleteImage удаляет запись и файл. Главное изображение при удалении не
// переназначается: коллекция может остаться без главного.
func (s *ImageService) DeleteImage(ctx context.Context, slug string, imageID uuid.UUID) error {
	const op = "service.ImageService.DeleteImage"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
		slog.String("image_id", imageID.String()),
	)

	herb, err := s.herbs.GetHerbBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	removedURL, err := s.images.DeleteImage(ctx, herb.ID, imageID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	// Файл удаляем по возможности: запись уже стёрта, осиротевший файл
	// хуже не сделает.
	if relPath := s.relativePath(removedURL); relPath != "" {
		if err := s.fileStorage.Delete(ctx, relPath); err != nil {
			log.Warn("failed to delete file", sl.Err(err), slog.String("path", relPath))
		}
	}

	log.Info("image deleted")
	return nil
}

// SetPrimary назначает изображение главным, снимая флаг с остальных.
func (s *ImageService) SetPrimary(ctx context.Context, slug string, imageID uuid.UUID) error {
	const op = "service.ImageService.SetPrimary"

	herb, err := s.herbs.GetHerbBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.images.SetPrimaryImage(ctx, herb.ID, imageID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Reorder переставляет изображения по присланному полному списку id.
func (s *ImageService) Reorder(ctx context.Context, slug string, req dto.ReorderImagesRequest) ([]models.Image, error) {
	const op = "service.ImageService.Reorder"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
	)

	herb, err := s.herbs.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.images.ReorderImages(ctx, herb.ID, req.Order, req.SetPrimaryFromFirst); err != nil {
		log.Warn("reorder failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	images, err := s.images.ListImagesByHerbID(ctx, herb.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

// UpdateAlt меняет alt-текст изображения.
func (s *ImageService) UpdateAlt(ctx context.Context, slug string, imageID uuid.UUID, alt *string) (*models.Image, error) {
	const op = "service.ImageService.UpdateAlt"

	herb, err := s.herbs.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	img, err := s.images.UpdateImageAlt(ctx, herb.ID, imageID, alt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return img, nil
}

// relativePath восстанавливает путь в хранилище из публичного URL.
func (s *ImageService) relativePath(url string) string {
	base := s.fileStorage.BaseURL() + "/"
	if !strings.HasPrefix(url, base) {
		return ""
	}
	return strings.TrimPrefix(url, base)
}
