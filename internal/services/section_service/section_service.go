package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"herbarium/internal/domain/models"
	"herbarium/internal/lib/logger/sl"
	"herbarium/internal/repository"
	"herbarium/internal/transport/http/dto"
)

// SectionService выполняет операции над упорядоченной коллекцией секций
// одной травы. Каждая мутация — read-modify-write под блокировкой строки
// травы: текущий блоб перечитывается в транзакции, преобразуется чистой
// операцией и сохраняется целиком.
type SectionService struct {
	log  *slog.Logger
	repo repository.HerbRepository
}

func NewSectionService(log *slog.Logger, repo repository.HerbRepository) *SectionService {
	return &SectionService{
		log:  log,
		repo: repo,
	}
}

// GetSections возвращает секции травы в сохранённом порядке.
func (s *SectionService) GetSections(ctx context.Context, slug string) ([]models.Section, error) {
	const op = "service.SectionService.GetSections"

	herb, err := s.repo.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return herb.CustomSections, nil
}

// ReplaceSections заменяет всю коллекцию секций присланным списком.
func (s *SectionService) ReplaceSections(ctx context.Context, slug string, payload []dto.SectionPayload) ([]models.Section, error) {
	const op = "service.SectionService.ReplaceSections"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
	)

	herb, err := s.repo.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sections := models.SectionList(dto.SectionsToDomain(payload))

	seen := make(map[string]struct{}, len(sections))
	for _, sec := range sections {
		if _, dup := seen[sec.ID]; dup {
			return nil, fmt.Errorf("%s: %w", op, models.NewValidationError("duplicate section id %q", sec.ID))
		}
		seen[sec.ID] = struct{}{}
	}

	saved, err := s.repo.MutateHerbSections(ctx, herb.ID, func(models.SectionList) (models.SectionList, bool, error) {
		return sections, true, nil
	})
	if err != nil {
		log.Error("failed to save sections", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return saved, nil
}

// AddSection добавляет пустую секцию указанного типа в конец коллекции.
func (s *SectionService) AddSection(ctx context.Context, slug string, kind string) (*models.Section, error) {
	const op = "service.SectionService.AddSection"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
		slog.String("kind", kind),
	)

	log.Info("adding section")

	herb, err := s.repo.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var added models.Section
	_, err = s.repo.MutateHerbSections(ctx, herb.ID, func(current models.SectionList) (models.SectionList, bool, error) {
		updated, err := models.AddSection(current, models.SectionKind(kind))
		if err != nil {
			return nil, false, err
		}
		added = updated[len(updated)-1]
		return updated, true, nil
	})
	if err != nil {
		if models.IsValidationError(err) {
			log.Warn("invalid section kind", sl.Err(err))
		} else {
			log.Error("failed to save sections", sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &added, nil
}

// RemoveSection удаляет секцию. Отсутствующий id — не ошибка.
func (s *SectionService) RemoveSection(ctx context.Context, slug, sectionID string) error {
	const op = "service.SectionService.RemoveSection"

	herb, err := s.repo.GetHerbBySlug(ctx, slug)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	_, err = s.repo.MutateHerbSections(ctx, herb.ID, func(current models.SectionList) (models.SectionList, bool, error) {
		updated := models.RemoveSection(current, sectionID)
		if len(updated) == len(current) {
			// идемпотентное удаление, сохранять нечего
			return current, false, nil
		}
		return updated, true, nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UpdateSection сливает частичное обновление в секцию с данным id.
func (s *SectionService) UpdateSection(ctx context.Context, slug, sectionID string, req dto.UpdateSectionRequest) ([]models.Section, error) {
	const op = "service.SectionService.UpdateSection"

	herb, err := s.repo.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.MutateHerbSections(ctx, herb.ID, func(current models.SectionList) (models.SectionList, bool, error) {
		currentKind := models.SectionKindRichText
		for _, sec := range current {
			if sec.ID == sectionID {
				currentKind = sec.Kind
				break
			}
		}
		return models.UpdateSection(current, sectionID, req.ToPatch(currentKind)), true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// ReorderSections переносит секцию с позиции from на позицию to.
func (s *SectionService) ReorderSections(ctx context.Context, slug string, from, to int) ([]models.Section, error) {
	const op = "service.SectionService.ReorderSections"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
		slog.Int("from", from),
		slog.Int("to", to),
	)

	herb, err := s.repo.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.MutateHerbSections(ctx, herb.ID, func(current models.SectionList) (models.SectionList, bool, error) {
		reordered, err := models.ReorderSections(current, from, to)
		if err != nil {
			return nil, false, err
		}
		return reordered, true, nil
	})
	if err != nil {
		if models.IsValidationError(err) {
			log.Warn("reorder rejected", sl.Err(err))
		} else {
			log.Error("failed to save sections", sl.Err(err))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

// EditView собирает представление редактора: значения всех девяти слотов
// реестра и дополнительные именованные секции.
func (s *SectionService) EditView(ctx context.Context, slug string) (*dto.SectionsEditResponse, error) {
	const op = "service.SectionService.EditView"

	herb, err := s.repo.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	known, extras := models.MergeForEdit(herb.CustomSections)

	knownValues := make(map[string]any, len(known))
	for _, slot := range models.DefaultSections {
		knownValues[slot.ID] = known[slot.ID].Encode(slot.Kind)
	}

	return &dto.SectionsEditResponse{
		KnownValues:   knownValues,
		ExtraSections: extras,
	}, nil
}

// SaveEditView сохраняет представление редактора: слоты реестра в порядке
// реестра, затем дополнительные секции.
func (s *SectionService) SaveEditView(ctx context.Context, slug string, req dto.SaveSectionsEditRequest) ([]models.Section, error) {
	const op = "service.SectionService.SaveEditView"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", slug),
	)

	herb, err := s.repo.GetHerbBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	known := make(map[string]models.SectionValue, len(models.DefaultSections))
	for _, slot := range models.DefaultSections {
		rawValue, ok := req.KnownValues[slot.ID]
		if !ok {
			known[slot.ID] = models.EmptySectionValue(slot.Kind)
			continue
		}
		var raw any
		_ = json.Unmarshal(rawValue, &raw)
		known[slot.ID] = models.DecodeSectionValue(slot.Kind, raw)
	}

	merged := models.SectionList(models.MergeForSave(known, dto.SectionsToDomain(req.ExtraSections)))

	saved, err := s.repo.MutateHerbSections(ctx, herb.ID, func(models.SectionList) (models.SectionList, bool, error) {
		return merged, true, nil
	})
	if err != nil {
		log.Error("failed to save sections", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("sections saved successfully", slog.Int("count", len(saved)))
	return saved, nil
}
