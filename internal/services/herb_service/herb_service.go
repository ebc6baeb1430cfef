package services

import (
	"context"
	"fmt"
	"log/slog"

	"herbarium/internal/domain/models"
	"herbarium/internal/lib/logger/sl"
	"herbarium/internal/lib/slug"
	"herbarium/internal/repository"
	"herbarium/internal/transport/http/dto"
)

type HerbService struct {
	log  *slog.Logger
	repo repository.HerbRepository
}

func NewHerbService(log *slog.Logger, repo repository.HerbRepository) *HerbService {
	return &HerbService{
		log:  log,
		repo: repo,
	}
}

// CreateHerb создает новую статью. Slug берётся из запроса или выводится
// из названия.
func (s *HerbService) CreateHerb(ctx context.Context, req dto.CreateHerbRequest) (*models.Herb, error) {
	const op = "service.HerbService.CreateHerb"
	log := s.log.With(
		slog.String("op", op),
		slog.String("name", req.Name),
	)

	log.Info("creating herb")

	herbSlug := req.Slug
	if herbSlug == "" {
		herbSlug = slug.Make(req.Name)
	} else if !slug.IsValid(herbSlug) {
		herbSlug = slug.Make(herbSlug)
	}
	if herbSlug == "" {
		return nil, models.NewValidationError("cannot derive slug from name %q", req.Name)
	}

	herb := req.ToDomain(herbSlug)
	if err := herb.Validate(); err != nil {
		log.Error("herb validation failed", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.CreateHerb(ctx, herb)
	if err != nil {
		log.Error("failed to create herb", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("herb created successfully", slog.String("slug", created.Slug))
	return created, nil
}

// GetHerb возвращает статью по slug вместе с изображениями в порядке позиций.
func (s *HerbService) GetHerb(ctx context.Context, herbSlug string) (*models.Herb, error) {
	const op = "service.HerbService.GetHerb"

	herb, err := s.repo.GetHerbBySlug(ctx, herbSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return herb, nil
}

// ListHerbs возвращает список статей с фильтрами поиска.
func (s *HerbService) ListHerbs(ctx context.Context, query, letter string) ([]models.Herb, error) {
	const op = "service.HerbService.ListHerbs"
	log := s.log.With(
		slog.String("op", op),
		slog.String("query", query),
		slog.String("letter", letter),
	)

	herbs, err := s.repo.ListHerbs(ctx, repository.HerbFilter{Query: query, Letter: letter})
	if err != nil {
		log.Error("failed to list herbs", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return herbs, nil
}

// UpdateHerb частично обновляет статью: заданы только изменяемые поля.
func (s *HerbService) UpdateHerb(ctx context.Context, herbSlug string, req dto.UpdateHerbRequest) (*models.Herb, error) {
	const op = "service.HerbService.UpdateHerb"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", herbSlug),
	)

	log.Info("updating herb")

	herb, err := s.repo.GetHerbBySlug(ctx, herbSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Slug != nil && *req.Slug != herb.Slug {
		next := *req.Slug
		if !slug.IsValid(next) {
			next = slug.Make(next)
		}
		if next == "" {
			return nil, models.NewValidationError("invalid slug %q", *req.Slug)
		}
		updates["slug"] = next
	}
	if req.ScientificName != nil {
		updates["scientific_name"] = *req.ScientificName
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Properties != nil {
		updates["properties"] = models.StringList(*req.Properties)
	}
	if req.Uses != nil {
		updates["uses"] = models.StringList(*req.Uses)
	}
	if req.Contraindications != nil {
		updates["contraindications"] = *req.Contraindications
	}
	if req.CustomSections != nil {
		sections := models.SectionList(dto.SectionsToDomain(*req.CustomSections))
		next := *herb
		next.CustomSections = sections
		if err := next.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		updates["custom_sections"] = sections
	}

	if len(updates) == 0 {
		return herb, nil
	}

	if err := s.repo.UpdateHerbFields(ctx, herb.ID, updates); err != nil {
		log.Error("failed to update herb", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resultSlug := herb.Slug
	if next, ok := updates["slug"].(string); ok {
		resultSlug = next
	}

	updated, err := s.repo.GetHerbBySlug(ctx, resultSlug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("herb updated successfully")
	return updated, nil
}

// DeleteHerb удаляет статью вместе с изображениями.
func (s *HerbService) DeleteHerb(ctx context.Context, herbSlug string) error {
	const op = "service.HerbService.DeleteHerb"
	log := s.log.With(
		slog.String("op", op),
		slog.String("slug", herbSlug),
	)

	log.Info("deleting herb")

	if err := s.repo.DeleteHerb(ctx, herbSlug); err != nil {
		log.Error("failed to delete herb", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("herb deleted successfully")
	return nil
}
