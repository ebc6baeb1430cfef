package repository

import (
	"context"
	"time"

	"herbarium/internal/domain/models"

	"github.com/google/uuid"
)

// HerbFilter параметры выборки списка трав.
type HerbFilter struct {
	Query  string // подстрока в name/scientific_name/description
	Letter string // первая буква названия
}

type HerbRepository interface {
	CreateHerb(ctx context.Context, herb *models.Herb) (*models.Herb, error)
	GetHerbBySlug(ctx context.Context, slug string) (*models.Herb, error)
	ListHerbs(ctx context.Context, filter HerbFilter) ([]models.Herb, error)
	UpdateHerbFields(ctx context.Context, herbID uuid.UUID, updates map[string]interface{}) error
	// MutateHerbSections перечитывает секции под блокировкой строки травы,
	// применяет fn и пишет результат в той же транзакции. changed=false
	// пропускает запись.
	MutateHerbSections(ctx context.Context, herbID uuid.UUID, fn func(current models.SectionList) (models.SectionList, bool, error)) (models.SectionList, error)
	DeleteHerb(ctx context.Context, slug string) error
}

// ImageRepository выполняет мутации коллекции изображений одной травы под
// блокировкой строки травы: два конкурентных изменения не могут
// чередовать перенумерацию позиций.
type ImageRepository interface {
	ListImagesByHerbID(ctx context.Context, herbID uuid.UUID) ([]models.Image, error)
	AppendImage(ctx context.Context, herbID uuid.UUID, url string, alt *string) (*models.Image, error)
	DeleteImage(ctx context.Context, herbID, imageID uuid.UUID) (removedURL string, err error)
	SetPrimaryImage(ctx context.Context, herbID, imageID uuid.UUID) error
	ReorderImages(ctx context.Context, herbID uuid.UUID, order []uuid.UUID, promoteFirst bool) error
	UpdateImageAlt(ctx context.Context, herbID, imageID uuid.UUID, alt *string) (*models.Image, error)
}

type SessionRepository interface {
	SaveRefreshToken(ctx context.Context, subject, token string, exp time.Duration) error
	GetRefreshToken(ctx context.Context, subject, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, subject, token string) error
	DeleteAllSessions(ctx context.Context, subject string) error
}
