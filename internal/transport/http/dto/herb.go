package dto

import (
	"time"

	"herbarium/internal/domain/models"

	"github.com/google/uuid"
)

type CreateHerbRequest struct {
	Slug              string           `json:"slug" validate:"omitempty,max=100"`
	Name              string           `json:"name" validate:"required,min=1,max=200"`
	ScientificName    *string          `json:"scientific_name" validate:"omitempty,max=200"`
	Description       *string          `json:"description" validate:"omitempty,max=1000"`
	Properties        []string         `json:"properties" validate:"omitempty,max=20,dive,max=100"`
	Uses              []string         `json:"uses" validate:"omitempty,max=20,dive,max=100"`
	Contraindications *string          `json:"contraindications" validate:"omitempty,max=1000"`
	CustomSections    []SectionPayload `json:"custom_sections"`
}

// ToDomain преобразует DTO в доменную модель
func (r CreateHerbRequest) ToDomain(slug string) *models.Herb {
	now := time.Now().UTC()
	return &models.Herb{
		ID:                uuid.New(),
		Slug:              slug,
		Name:              r.Name,
		ScientificName:    r.ScientificName,
		Description:       r.Description,
		Properties:        r.Properties,
		Uses:              r.Uses,
		Contraindications: r.Contraindications,
		CustomSections:    SectionsToDomain(r.CustomSections),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// UpdateHerbRequest частичное обновление: nil-поля не трогаются.
type UpdateHerbRequest struct {
	Slug              *string           `json:"slug" validate:"omitempty,max=100"`
	Name              *string           `json:"name" validate:"omitempty,min=1,max=200"`
	ScientificName    *string           `json:"scientific_name" validate:"omitempty,max=200"`
	Description       *string           `json:"description" validate:"omitempty,max=1000"`
	Properties        *[]string         `json:"properties" validate:"omitempty,max=20,dive,max=100"`
	Uses              *[]string         `json:"uses" validate:"omitempty,max=20,dive,max=100"`
	Contraindications *string           `json:"contraindications" validate:"omitempty,max=1000"`
	CustomSections    *[]SectionPayload `json:"custom_sections"`
}

type ListHerbsRequest struct {
	Query  string `query:"q"`
	Letter string `query:"letter" validate:"omitempty,len=1"`
}
