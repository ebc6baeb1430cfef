package dto

import (
	"encoding/json"

	"herbarium/internal/domain/models"
)

// SectionPayload секция в том виде, в котором её присылает редактор.
// Value приходит произвольным JSON и нормализуется кодеком по kind.
type SectionPayload struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// ToDomain преобразует DTO в доменную модель
func (p SectionPayload) ToDomain() models.Section {
	kind := models.SectionKind(p.Kind)
	if !kind.IsValid() {
		kind = models.SectionKindRichText
	}

	var raw any
	if len(p.Value) > 0 {
		_ = json.Unmarshal(p.Value, &raw)
	}

	return models.Section{
		ID:    p.ID,
		Title: p.Title,
		Kind:  kind,
		Value: models.DecodeSectionValue(kind, raw),
	}
}

// SectionsToDomain конвертирует весь список, сохраняя порядок.
func SectionsToDomain(payload []SectionPayload) []models.Section {
	sections := make([]models.Section, 0, len(payload))
	for _, p := range payload {
		sections = append(sections, p.ToDomain())
	}
	return sections
}

type AddSectionRequest struct {
	Kind string `json:"kind" validate:"required"`
}

type UpdateSectionRequest struct {
	Title *string         `json:"title"`
	Kind  *string         `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// ToPatch собирает частичное обновление. Значение декодируется против
// нового kind, если он передан, иначе против текущего.
func (r UpdateSectionRequest) ToPatch(currentKind models.SectionKind) models.SectionPatch {
	patch := models.SectionPatch{Title: r.Title}

	kind := currentKind
	if r.Kind != nil {
		k := models.SectionKind(*r.Kind)
		if k.IsValid() {
			kind = k
			patch.Kind = &k
		}
	}

	if len(r.Value) > 0 {
		var raw any
		_ = json.Unmarshal(r.Value, &raw)
		value := models.DecodeSectionValue(kind, raw)
		patch.Value = &value
	}

	return patch
}

type ReorderSectionsRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// SectionsEditResponse представление редактора: значения девяти слотов
// реестра плюс дополнительные секции.
type SectionsEditResponse struct {
	KnownValues   map[string]any   `json:"known_values"`
	ExtraSections []models.Section `json:"extra_sections"`
}

type SaveSectionsEditRequest struct {
	KnownValues   map[string]json.RawMessage `json:"known_values"`
	ExtraSections []SectionPayload           `json:"extra_sections"`
}
