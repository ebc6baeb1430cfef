package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Herb представляет одну статью энциклопедии трав.
type Herb struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	Slug              string      `json:"slug" db:"slug"`
	Name              string      `json:"name" db:"name"`
	ScientificName    *string     `json:"scientific_name,omitempty" db:"scientific_name"`
	Description       *string     `json:"description,omitempty" db:"description"`
	Properties        StringList  `json:"properties" db:"properties"`
	Uses              StringList  `json:"uses" db:"uses"`
	Contraindications *string     `json:"contraindications,omitempty" db:"contraindications"`
	CustomSections    SectionList `json:"custom_sections" db:"custom_sections"`
	CreatedAt         time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at" db:"updated_at"`

	// Заполняется отдельным запросом, в таблице herbs не хранится.
	Images []Image `json:"images,omitempty" db:"-"`
}

// Validate проверяет корректность данных статьи
func (h *Herb) Validate() error {
	if h.Name == "" {
		return NewValidationError("name is required")
	}
	if len(h.Name) > 200 {
		return NewValidationError("name must be 200 characters or less")
	}
	if h.Slug == "" {
		return NewValidationError("slug is required")
	}
	if len(h.Slug) > 100 {
		return NewValidationError("slug must be 100 characters or less")
	}
	if h.ScientificName != nil && len(*h.ScientificName) > 200 {
		return NewValidationError("scientific name must be 200 characters or less")
	}
	if h.Description != nil && len(*h.Description) > 1000 {
		return NewValidationError("description must be 1000 characters or less")
	}
	if len(h.Properties) > 20 {
		return NewValidationError("too many properties (max 20)")
	}
	if len(h.Uses) > 20 {
		return NewValidationError("too many uses (max 20)")
	}

	seen := make(map[string]struct{}, len(h.CustomSections))
	for _, s := range h.CustomSections {
		if _, dup := seen[s.ID]; dup {
			return NewValidationError("duplicate section id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}

	return nil
}

// StringList массив строк, хранимый в JSONB-колонке.
type StringList []string

// Value реализует интерфейс driver.Valuer для сериализации в JSONB
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(l)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		*l = StringList{}
		return nil
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		*l = StringList{}
		return nil
	}
	*l = out
	return nil
}
