package models

import (
	"github.com/google/uuid"
)

// SectionPatch частичное обновление секции: nil-поля не трогаются.
type SectionPatch struct {
	Title *string
	Kind  *SectionKind
	Value *SectionValue
}

// AddSection возвращает копию коллекции с новой пустой секцией указанного
// типа в конце. Id генерируется и остаётся уникальным в пределах травы.
func AddSection(sections []Section, kind SectionKind) ([]Section, error) {
	if !kind.IsValid() {
		return nil, NewValidationError("unknown section kind %q", kind)
	}

	next := Section{
		ID:    "section-" + uuid.NewString(),
		Title: "",
		Kind:  kind,
		Value: EmptySectionValue(kind),
	}

	out := make([]Section, 0, len(sections)+1)
	out = append(out, sections...)
	out = append(out, next)
	return out, nil
}

// RemoveSection удаляет секцию с совпадающим id. Отсутствующий id не
// ошибка: удаление идемпотентно, вход возвращается без изменений.
func RemoveSection(sections []Section, id string) []Section {
	idx := indexOfSection(sections, id)
	if idx < 0 {
		return sections
	}

	out := make([]Section, 0, len(sections)-1)
	out = append(out, sections[:idx]...)
	out = append(out, sections[idx+1:]...)
	return out
}

// UpdateSection сливает patch в секцию с совпадающим id, остальные не
// трогает. Отсутствующий id — no-op. Смена типа без нового значения
// прогоняет старое значение через кодек нового типа, чтобы форма значения
// всегда соответствовала типу секции.
func UpdateSection(sections []Section, id string, patch SectionPatch) []Section {
	idx := indexOfSection(sections, id)
	if idx < 0 {
		return sections
	}

	out := make([]Section, len(sections))
	copy(out, sections)

	s := out[idx]
	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Kind != nil && patch.Kind.IsValid() && *patch.Kind != s.Kind {
		oldKind := s.Kind
		s.Kind = *patch.Kind
		if patch.Value == nil {
			s.Value = DecodeSectionValue(s.Kind, s.Value.Encode(oldKind))
		}
	}
	if patch.Value != nil {
		s.Value = *patch.Value
	}
	out[idx] = s
	return out
}

// ReorderSections переносит секцию с позиции from на позицию to, сдвигая
// промежуточные. Мультимножество id не меняется.
func ReorderSections(sections []Section, from, to int) ([]Section, error) {
	n := len(sections)
	if from < 0 || from >= n {
		return nil, NewValidationError("from index %d out of range [0, %d)", from, n)
	}
	if to < 0 || to >= n {
		return nil, NewValidationError("to index %d out of range [0, %d)", to, n)
	}
	if from == to {
		return sections, nil
	}

	out := make([]Section, 0, n)
	out = append(out, sections[:from]...)
	out = append(out, sections[from+1:]...)

	moved := sections[from]
	out = append(out[:to], append([]Section{moved}, out[to:]...)...)
	return out, nil
}

func indexOfSection(sections []Section, id string) int {
	for i, s := range sections {
		if s.ID == id {
			return i
		}
	}
	return -1
}
