package models

// DefaultSectionSlot фиксированный, всегда отображаемый слот секции
// с заданным в коде заголовком и типом.
type DefaultSectionSlot struct {
	ID    string
	Title string
	Kind  SectionKind
}

// DefaultSections реестр из девяти слотов. Порядок реестра — канонический
// порядок сохранения.
var DefaultSections = []DefaultSectionSlot{
	{ID: "family", Title: "Family", Kind: SectionKindRichText},
	{ID: "location", Title: "Location", Kind: SectionKindRichText},
	{ID: "energetics", Title: "Energetics", Kind: SectionKindRichText},
	{ID: "partsUsed", Title: "Parts used", Kind: SectionKindList},
	{ID: "constituents", Title: "Constituents", Kind: SectionKindList},
	{ID: "dosage", Title: "Dosage", Kind: SectionKindRichText},
	{ID: "notesOnUse", Title: "Notes on Use", Kind: SectionKindRichText},
	{ID: "harvesting", Title: "Harvesting", Kind: SectionKindRichText},
	{ID: "recipes", Title: "Recipes", Kind: SectionKindList},
}

// DefaultSectionByID возвращает слот реестра по его id.
func DefaultSectionByID(id string) (DefaultSectionSlot, bool) {
	for _, slot := range DefaultSections {
		if slot.ID == id {
			return slot, true
		}
	}
	return DefaultSectionSlot{}, false
}

// IsDefaultSectionID сообщает, является ли id ключом одного из слотов.
func IsDefaultSectionID(id string) bool {
	_, ok := DefaultSectionByID(id)
	return ok
}

// MergeForEdit раскладывает сохранённые секции на представление редактора:
// по одному значению на каждый слот реестра (пустое правильной формы, если
// секции нет) плюс дополнительные секции админа в их сохранённом порядке.
// Секции без заголовка считаются неименованными черновиками и в
// дополнительные не попадают.
func MergeForEdit(stored []Section) (map[string]SectionValue, []Section) {
	known := make(map[string]SectionValue, len(DefaultSections))
	for _, slot := range DefaultSections {
		known[slot.ID] = EmptySectionValue(slot.Kind)
	}

	extras := []Section{}
	for _, s := range stored {
		if IsDefaultSectionID(s.ID) {
			known[s.ID] = s.Value
			continue
		}
		if s.Title == "" {
			continue
		}
		extras = append(extras, s)
	}

	return known, extras
}

// MergeForSave собирает единый упорядоченный список для сохранения: слоты
// реестра в порядке реестра с его заголовками и типами, затем
// дополнительные секции как есть.
func MergeForSave(known map[string]SectionValue, extras []Section) []Section {
	out := make([]Section, 0, len(DefaultSections)+len(extras))
	for _, slot := range DefaultSections {
		value, ok := known[slot.ID]
		if !ok {
			value = EmptySectionValue(slot.Kind)
		}
		out = append(out, Section{
			ID:    slot.ID,
			Title: slot.Title,
			Kind:  slot.Kind,
			Value: value,
		})
	}
	out = append(out, extras...)
	return out
}
