package models

import (
	"database/sql/driver"
	"encoding/json"
	"sort"
	"strings"
)

type SectionKind string

const (
	SectionKindRichText SectionKind = "richtext"
	SectionKindMarkdown SectionKind = "markdown"
	SectionKindList     SectionKind = "list"
	SectionKindKeyValue SectionKind = "keyvalue"
)

// IsValid проверяет, что kind входит в набор поддерживаемых типов секций.
func (k SectionKind) IsValid() bool {
	switch k {
	case SectionKindRichText, SectionKindMarkdown, SectionKindList, SectionKindKeyValue:
		return true
	}
	return false
}

// IsText сообщает, хранит ли секция этого типа одиночную строку.
func (k SectionKind) IsText() bool {
	return k == SectionKindRichText || k == SectionKindMarkdown
}

// KeyValueItem одна пара ключ/значение в секции типа keyvalue.
// Значение может быть null.
type KeyValueItem struct {
	Key   string  `json:"key"`
	Value *string `json:"value"`
}

// SectionValue нормализованное значение секции. Ровно одно из полей
// осмысленно, выбор определяется kind'ом секции: Text для richtext/markdown,
// Items для list, Pairs для keyvalue.
type SectionValue struct {
	Text  string
	Items []string
	Pairs []KeyValueItem
}

// EmptySectionValue возвращает пустое значение правильной формы для kind.
func EmptySectionValue(kind SectionKind) SectionValue {
	switch kind {
	case SectionKindList:
		return SectionValue{Items: []string{}}
	case SectionKindKeyValue:
		return SectionValue{Pairs: []KeyValueItem{}}
	default:
		return SectionValue{Text: ""}
	}
}

// DecodeSectionValue нормализует произвольное сохранённое значение к форме,
// соответствующей kind. Никогда не возвращает ошибку: прежние правки могли
// сохранить значение под другим kind'ом, и путь чтения обязан это пережить.
// Нестроковые элементы списков и пары без пригодного ключа отбрасываются.
func DecodeSectionValue(kind SectionKind, raw any) SectionValue {
	switch kind {
	case SectionKindList:
		return SectionValue{Items: decodeItems(raw)}
	case SectionKindKeyValue:
		return SectionValue{Pairs: decodePairs(raw)}
	default:
		if s, ok := raw.(string); ok {
			return SectionValue{Text: s}
		}
		return SectionValue{Text: ""}
	}
}

func decodeItems(raw any) []string {
	items := []string{}
	switch vv := raw.(type) {
	case []string:
		for _, s := range vv {
			if t := strings.TrimSpace(s); t != "" {
				items = append(items, t)
			}
		}
	case []any:
		for _, e := range vv {
			s, ok := e.(string)
			if !ok {
				continue
			}
			if t := strings.TrimSpace(s); t != "" {
				items = append(items, t)
			}
		}
	}
	return items
}

func decodePairs(raw any) []KeyValueItem {
	pairs := []KeyValueItem{}
	switch vv := raw.(type) {
	case []KeyValueItem:
		for _, p := range vv {
			if strings.TrimSpace(p.Key) == "" {
				continue
			}
			pairs = append(pairs, p)
		}
	case []any:
		for _, e := range vv {
			m, ok := e.(map[string]any)
			if !ok {
				continue
			}
			key, ok := m["key"].(string)
			if !ok || strings.TrimSpace(key) == "" {
				continue
			}
			item := KeyValueItem{Key: key}
			if s, ok := m["value"].(string); ok {
				item.Value = &s
			}
			pairs = append(pairs, item)
		}
	}
	return pairs
}

// Encode обратная операция к DecodeSectionValue: возвращает представление,
// пригодное для сериализации (строка, срез строк или срез пар).
func (v SectionValue) Encode(kind SectionKind) any {
	switch kind {
	case SectionKindList:
		if v.Items == nil {
			return []string{}
		}
		return v.Items
	case SectionKindKeyValue:
		if v.Pairs == nil {
			return []KeyValueItem{}
		}
		return v.Pairs
	default:
		return v.Text
	}
}

// IsEmpty сообщает, пусто ли значение с точки зрения редактора.
func (v SectionValue) IsEmpty(kind SectionKind) bool {
	switch kind {
	case SectionKindList:
		return len(v.Items) == 0
	case SectionKindKeyValue:
		return len(v.Pairs) == 0
	default:
		return v.Text == ""
	}
}

// Section один титулованный блок контента травы. ID назначается при
// создании и стабилен на протяжении всех правок и перестановок.
type Section struct {
	ID    string
	Title string
	Kind  SectionKind
	Value SectionValue
}

type sectionJSON struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Kind  SectionKind     `json:"kind"`
	Value json.RawMessage `json:"value"`
}

func (s Section) MarshalJSON() ([]byte, error) {
	value, err := json.Marshal(s.Value.Encode(s.Kind))
	if err != nil {
		return nil, err
	}
	return json.Marshal(sectionJSON{
		ID:    s.ID,
		Title: s.Title,
		Kind:  s.Kind,
		Value: value,
	})
}

func (s *Section) UnmarshalJSON(data []byte) error {
	var aux sectionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	kind := aux.Kind
	if !kind.IsValid() {
		// неизвестный kind читаем как богатый текст, не падаем
		kind = SectionKindRichText
	}

	var raw any
	if len(aux.Value) > 0 {
		_ = json.Unmarshal(aux.Value, &raw)
	}

	s.ID = aux.ID
	s.Title = aux.Title
	s.Kind = kind
	s.Value = DecodeSectionValue(kind, raw)
	return nil
}

// SectionList упорядоченная коллекция секций одной травы.
// Хранится в БД одним JSONB-блобом.
type SectionList []Section

// Value реализует интерфейс driver.Valuer для сериализации в JSONB
func (l SectionList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]Section{})
	}
	return json.Marshal(l)
}

// Scan реализует интерфейс sql.Scanner для десериализации JSONB.
// Легаси-формат "ключ → значение" конвертируется в упорядоченный список
// секций с синтетическими id, равными ключам.
func (l *SectionList) Scan(value interface{}) error {
	if value == nil {
		*l = SectionList{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		*l = SectionList{}
		return nil
	}

	if len(data) == 0 {
		*l = SectionList{}
		return nil
	}

	var sections []Section
	if err := json.Unmarshal(data, &sections); err == nil {
		*l = sections
		return nil
	}

	var bag map[string]json.RawMessage
	if err := json.Unmarshal(data, &bag); err != nil {
		*l = SectionList{}
		return nil
	}
	*l = sectionsFromBag(bag)
	return nil
}

// sectionsFromBag однократная конвертация легаси-представления: известные
// слоты идут в порядке реестра, остальные ключи по алфавиту.
func sectionsFromBag(bag map[string]json.RawMessage) SectionList {
	ordered := make([]string, 0, len(bag))
	for _, slot := range DefaultSections {
		if _, ok := bag[slot.ID]; ok {
			ordered = append(ordered, slot.ID)
		}
	}
	rest := make([]string, 0, len(bag))
	for key := range bag {
		if !IsDefaultSectionID(key) {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	ordered = append(ordered, rest...)

	sections := make(SectionList, 0, len(ordered))
	for _, key := range ordered {
		var raw any
		_ = json.Unmarshal(bag[key], &raw)

		kind := SectionKindRichText
		if slot, ok := DefaultSectionByID(key); ok {
			kind = slot.Kind
		} else if arr, isArr := raw.([]any); isArr {
			kind = SectionKindList
			if len(arr) > 0 {
				if _, isObj := arr[0].(map[string]any); isObj {
					kind = SectionKindKeyValue
				}
			}
		}

		sections = append(sections, Section{
			ID:    key,
			Title: key,
			Kind:  kind,
			Value: DecodeSectionValue(kind, raw),
		})
	}
	return sections
}
