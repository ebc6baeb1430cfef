package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSectionValue_Text(t *testing.T) {
	v := DecodeSectionValue(SectionKindRichText, "some <b>html</b>")
	assert.Equal(t, "some <b>html</b>", v.Text)

	v = DecodeSectionValue(SectionKindMarkdown, "# heading")
	assert.Equal(t, "# heading", v.Text)
}

func TestDecodeSectionValue_TextFromWrongShape(t *testing.T) {
	// список, сохранённый под текстовым kind, читается как пустой текст
	v := DecodeSectionValue(SectionKindRichText, []any{"a", "b"})
	assert.Equal(t, "", v.Text)

	v = DecodeSectionValue(SectionKindMarkdown, map[string]any{"key": "x"})
	assert.Equal(t, "", v.Text)
}

func TestDecodeSectionValue_List(t *testing.T) {
	v := DecodeSectionValue(SectionKindList, []any{"root", "  leaf  ", "", 42, nil, "flower"})

	assert.Equal(t, []string{"root", "leaf", "flower"}, v.Items)
}

func TestDecodeSectionValue_ListFromStringSlice(t *testing.T) {
	v := DecodeSectionValue(SectionKindList, []string{" bark ", "", "seed"})

	assert.Equal(t, []string{"bark", "seed"}, v.Items)
}

func TestDecodeSectionValue_ListFromScalar(t *testing.T) {
	v := DecodeSectionValue(SectionKindList, "not a list")

	require.NotNil(t, v.Items)
	assert.Empty(t, v.Items)
}

func TestDecodeSectionValue_KeyValue(t *testing.T) {
	raw := []any{
		map[string]any{"key": "Taste", "value": "bitter"},
		map[string]any{"key": "", "value": "dropped"},
		map[string]any{"value": "no key"},
		map[string]any{"key": "Temperature", "value": nil},
		"not an object",
	}

	v := DecodeSectionValue(SectionKindKeyValue, raw)

	require.Len(t, v.Pairs, 2)
	assert.Equal(t, "Taste", v.Pairs[0].Key)
	require.NotNil(t, v.Pairs[0].Value)
	assert.Equal(t, "bitter", *v.Pairs[0].Value)
	assert.Equal(t, "Temperature", v.Pairs[1].Key)
	assert.Nil(t, v.Pairs[1].Value)
}

func TestEncode_RoundTrip(t *testing.T) {
	cases := []struct {
		kind SectionKind
		raw  any
	}{
		{SectionKindRichText, "plain text"},
		{SectionKindList, []any{"a", "b"}},
		{SectionKindKeyValue, []any{map[string]any{"key": "k", "value": "v"}}},
	}

	for _, tc := range cases {
		decoded := DecodeSectionValue(tc.kind, tc.raw)
		encoded := decoded.Encode(tc.kind)
		again := DecodeSectionValue(tc.kind, encoded)

		assert.Equal(t, decoded, again, "kind %s", tc.kind)
	}
}

func TestEmptySectionValue_Shapes(t *testing.T) {
	assert.Equal(t, "", EmptySectionValue(SectionKindRichText).Text)
	assert.NotNil(t, EmptySectionValue(SectionKindList).Items)
	assert.NotNil(t, EmptySectionValue(SectionKindKeyValue).Pairs)

	assert.True(t, EmptySectionValue(SectionKindList).IsEmpty(SectionKindList))
	assert.True(t, EmptySectionValue(SectionKindKeyValue).IsEmpty(SectionKindKeyValue))
	assert.True(t, EmptySectionValue(SectionKindMarkdown).IsEmpty(SectionKindMarkdown))
}

func TestSection_UnmarshalJSON_UnknownKind(t *testing.T) {
	data := []byte(`{"id":"section-1","title":"Old","kind":"table","value":"kept as text?"}`)

	var s Section
	require.NoError(t, json.Unmarshal(data, &s))

	assert.Equal(t, SectionKindRichText, s.Kind)
	assert.Equal(t, "kept as text?", s.Value.Text)
}

func TestSection_MarshalJSON_PerKindValue(t *testing.T) {
	s := Section{
		ID:    "section-1",
		Title: "Parts",
		Kind:  SectionKindList,
		Value: SectionValue{Items: []string{"root", "leaf"}},
	}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"section-1","title":"Parts","kind":"list","value":["root","leaf"]}`, string(data))
}

func TestSectionList_Scan_OrderedList(t *testing.T) {
	data := []byte(`[{"id":"a","title":"A","kind":"richtext","value":"x"},{"id":"b","title":"B","kind":"list","value":["1"]}]`)

	var l SectionList
	require.NoError(t, l.Scan(data))

	require.Len(t, l, 2)
	assert.Equal(t, "a", l[0].ID)
	assert.Equal(t, []string{"1"}, l[1].Value.Items)
}

func TestSectionList_Scan_Nil(t *testing.T) {
	var l SectionList
	require.NoError(t, l.Scan(nil))
	assert.Empty(t, l)
}

func TestSectionList_Scan_LegacyBag(t *testing.T) {
	// старый формат: объект "ключ → значение" без порядка
	data := []byte(`{
		"zz-custom": ["x", "y"],
		"family": "Asteraceae",
		"partsUsed": ["root"],
		"aa-notes": "free text",
		"pairs-ish": [{"key":"Taste","value":"sweet"}]
	}`)

	var l SectionList
	require.NoError(t, l.Scan(data))

	require.Len(t, l, 5)

	// слоты реестра первыми, в порядке реестра
	assert.Equal(t, "family", l[0].ID)
	assert.Equal(t, SectionKindRichText, l[0].Kind)
	assert.Equal(t, "Asteraceae", l[0].Value.Text)

	assert.Equal(t, "partsUsed", l[1].ID)
	assert.Equal(t, SectionKindList, l[1].Kind)
	assert.Equal(t, []string{"root"}, l[1].Value.Items)

	// остальные ключи по алфавиту
	assert.Equal(t, "aa-notes", l[2].ID)
	assert.Equal(t, SectionKindRichText, l[2].Kind)

	assert.Equal(t, "pairs-ish", l[3].ID)
	assert.Equal(t, SectionKindKeyValue, l[3].Kind)

	assert.Equal(t, "zz-custom", l[4].ID)
	assert.Equal(t, SectionKindList, l[4].Kind)
	assert.Equal(t, []string{"x", "y"}, l[4].Value.Items)
}

func TestSectionList_Value_NilBecomesEmptyArray(t *testing.T) {
	var l SectionList

	v, err := l.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(v.([]byte)))
}
