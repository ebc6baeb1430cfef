package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSections() []Section {
	return []Section{
		{ID: "s1", Title: "One", Kind: SectionKindRichText, Value: SectionValue{Text: "1"}},
		{ID: "s2", Title: "Two", Kind: SectionKindList, Value: SectionValue{Items: []string{"a"}}},
		{ID: "s3", Title: "Three", Kind: SectionKindKeyValue, Value: SectionValue{Pairs: []KeyValueItem{}}},
	}
}

func TestAddSection(t *testing.T) {
	out, err := AddSection(sampleSections(), SectionKindList)
	require.NoError(t, err)

	require.Len(t, out, 4)
	added := out[3]
	assert.True(t, strings.HasPrefix(added.ID, "section-"))
	assert.Equal(t, "", added.Title)
	assert.Equal(t, SectionKindList, added.Kind)
	assert.NotNil(t, added.Value.Items)
	assert.Empty(t, added.Value.Items)
}

func TestAddSection_UniqueIDs(t *testing.T) {
	sections := sampleSections()
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		var err error
		sections, err = AddSection(sections, SectionKindRichText)
		require.NoError(t, err)
		id := sections[len(sections)-1].ID
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestAddSection_InvalidKind(t *testing.T) {
	_, err := AddSection(sampleSections(), SectionKind("table"))

	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestRemoveSection(t *testing.T) {
	out := RemoveSection(sampleSections(), "s2")

	require.Len(t, out, 2)
	assert.Equal(t, "s1", out[0].ID)
	assert.Equal(t, "s3", out[1].ID)
}

func TestRemoveSection_MissingIDIsNoop(t *testing.T) {
	in := sampleSections()
	out := RemoveSection(in, "nope")

	assert.Equal(t, in, out)
}

func TestUpdateSection_PartialPatch(t *testing.T) {
	title := "Renamed"
	out := UpdateSection(sampleSections(), "s1", SectionPatch{Title: &title})

	assert.Equal(t, "Renamed", out[0].Title)
	// значение и kind не тронуты
	assert.Equal(t, SectionKindRichText, out[0].Kind)
	assert.Equal(t, "1", out[0].Value.Text)
	// соседи не тронуты
	assert.Equal(t, "Two", out[1].Title)
}

func TestUpdateSection_MissingIDIsNoop(t *testing.T) {
	title := "x"
	in := sampleSections()
	out := UpdateSection(in, "nope", SectionPatch{Title: &title})

	assert.Equal(t, in, out)
}

func TestUpdateSection_KindChangeWithoutValueCoercesShape(t *testing.T) {
	kind := SectionKindList
	out := UpdateSection(sampleSections(), "s1", SectionPatch{Kind: &kind})

	// richtext → list: старый текст не тащится под новым kind'ом
	assert.Equal(t, SectionKindList, out[0].Kind)
	assert.Equal(t, "", out[0].Value.Text)
	require.NotNil(t, out[0].Value.Items)
	assert.Empty(t, out[0].Value.Items)
}

func TestUpdateSection_KindChangeBetweenTextKindsKeepsText(t *testing.T) {
	kind := SectionKindMarkdown
	out := UpdateSection(sampleSections(), "s1", SectionPatch{Kind: &kind})

	assert.Equal(t, SectionKindMarkdown, out[0].Kind)
	assert.Equal(t, "1", out[0].Value.Text)
}

func TestUpdateSection_KindChangeWithValueUsesValue(t *testing.T) {
	kind := SectionKindList
	value := SectionValue{Items: []string{"root", "leaf"}}
	out := UpdateSection(sampleSections(), "s1", SectionPatch{Kind: &kind, Value: &value})

	assert.Equal(t, SectionKindList, out[0].Kind)
	assert.Equal(t, []string{"root", "leaf"}, out[0].Value.Items)
}

func TestUpdateSection_DoesNotMutateInput(t *testing.T) {
	in := sampleSections()
	title := "Changed"
	_ = UpdateSection(in, "s1", SectionPatch{Title: &title})

	assert.Equal(t, "One", in[0].Title)
}

func TestReorderSections_MoveForward(t *testing.T) {
	out, err := ReorderSections(sampleSections(), 0, 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"s2", "s3", "s1"}, sectionIDs(out))
}

func TestReorderSections_MoveBackward(t *testing.T) {
	out, err := ReorderSections(sampleSections(), 2, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"s3", "s1", "s2"}, sectionIDs(out))
}

func TestReorderSections_SamePosition(t *testing.T) {
	in := sampleSections()
	out, err := ReorderSections(in, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, sectionIDs(in), sectionIDs(out))
}

func TestReorderSections_OutOfRange(t *testing.T) {
	_, err := ReorderSections(sampleSections(), 3, 0)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	_, err = ReorderSections(sampleSections(), 0, -1)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func sectionIDs(sections []Section) []string {
	ids := make([]string, len(sections))
	for i, s := range sections {
		ids[i] = s.ID
	}
	return ids
}
