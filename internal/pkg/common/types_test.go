package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDietaryTag(t *testing.T) {
	cases := map[string]DietaryTag{
		"Vegan":             TagVegan,
		"vegan":             TagVegan,
		" VEGAN ":           TagVegan,
		"gluten-free":       TagGlutenFree,
		"gluten free":       TagGlutenFree,
		"gluten_free":       TagGlutenFree,
		"Diabetic-Friendly": TagDiabeticFriendly,
	}
	for input, want := range cases {
		got, ok := ParseDietaryTag(input)
		require.True(t, ok, "input %q", input)
		assert.Equal(t, want, got)
	}

	for _, input := range []string{"", "carnivore", "halal"} {
		_, ok := ParseDietaryTag(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestParseCuisine(t *testing.T) {
	got, ok := ParseCuisine("italian")
	require.True(t, ok)
	assert.Equal(t, CuisineItalian, got)

	for _, input := range []string{"", "Any", "any", "martian"} {
		_, ok := ParseCuisine(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestParseDifficulty(t *testing.T) {
	got, ok := ParseDifficulty("INTERMEDIATE")
	require.True(t, ok)
	assert.Equal(t, DifficultyIntermediate, got)

	for _, input := range []string{"", "Any", "impossible"} {
		_, ok := ParseDifficulty(input)
		assert.False(t, ok, "input %q", input)
	}
}

func TestSatisfiesRestrictions(t *testing.T) {
	recipe := &Recipe{DietaryTags: []string{"vegan", "Gluten-Free"}}

	assert.True(t, recipe.SatisfiesRestrictions(nil))
	assert.True(t, recipe.SatisfiesRestrictions([]DietaryTag{TagVegan}))
	assert.True(t, recipe.SatisfiesRestrictions([]DietaryTag{TagVegan, TagGlutenFree}))
	assert.False(t, recipe.SatisfiesRestrictions([]DietaryTag{TagVegan, TagNutFree}))

	// 宣告了認不得的標籤不算數
	weird := &Recipe{DietaryTags: []string{"super-healthy"}}
	assert.False(t, weird.SatisfiesRestrictions([]DietaryTag{TagVegan}))
}

func TestFormatNutrition(t *testing.T) {
	out := FormatNutrition(map[string]float64{
		"protein_grams":        12.5,
		"calories_per_serving": 350,
	})

	// key 排序固定、整數不帶小數點
	assert.Equal(t, "- calories_per_serving: 350\n- protein_grams: 12.5\n", out)
}

func TestStripMarkdownFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripMarkdownFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripMarkdownFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripMarkdownFence(`{"a":1}`))
}

func TestParseJSONRejectsTrailingData(t *testing.T) {
	var v map[string]interface{}
	assert.Error(t, ParseJSON(`{"a":1} extra`, &v))
	assert.NoError(t, ParseJSON(`{"a":1}`, &v))
}
