package recipe

import (
	"fmt"
	"testing"

	"recipe-suggester/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecipeJSON(name string, tags string) string {
	return fmt.Sprintf(`{
		"recipe_name": %q,
		"ingredients": [{"ingredient": "flour", "quantity": "2 cups"}],
		"instructions": ["Mix everything", "Bake"],
		"cooking_time_minutes": 30,
		"difficulty_level": "Easy",
		"servings": 4,
		"dietary_tags": [%s],
		"nutritional_info": {"calories_per_serving": 350, "protein_grams": 12}
	}`, name, tags)
}

func envelope(recipes ...string) string {
	out := `{"recipes":[`
	for i, r := range recipes {
		if i > 0 {
			out += ","
		}
		out += r
	}
	return out + `]}`
}

func requireValidationCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	ve, ok := common.AsValidationError(err)
	require.True(t, ok, "expected a validation error, got %v", err)
	assert.Equal(t, code, ve.Code)
}

func TestValidateResponseMalformedJSON(t *testing.T) {
	for _, raw := range []string{
		"not json at all",
		`{"recipes": [{"recipe_name": "broken"`,
		"",
	} {
		_, err := ValidateResponse(raw, nil)
		requireValidationCode(t, err, common.ValCodeMalformedJSON)
	}
}

func TestValidateResponseWrongCount(t *testing.T) {
	// 1 份太少
	_, err := ValidateResponse(envelope(validRecipeJSON("Solo", "")), nil)
	requireValidationCode(t, err, common.ValCodeWrongCount)

	// 4 份太多
	_, err = ValidateResponse(envelope(
		validRecipeJSON("A", ""), validRecipeJSON("B", ""),
		validRecipeJSON("C", ""), validRecipeJSON("D", ""),
	), nil)
	requireValidationCode(t, err, common.ValCodeWrongCount)

	// 空陣列
	_, err = ValidateResponse(`{"recipes":[]}`, nil)
	requireValidationCode(t, err, common.ValCodeWrongCount)
}

func TestValidateResponseHappyPath(t *testing.T) {
	raw := envelope(
		validRecipeJSON("Pasta", `"Vegetarian"`),
		validRecipeJSON("Risotto", `"Vegetarian"`),
		validRecipeJSON("Pizza", `"Vegetarian"`),
	)

	recipes, err := ValidateResponse(raw, nil)
	require.NoError(t, err)
	require.Len(t, recipes, 3)
	assert.Equal(t, "Pasta", recipes[0].RecipeName)
	assert.Equal(t, "Risotto", recipes[1].RecipeName)
	assert.Equal(t, "Pizza", recipes[2].RecipeName)
	assert.Equal(t, float64(350), recipes[0].NutritionalInfo["calories_per_serving"])
}

func TestValidateResponseStripsMarkdownFence(t *testing.T) {
	raw := "```json\n" + envelope(validRecipeJSON("A", ""), validRecipeJSON("B", "")) + "\n```"

	recipes, err := ValidateResponse(raw, nil)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
}

func TestValidateResponseAcceptsBareArray(t *testing.T) {
	raw := "[" + validRecipeJSON("A", "") + "," + validRecipeJSON("B", "") + "]"

	recipes, err := ValidateResponse(raw, nil)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
}

func TestValidateResponseIgnoresChatterAroundJSON(t *testing.T) {
	raw := "Here are your recipes!\n" +
		envelope(validRecipeJSON("A", ""), validRecipeJSON("B", "")) +
		"\nEnjoy!"

	recipes, err := ValidateResponse(raw, nil)
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
}

func TestValidateResponseDropsNonCompliantRecipe(t *testing.T) {
	raw := envelope(
		validRecipeJSON("Vegan Bowl", `"Vegan"`),
		validRecipeJSON("Vegan Curry", `"Vegan", "Gluten-Free"`),
		validRecipeJSON("Beef Stew", `"Gluten-Free"`),
	)

	recipes, err := ValidateResponse(raw, []common.DietaryTag{common.TagVegan})
	require.NoError(t, err)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Vegan Bowl", recipes[0].RecipeName)
	assert.Equal(t, "Vegan Curry", recipes[1].RecipeName)
}

func TestValidateResponseInsufficientValidRecipes(t *testing.T) {
	// 三份裡只有一份符合 Vegan
	raw := envelope(
		validRecipeJSON("Vegan Bowl", `"Vegan"`),
		validRecipeJSON("Beef Stew", ""),
		validRecipeJSON("Chicken Soup", `"Gluten-Free"`),
	)

	_, err := ValidateResponse(raw, []common.DietaryTag{common.TagVegan})
	requireValidationCode(t, err, common.ValCodeInsufficientValidRecipes)
}

func TestValidateResponseDropsIncompleteRecipes(t *testing.T) {
	missingName := `{
		"recipe_name": "",
		"ingredients": [{"ingredient": "flour", "quantity": "2 cups"}],
		"instructions": ["Mix"],
		"nutritional_info": {"calories_per_serving": 100}
	}`
	missingNutrition := `{
		"recipe_name": "No Nutrition",
		"ingredients": [{"ingredient": "flour", "quantity": "2 cups"}],
		"instructions": ["Mix"],
		"nutritional_info": {}
	}`

	raw := envelope(validRecipeJSON("A", ""), missingName, missingNutrition)
	_, err := ValidateResponse(raw, nil)
	requireValidationCode(t, err, common.ValCodeInsufficientValidRecipes)
}

func TestValidateResponseTagCaseInsensitive(t *testing.T) {
	// 模型回傳 "vegan" 小寫也要算合規
	raw := envelope(
		validRecipeJSON("A", `"vegan"`),
		validRecipeJSON("B", `"VEGAN"`),
	)

	recipes, err := ValidateResponse(raw, []common.DietaryTag{common.TagVegan})
	require.NoError(t, err)
	assert.Len(t, recipes, 2)
}
