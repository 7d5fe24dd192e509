package recipe

import (
	"fmt"
	"strings"

	"recipe-suggester/internal/pkg/common"
)

// 匯出檔名
const (
	ExportFilenameJSON = "filtered_recipes.json"
	ExportFilenameText = "filtered_recipes.txt"
)

// ExportJSON 將食譜列表匯出成縮排的 JSON 文件
func ExportJSON(recipes []common.RatedRecipe) (string, error) {
	plain := make([]common.Recipe, 0, len(recipes))
	for _, r := range recipes {
		plain = append(plain, r.Recipe)
	}
	return common.ToJSONIndent(map[string][]common.Recipe{"recipes": plain})
}

// ExportText 將食譜列表匯出成純文字版本
// 每份食譜以 --- 收尾，食譜之間空一行
func ExportText(recipes []common.RatedRecipe) string {
	sections := make([]string, 0, len(recipes))
	for i, r := range recipes {
		sections = append(sections, formatRecipeText(&r.Recipe, i+1))
	}
	return strings.Join(sections, "\n\n")
}

func formatRecipeText(r *common.Recipe, index int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Recipe %d: %s\n", index, r.RecipeName))
	sb.WriteString(fmt.Sprintf("Cooking Time: %d minutes\n", r.CookingTimeMinutes))
	sb.WriteString(fmt.Sprintf("Difficulty: %s\n", r.DifficultyLevel))
	sb.WriteString(fmt.Sprintf("Servings: %d\n", r.Servings))
	sb.WriteString(fmt.Sprintf("Dietary Tags: %s\n", strings.Join(r.DietaryTags, ", ")))
	sb.WriteString(fmt.Sprintf("Allergen Warnings: %s\n", strings.Join(r.AllergenWarnings, ", ")))

	sb.WriteString("\nIngredients:\n")
	for _, ing := range r.Ingredients {
		sb.WriteString(fmt.Sprintf("- %s %s\n", ing.Quantity, ing.Ingredient))
	}

	sb.WriteString("\nInstructions:\n")
	for i, inst := range r.Instructions {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, inst))
	}

	sb.WriteString("\nNutritional Info (per serving):\n")
	sb.WriteString(common.FormatNutrition(r.NutritionalInfo))

	sb.WriteString("\nCooking Tips:\n")
	for _, tip := range r.CookingTips {
		sb.WriteString(fmt.Sprintf("- %s\n", tip))
	}

	sb.WriteString("\n---")
	return sb.String()
}
