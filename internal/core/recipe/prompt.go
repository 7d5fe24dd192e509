package recipe

import (
	"fmt"
	"strings"

	"recipe-suggester/internal/pkg/common"
)

// SystemPrompt 模型的系統指令：固定的輸出 JSON 結構與各標籤的合規定義
// 回應一律要求 2-3 份食譜的嚴格 JSON，由 Response Validator 做最終把關
const SystemPrompt = `You are an expert chef and nutritionist AI. When users provide ingredients, you must:

IMPORTANT: Always respond with valid JSON format only, no additional text.

Generate 2-3 recipe suggestions using the provided ingredients with the following structure:

{
  "recipes": [
    {
      "recipe_name": "Name of the recipe",
      "ingredients": [
        {"ingredient": "ingredient name", "quantity": "amount with unit"}
      ],
      "instructions": [
        "Step 1 instruction",
        "Step 2 instruction",
        "etc."
      ],
      "cooking_time_minutes": 30,
      "difficulty_level": "Easy|Intermediate|Advanced",
      "servings": 4,
      "dietary_tags": ["Vegetarian", "Gluten-Free", "Low-Carb"],
      "nutritional_info": {
        "calories_per_serving": 350,
        "protein_grams": 25,
        "carbs_grams": 45,
        "fat_grams": 12,
        "fiber_grams": 8,
        "sugar_grams": 5
      },
      "cooking_tips": [
        "Helpful tip 1",
        "Helpful tip 2"
      ],
      "allergen_warnings": ["Contains nuts", "Contains dairy"]
    }
  ]
}

DIETARY RESTRICTIONS COMPLIANCE:
- If user specifies dietary restrictions, ALL recipes must comply with those restrictions
- Vegetarian: No meat, fish, or poultry
- Vegan: No animal products (meat, dairy, eggs, honey)
- Gluten-Free: No wheat, barley, rye, or gluten-containing ingredients
- Dairy-Free: No milk, cheese, butter, or dairy products
- Low-Carb: Maximum 20g carbs per serving
- Keto: Maximum 10g net carbs, high fat content
- Paleo: No grains, legumes, dairy, or processed foods
- Nut-Free: No tree nuts or peanuts
- Diabetic-Friendly: Low sugar, controlled carbs
- Heart-Healthy: Low sodium, low saturated fat

Requirements:
- Use primarily the ingredients provided by the user
- STRICTLY follow any dietary restrictions specified
- Suggest realistic quantities and additional ingredients that comply with dietary needs
- Include accurate dietary tags for each recipe
- List any allergen warnings
- Provide accurate cooking times and difficulty levels
- Include comprehensive nutritional estimates
- Give practical cooking tips
- Ensure all recipes are different from each other
- ALWAYS respond in valid JSON format only`

// BuildPrompt 將 RecipeRequest 渲染成送給模型的 prompt
// 純函數：相同請求必定產生逐位元相同的輸出，不能混入時間戳或亂數
func BuildPrompt(req *common.RecipeRequest) string {
	var sb strings.Builder

	sb.WriteString("Generate 2-3 recipe suggestions using these ingredients: ")
	sb.WriteString(strings.Join(req.Ingredients, ", "))
	sb.WriteString("\n")

	if len(req.DietaryRestrictions) > 0 {
		sb.WriteString("\nCRITICAL DIETARY REQUIREMENTS - ALL recipes must comply with:\n")
		sb.WriteString(common.FormatDietaryTags(req.DietaryRestrictions))
		sb.WriteString("\n\nEnsure every recipe strictly follows these dietary restrictions. Do not suggest any recipes that violate these requirements.\n")
	}

	var contextParts []string
	if req.Cuisine != "" {
		contextParts = append(contextParts, fmt.Sprintf("Cuisine type: %s", req.Cuisine))
	}
	if req.Difficulty != "" {
		contextParts = append(contextParts, fmt.Sprintf("Difficulty level: %s", req.Difficulty))
	}
	if req.MaxTimeMinutes > 0 {
		contextParts = append(contextParts, fmt.Sprintf("Maximum cooking time: %d minutes", req.MaxTimeMinutes))
	}
	if req.Notes != "" {
		contextParts = append(contextParts, fmt.Sprintf("Additional notes: %s", req.Notes))
	}
	if len(contextParts) > 0 {
		sb.WriteString("\nAdditional requirements:\n")
		sb.WriteString(strings.Join(contextParts, "\n"))
		sb.WriteString("\n")
	}

	sb.WriteString("\nRemember to respond with valid JSON format only, following the exact structure specified in the system instructions. Include accurate dietary_tags and allergen_warnings for each recipe.")

	return sb.String()
}
