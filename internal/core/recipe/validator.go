package recipe

import (
	"encoding/json"
	"fmt"
	"strings"

	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

const (
	minRecipeCount = 2
	maxRecipeCount = 3
)

// recipeEnvelope 模型回應的標準外層結構
type recipeEnvelope struct {
	Recipes []json.RawMessage `json:"recipes"`
}

// ValidateResponse 驗證模型回傳的原始文字並取出合格的食譜
// 流程：去除 markdown 包裹 → 解析 JSON → 檢查數量 → 逐筆驗證 → 檢查存活數量
// 個別食譜不合格時丟棄該筆並記錄，不讓一筆壞資料毀掉整個回應
func ValidateResponse(raw string, restrictions []common.DietaryTag) ([]common.Recipe, error) {
	text := common.StripMarkdownFence(raw)
	text = extractJSONSpan(text)

	rawRecipes, err := parseRecipeList(text)
	if err != nil {
		common.LogWarn("AI 回應不是合法的 JSON", zap.Error(err))
		return nil, common.NewValidationError(common.ValCodeMalformedJSON,
			"AI 回應不是合法的 JSON")
	}

	if len(rawRecipes) < minRecipeCount || len(rawRecipes) > maxRecipeCount {
		common.LogWarn("AI 回應的食譜數量不正確", zap.Int("count", len(rawRecipes)))
		return nil, common.NewValidationError(common.ValCodeWrongCount,
			fmt.Sprintf("預期 %d-%d 份食譜，實際收到 %d 份", minRecipeCount, maxRecipeCount, len(rawRecipes)))
	}

	var valid []common.Recipe
	for i, rawRecipe := range rawRecipes {
		var recipe common.Recipe
		if err := common.ParseJSONBytes(rawRecipe, &recipe); err != nil {
			common.LogWarn("丟棄無法解析的食譜", zap.Int("index", i), zap.Error(err))
			continue
		}
		if reason := checkRecipe(&recipe, restrictions); reason != "" {
			common.LogWarn("丟棄不合格的食譜",
				zap.Int("index", i),
				zap.String("recipe_name", recipe.RecipeName),
				zap.String("reason", reason),
			)
			continue
		}
		valid = append(valid, recipe)
	}

	if len(valid) < minRecipeCount {
		return nil, common.NewValidationError(common.ValCodeInsufficientValidRecipes,
			fmt.Sprintf("合格食譜不足：%d 份（至少需要 %d 份）", len(valid), minRecipeCount))
	}

	return valid, nil
}

// parseRecipeList 解析 {"recipes":[...]} 外層；模型偶爾直接回傳陣列，也一併接受
func parseRecipeList(text string) ([]json.RawMessage, error) {
	var envelope recipeEnvelope
	if err := common.ParseJSON(text, &envelope); err == nil && envelope.Recipes != nil {
		return envelope.Recipes, nil
	}

	var bare []json.RawMessage
	if err := common.ParseJSON(text, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}

// checkRecipe 檢查單筆食譜，回傳不合格原因（空字串代表合格）
func checkRecipe(r *common.Recipe, restrictions []common.DietaryTag) string {
	if strings.TrimSpace(r.RecipeName) == "" {
		return "missing recipe_name"
	}
	if len(r.Ingredients) == 0 {
		return "missing ingredients"
	}
	for _, ing := range r.Ingredients {
		if strings.TrimSpace(ing.Ingredient) == "" {
			return "ingredient entry without a name"
		}
	}
	if len(r.Instructions) == 0 {
		return "missing instructions"
	}
	if len(r.NutritionalInfo) == 0 {
		return "missing nutritional_info"
	}
	if r.CookingTimeMinutes < 0 {
		return "negative cooking_time_minutes"
	}
	if r.Servings < 0 {
		return "negative servings"
	}
	if !r.SatisfiesRestrictions(restrictions) {
		return "declared dietary_tags do not cover the requested restrictions"
	}
	return ""
}

// extractJSONSpan 截取第一個 { 或 [ 到對應結尾的 JSON 片段
// 模型偶爾在 JSON 前後多話，只取中間的 JSON 本體
func extractJSONSpan(text string) string {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}

	var closer byte
	if text[start] == '{' {
		closer = '}'
	} else {
		closer = ']'
	}

	end := strings.LastIndexByte(text, closer)
	if end <= start {
		return text
	}
	return text[start : end+1]
}
