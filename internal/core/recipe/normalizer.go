package recipe

import (
	"strings"

	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// Options 使用者在表單上選擇的偏好設定
// 未知的選項值一律忽略（向前相容），不會造成錯誤
type Options struct {
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	Cuisine             string   `json:"cuisine,omitempty"`
	Difficulty          string   `json:"difficulty,omitempty"`
	MaxTimeMinutes      int      `json:"max_time_minutes,omitempty"`
	Notes               string   `json:"notes,omitempty"`
}

// Normalize 將原始食材字串與選項轉成標準的 RecipeRequest
// 逗號分隔、去除空白、丟棄空項、大小寫不敏感去重（保留第一個寫法）
func Normalize(rawIngredients string, opts Options) (*common.RecipeRequest, error) {
	seen := make(map[string]struct{})
	var ingredients []string

	for _, token := range strings.Split(rawIngredients, ",") {
		ing := strings.TrimSpace(token)
		if ing == "" {
			continue
		}
		key := strings.ToLower(ing)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		ingredients = append(ingredients, ing)
	}

	if len(ingredients) == 0 {
		return nil, common.NewValidationError(common.ValCodeEmptyIngredients, "請輸入至少一項食材")
	}

	req := &common.RecipeRequest{
		Ingredients: ingredients,
	}

	for _, raw := range opts.DietaryRestrictions {
		tag, ok := common.ParseDietaryTag(raw)
		if !ok {
			common.LogDebug("忽略未知的飲食限制標籤", zap.String("tag", raw))
			continue
		}
		// 同一標籤選兩次只保留一次
		dup := false
		for _, existing := range req.DietaryRestrictions {
			if existing == tag {
				dup = true
				break
			}
		}
		if !dup {
			req.DietaryRestrictions = append(req.DietaryRestrictions, tag)
		}
	}

	if cuisine, ok := common.ParseCuisine(opts.Cuisine); ok {
		req.Cuisine = cuisine
	}
	if difficulty, ok := common.ParseDifficulty(opts.Difficulty); ok {
		req.Difficulty = difficulty
	}
	if opts.MaxTimeMinutes > 0 {
		req.MaxTimeMinutes = opts.MaxTimeMinutes
	}
	req.Notes = strings.TrimSpace(opts.Notes)

	return req, nil
}
