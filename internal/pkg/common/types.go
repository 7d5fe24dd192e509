package common

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// DietaryTag 飲食限制標籤
type DietaryTag string

const (
	TagVegetarian       DietaryTag = "Vegetarian"
	TagVegan            DietaryTag = "Vegan"
	TagGlutenFree       DietaryTag = "Gluten-Free"
	TagDairyFree        DietaryTag = "Dairy-Free"
	TagLowCarb          DietaryTag = "Low-Carb"
	TagKeto             DietaryTag = "Keto"
	TagPaleo            DietaryTag = "Paleo"
	TagNutFree          DietaryTag = "Nut-Free"
	TagDiabeticFriendly DietaryTag = "Diabetic-Friendly"
	TagHeartHealthy     DietaryTag = "Heart-Healthy"
)

// AllDietaryTags 所有支援的飲食限制標籤（依 UI 顯示順序）
var AllDietaryTags = []DietaryTag{
	TagVegetarian,
	TagVegan,
	TagGlutenFree,
	TagDairyFree,
	TagLowCarb,
	TagKeto,
	TagPaleo,
	TagNutFree,
	TagDiabeticFriendly,
	TagHeartHealthy,
}

// ParseDietaryTag 將輸入字串對應到標準標籤；未知標籤回傳 false（直接忽略，不報錯）
func ParseDietaryTag(s string) (DietaryTag, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.ReplaceAll(norm, " ", "-")
	norm = strings.ReplaceAll(norm, "_", "-")
	for _, tag := range AllDietaryTags {
		if strings.ToLower(string(tag)) == norm {
			return tag, true
		}
	}
	return "", false
}

// Cuisine 料理類型
type Cuisine string

const (
	CuisineItalian       Cuisine = "Italian"
	CuisineAsian         Cuisine = "Asian"
	CuisineMexican       Cuisine = "Mexican"
	CuisineMediterranean Cuisine = "Mediterranean"
	CuisineIndian        Cuisine = "Indian"
	CuisineAmerican      Cuisine = "American"
	CuisineFrench        Cuisine = "French"
	CuisineThai          Cuisine = "Thai"
	CuisineJapanese      Cuisine = "Japanese"
)

// AllCuisines 所有支援的料理類型
var AllCuisines = []Cuisine{
	CuisineItalian, CuisineAsian, CuisineMexican, CuisineMediterranean,
	CuisineIndian, CuisineAmerican, CuisineFrench, CuisineThai, CuisineJapanese,
}

// ParseCuisine 對應料理類型；"Any"、空字串與未知值都視為未指定
func ParseCuisine(s string) (Cuisine, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" || norm == "any" {
		return "", false
	}
	for _, c := range AllCuisines {
		if strings.ToLower(string(c)) == norm {
			return c, true
		}
	}
	return "", false
}

// Difficulty 難度等級
type Difficulty string

const (
	DifficultyEasy         Difficulty = "Easy"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

// ParseDifficulty 對應難度等級；"Any"、空字串與未知值都視為未指定
func ParseDifficulty(s string) (Difficulty, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "" || norm == "any" {
		return "", false
	}
	switch norm {
	case "easy":
		return DifficultyEasy, true
	case "intermediate":
		return DifficultyIntermediate, true
	case "advanced":
		return DifficultyAdvanced, true
	}
	return "", false
}

// RecipeRequest 正規化後的食譜請求
// 不變量：Ingredients 非空、無重複（大小寫不敏感）
type RecipeRequest struct {
	Ingredients         []string     `json:"ingredients"`
	DietaryRestrictions []DietaryTag `json:"dietary_restrictions"`
	Cuisine             Cuisine      `json:"cuisine,omitempty"`
	Difficulty          Difficulty   `json:"difficulty,omitempty"`
	MaxTimeMinutes      int          `json:"max_time_minutes,omitempty"`
	Notes               string       `json:"notes,omitempty"`
}

// RecipeIngredient 食譜中的單項食材與份量
type RecipeIngredient struct {
	Ingredient string `json:"ingredient"`
	Quantity   string `json:"quantity"`
}

// Recipe AI 生成的食譜
// 不變量：DietaryTags 必須涵蓋請求中的所有飲食限制（由 Response Validator 保證）
type Recipe struct {
	RecipeName         string             `json:"recipe_name"`
	Ingredients        []RecipeIngredient `json:"ingredients"`
	Instructions       []string           `json:"instructions"`
	CookingTimeMinutes int                `json:"cooking_time_minutes"`
	DifficultyLevel    string             `json:"difficulty_level"`
	Servings           int                `json:"servings"`
	DietaryTags        []string           `json:"dietary_tags"`
	NutritionalInfo    map[string]float64 `json:"nutritional_info"`
	CookingTips        []string           `json:"cooking_tips,omitempty"`
	AllergenWarnings   []string           `json:"allergen_warnings,omitempty"`
}

// SatisfiesRestrictions 檢查食譜宣告的標籤是否涵蓋所有請求的限制
func (r *Recipe) SatisfiesRestrictions(restrictions []DietaryTag) bool {
	if len(restrictions) == 0 {
		return true
	}
	declared := make(map[string]struct{}, len(r.DietaryTags))
	for _, tag := range r.DietaryTags {
		if canonical, ok := ParseDietaryTag(tag); ok {
			declared[string(canonical)] = struct{}{}
		}
	}
	for _, want := range restrictions {
		if _, ok := declared[string(want)]; !ok {
			return false
		}
	}
	return true
}

// RatedRecipe 帶評分的食譜，生命週期僅限單一 session
type RatedRecipe struct {
	ID      string     `json:"id"`
	Recipe  Recipe     `json:"recipe"`
	Rating  int        `json:"rating"`
	RatedAt *time.Time `json:"rated_at,omitempty"`
}

// RatingStats 評分統計（session 範圍）
type RatingStats struct {
	TotalRecipes  int         `json:"total_recipes"`
	RatedRecipes  int         `json:"rated_recipes"`
	AverageRating float64     `json:"average_rating"`
	Distribution  map[int]int `json:"distribution"`
}

// FormatDietaryTags 將標籤列表轉成逗號分隔字串
func FormatDietaryTags(tags []DietaryTag) string {
	parts := make([]string, 0, len(tags))
	for _, tag := range tags {
		parts = append(parts, string(tag))
	}
	return strings.Join(parts, ", ")
}

// FormatNutrition 將營養資訊排序後轉成多行文字（key 順序固定，輸出才可重現）
func FormatNutrition(nutrition map[string]float64) string {
	keys := make([]string, 0, len(nutrition))
	for k := range nutrition {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		v := nutrition[k]
		if v == float64(int64(v)) {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", k, int64(v)))
		} else {
			sb.WriteString(fmt.Sprintf("- %s: %.1f\n", k, v))
		}
	}
	return sb.String()
}
