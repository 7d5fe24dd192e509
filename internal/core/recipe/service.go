package recipe

import (
	"context"
	"time"

	aiservice "recipe-suggester/internal/core/ai/service"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// AIService AI 服務介面（由 ai/service 實現，測試時可替換）
type AIService interface {
	ProcessRequest(ctx context.Context, systemPrompt, prompt string) (*aiservice.Response, error)
}

// Recorder session 儲存介面（由 session.Store 實現）
// 每次生成都覆蓋該 session 既有的食譜
type Recorder interface {
	Record(sessionID string, recipes []common.Recipe) ([]common.RatedRecipe, error)
}

// GenerationResult 一次生成的完整結果
type GenerationResult struct {
	Recipes  []common.RatedRecipe `json:"recipes"`
	CacheHit bool                 `json:"cache_hit"`
}

// GenerationService 食譜生成服務
// 串起整條管線：正規化 → 組 prompt → 呼叫 AI → 驗證 → 寫入 session
type GenerationService struct {
	aiService AIService
	recorder  Recorder
}

// NewGenerationService 創建食譜生成服務
func NewGenerationService(aiService AIService, recorder Recorder) *GenerationService {
	return &GenerationService{
		aiService: aiService,
		recorder:  recorder,
	}
}

// Generate 依使用者輸入生成食譜並記錄到 session
func (s *GenerationService) Generate(ctx context.Context, sessionID, rawIngredients string, opts Options) (*GenerationResult, error) {
	req, err := Normalize(rawIngredients, opts)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(req)

	start := time.Now()
	resp, err := s.aiService.ProcessRequest(ctx, SystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	recipes, err := ValidateResponse(resp.Content, req.DietaryRestrictions)
	if err != nil {
		return nil, err
	}

	rated, err := s.recorder.Record(sessionID, recipes)
	if err != nil {
		return nil, err
	}

	common.LogInfo("食譜生成完成",
		zap.String("session_id", sessionID),
		zap.Int("ingredient_count", len(req.Ingredients)),
		zap.Int("recipe_count", len(rated)),
		zap.Bool("cache_hit", resp.CacheHit),
		zap.Duration("duration", time.Since(start)),
	)

	return &GenerationResult{
		Recipes:  rated,
		CacheHit: resp.CacheHit,
	}, nil
}
