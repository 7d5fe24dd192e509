package service

import (
	"context"
	"time"

	"recipe-suggester/internal/core/ai/cache"
	"recipe-suggester/internal/core/ai/gemini"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"
)

// Response AI 回應結構
type Response struct {
	Content  string
	CacheHit bool
}

// Service AI 服務，對上層提供唯一入口並負責回應緩存
type Service struct {
	config       *config.Config
	client       *gemini.Client
	cacheManager *cache.CacheManager
}

// NewService 創建 AI 服務
func NewService(cfg *config.Config, cacheManager *cache.CacheManager) (*Service, error) {
	client := gemini.NewClient(cfg)

	return &Service{
		config:       cfg,
		client:       client,
		cacheManager: cacheManager,
	}, nil
}

// ProcessRequest 統一對外方法
// 緩存鍵含 system prompt，避免不同指令共用同一回應
func (s *Service) ProcessRequest(ctx context.Context, systemPrompt, prompt string) (*Response, error) {
	cacheKey := systemPrompt + "\n" + prompt

	// 檢查緩存
	if s.config.Cache.Enabled && s.cacheManager != nil {
		if val, err := s.cacheManager.Get(ctx, cacheKey); err == nil && val != "" {
			return &Response{Content: val, CacheHit: true}, nil
		}
	}

	start := time.Now()
	content, err := s.client.Generate(ctx, systemPrompt, prompt)
	common.LogAICall(time.Since(start), err, "")
	if err != nil {
		return nil, err
	}

	if s.config.Cache.Enabled && s.cacheManager != nil {
		_ = s.cacheManager.Set(ctx, cacheKey, content)
	}

	return &Response{Content: content}, nil
}

// Close 關閉 AI 服務
func (s *Service) Close() error {
	return s.client.Close()
}
