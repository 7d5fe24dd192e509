package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client Gemini API 客戶端
type Client struct {
	config *config.Config
	client *resty.Client
}

// content 單則訊息內容
type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generationConfig 模型生成參數
type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

// generateRequest generateContent API 請求
type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

// generateResponse generateContent API 回應
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
}

// NewClient 創建 Gemini 客戶端
// 重試由 resty 客戶端本身處理（對應服務端自帶的重試語義），上層不再重試
func NewClient(cfg *config.Config) *Client {
	client := resty.New().
		SetBaseURL(cfg.Gemini.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", cfg.Gemini.APIKey).
		SetTimeout(cfg.Gemini.Timeout).
		SetRetryCount(cfg.Gemini.MaxRetries)

	return &Client{
		config: cfg,
		client: client,
	}
}

// Generate 發送 prompt 並回傳模型的原始文字回應
func (c *Client) Generate(ctx context.Context, systemPrompt, prompt string) (string, error) {
	req := &generateRequest{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: prompt}},
			},
		},
		GenerationConfig: generationConfig{
			Temperature:      c.config.Gemini.Temperature,
			MaxOutputTokens:  c.config.Gemini.MaxTokens,
			ResponseMIMEType: "application/json",
		},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &content{
			Parts: []part{{Text: systemPrompt}},
		}
	}

	common.LogInfo("Sending request to Gemini",
		zap.String("model", c.config.Gemini.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post(fmt.Sprintf("/models/%s:generateContent", c.config.Gemini.Model))

	if err != nil {
		var nerr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &nerr) && nerr.Timeout()) {
			common.LogError("AI 服務回應超時",
				zap.Error(err),
				zap.Duration("timeout", c.config.Gemini.Timeout),
			)
			return "", common.NewAIError(common.AICodeTimeout, "AI 服務回應超時", err)
		}
		common.LogError("Failed to send request to Gemini", zap.Error(err))
		return "", common.NewAIError(common.AICodeServiceFailure, "無法連線 AI 服務", err)
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("Gemini API returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("response", resp.String()),
		)
		return "", common.NewAIError(common.AICodeServiceFailure,
			fmt.Sprintf("AI 服務錯誤 (status %d)", resp.StatusCode()), nil)
	}

	var result generateResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		common.LogError("Failed to parse Gemini response", zap.Error(err))
		return "", common.NewAIError(common.AICodeServiceFailure, "AI 服務回應無法解析", err)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		common.LogError("Empty candidates in Gemini response",
			zap.String("model", c.config.Gemini.Model),
		)
		return "", common.NewAIError(common.AICodeEmptyResponse, "AI 服務回應為空", nil)
	}

	text := result.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", common.NewAIError(common.AICodeEmptyResponse, "AI 服務回應為空", nil)
	}

	common.LogInfo("Successfully generated response from Gemini",
		zap.String("model", c.config.Gemini.Model),
		zap.Int("content_length", len(text)),
		zap.Int("total_tokens", result.UsageMetadata.TotalTokenCount),
	)

	return text, nil
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
