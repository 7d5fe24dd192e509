package recipe

import (
	"errors"
	"net/http"

	"recipe-suggester/internal/api/middleware"
	recipeService "recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/core/session"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRequest 食譜生成請求
type GenerateRequest struct {
	Ingredients         string   `json:"ingredients" binding:"required"`  // 逗號分隔的食材清單
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`  // 飲食限制標籤
	Cuisine             string   `json:"cuisine,omitempty"`               // 料理類型（Any 或空值代表不限）
	Difficulty          string   `json:"difficulty,omitempty"`            // 難度（Any 或空值代表不限）
	MaxTimeMinutes      int      `json:"max_time_minutes,omitempty"`      // 最長烹調時間（分鐘）
	Notes               string   `json:"notes,omitempty"`                 // 其他備註
}

// RatingRequest 評分請求
type RatingRequest struct {
	Stars *int `json:"stars" binding:"required"` // 0-5，0 代表清除評分
}

// Handler 食譜處理程序
type Handler struct {
	generationService *recipeService.GenerationService
	sessionStore      *session.Store
}

// NewHandler 創建新的食譜處理程序
func NewHandler(generationService *recipeService.GenerationService, sessionStore *session.Store) *Handler {
	return &Handler{
		generationService: generationService,
		sessionStore:      sessionStore,
	}
}

// HandleGenerate 依食材與偏好生成食譜
func (h *Handler) HandleGenerate(c *gin.Context) {
	requestID := requestid.Get(c)
	sessionID := middleware.SessionID(c)

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestID),
		zap.String("session_id", sessionID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	result, err := h.generationService.Generate(c.Request.Context(), sessionID, req.Ingredients, recipeService.Options{
		DietaryRestrictions: req.DietaryRestrictions,
		Cuisine:             req.Cuisine,
		Difficulty:          req.Difficulty,
		MaxTimeMinutes:      req.MaxTimeMinutes,
		Notes:               req.Notes,
	})
	if err != nil {
		h.writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HandleList 列出目前 session 的所有食譜
func (h *Handler) HandleList(c *gin.Context) {
	recipes, err := h.sessionStore.Get(middleware.SessionID(c))
	if err != nil {
		// 還沒生成過食譜時回傳空列表，不算錯誤
		if errors.Is(err, common.ErrSessionNotFound) {
			c.JSON(http.StatusOK, gin.H{"recipes": []common.RatedRecipe{}})
			return
		}
		h.writeError(c, requestid.Get(c), err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// HandleRate 為指定食譜評分
func (h *Handler) HandleRate(c *gin.Context) {
	requestID := requestid.Get(c)
	recipeID := c.Param("id")

	var req RatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
			"code":  common.ErrCodeInvalidRequest,
		})
		return
	}

	rated, err := h.sessionStore.Rate(middleware.SessionID(c), recipeID, *req.Stars)
	if err != nil {
		h.writeError(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, rated)
}

// HandleStats 回傳目前 session 的評分統計
func (h *Handler) HandleStats(c *gin.Context) {
	stats, err := h.sessionStore.Stats(middleware.SessionID(c))
	if err != nil {
		if errors.Is(err, common.ErrSessionNotFound) {
			c.JSON(http.StatusOK, &common.RatingStats{Distribution: map[int]int{}})
			return
		}
		h.writeError(c, requestid.Get(c), err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HandleExport 匯出目前 session 的食譜（format=json 或 format=text）
func (h *Handler) HandleExport(c *gin.Context) {
	requestID := requestid.Get(c)
	format := c.DefaultQuery("format", "json")

	recipes, err := h.sessionStore.Get(middleware.SessionID(c))
	if err != nil {
		// 還沒生成過食譜時匯出空內容，與列表行為一致
		if !errors.Is(err, common.ErrSessionNotFound) {
			h.writeError(c, requestID, err)
			return
		}
		recipes = nil
	}

	switch format {
	case "json":
		body, err := recipeService.ExportJSON(recipes)
		if err != nil {
			h.writeError(c, requestID, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+recipeService.ExportFilenameJSON+`"`)
		c.Data(http.StatusOK, "application/json", []byte(body))
	case "text":
		c.Header("Content-Disposition", `attachment; filename="`+recipeService.ExportFilenameText+`"`)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(recipeService.ExportText(recipes)))
	default:
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unsupported export format: " + format,
			"code":  common.ErrCodeInvalidRequest,
		})
	}
}

// HandleClearSession 清除目前 session 的所有食譜與評分
func (h *Handler) HandleClearSession(c *gin.Context) {
	h.sessionStore.Clear(middleware.SessionID(c))
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

// writeError 統一的錯誤轉 HTTP 映射
// 驗證錯誤 → 400、AI 超時 → 504、其餘 AI 錯誤 → 502、CustomError 依其狀態碼
func (h *Handler) writeError(c *gin.Context, requestID string, err error) {
	if ve, ok := common.AsValidationError(err); ok {
		common.LogWarn("驗證失敗",
			zap.String("request_id", requestID),
			zap.String("code", ve.Code),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": ve.Error(),
			"code":  ve.Code,
		})
		return
	}

	if ae, ok := common.AsAIError(err); ok {
		status := http.StatusBadGateway
		if ae.Code == common.AICodeTimeout {
			status = http.StatusGatewayTimeout
		}
		common.LogError("AI 服務呼叫失敗",
			zap.String("request_id", requestID),
			zap.String("code", ae.Code),
			zap.Error(err),
		)
		c.JSON(status, gin.H{
			"error": ae.Message,
			"code":  ae.Code,
		})
		return
	}

	var ce *common.CustomError
	if errors.As(err, &ce) {
		c.JSON(ce.Status, gin.H{
			"error": ce.Message,
			"code":  ce.Code,
		})
		return
	}

	common.LogError("未預期的錯誤",
		zap.String("request_id", requestID),
		zap.Error(err),
	)
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Internal server error",
		"code":  common.ErrCodeInternalError,
	})
}
