package recipe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"recipe-suggester/internal/api/middleware"
	aiservice "recipe-suggester/internal/core/ai/service"
	recipeService "recipe-suggester/internal/core/recipe"
	"recipe-suggester/internal/core/session"
	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	common.Logger = zap.NewNop()
	os.Exit(m.Run())
}

// stubAIService 回傳固定內容或錯誤
type stubAIService struct {
	content string
	err     error
}

func (s *stubAIService) ProcessRequest(_ context.Context, _, _ string) (*aiservice.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &aiservice.Response{Content: s.content}, nil
}

const validAIResponse = `{"recipes":[
	{
		"recipe_name": "Simple Flatbread",
		"ingredients": [{"ingredient": "flour", "quantity": "2 cups"}],
		"instructions": ["Mix", "Cook"],
		"cooking_time_minutes": 20,
		"difficulty_level": "Easy",
		"servings": 4,
		"dietary_tags": ["Vegan"],
		"nutritional_info": {"calories_per_serving": 220}
	},
	{
		"recipe_name": "Salt Crackers",
		"ingredients": [{"ingredient": "flour", "quantity": "1 cup"}],
		"instructions": ["Bake"],
		"cooking_time_minutes": 15,
		"difficulty_level": "Easy",
		"servings": 2,
		"dietary_tags": ["Vegan"],
		"nutritional_info": {"calories_per_serving": 150}
	}
]}`

func newTestRouter(t *testing.T, ai recipeService.AIService) *gin.Engine {
	t.Helper()

	store := session.NewStore(&config.Config{
		Session: config.SessionConfig{
			TTL:             time.Hour,
			CleanupInterval: time.Hour,
		},
	})
	t.Cleanup(func() { _ = store.Close() })

	handler := NewHandler(recipeService.NewGenerationService(ai, store), store)

	router := gin.New()
	router.Use(middleware.Session())

	api := router.Group("/api/v1")
	api.POST("/recipes/generate", handler.HandleGenerate)
	api.GET("/recipes", handler.HandleList)
	api.GET("/recipes/stats", handler.HandleStats)
	api.GET("/recipes/export", handler.HandleExport)
	api.POST("/recipes/:id/rating", handler.HandleRate)
	api.DELETE("/session", handler.HandleClearSession)

	return router
}

func doRequest(router *gin.Engine, method, path, sessionID, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeader, sessionID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type generateResponse struct {
	Recipes  []common.RatedRecipe `json:"recipes"`
	CacheHit bool                 `json:"cache_hit"`
}

func TestHandleGenerate(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: validAIResponse})

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", "s1",
		`{"ingredients": "flour, water, salt", "dietary_restrictions": ["Vegan"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp generateResponse
	require.NoError(t, common.ParseJSON(w.Body.String(), &resp))
	require.Len(t, resp.Recipes, 2)
	assert.Equal(t, "Simple Flatbread", resp.Recipes[0].Recipe.RecipeName)
	assert.NotEmpty(t, resp.Recipes[0].ID)
}

func TestHandleGenerateEmptyIngredients(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: validAIResponse})

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", "s1",
		`{"ingredients": " , , "}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ValCodeEmptyIngredients)
}

func TestHandleGenerateMissingBody(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: validAIResponse})

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", "s1", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ErrCodeInvalidRequest)
}

func TestHandleGenerateAITimeout(t *testing.T) {
	router := newTestRouter(t, &stubAIService{
		err: common.NewAIError(common.AICodeTimeout, "AI 服務請求超時", context.DeadlineExceeded),
	})

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", "s1",
		`{"ingredients": "flour"}`)
	require.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), common.AICodeTimeout)
}

func TestHandleGenerateAIFailure(t *testing.T) {
	router := newTestRouter(t, &stubAIService{
		err: common.NewAIError(common.AICodeServiceFailure, "AI 服務呼叫失敗", nil),
	})

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", "s1",
		`{"ingredients": "flour"}`)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), common.AICodeServiceFailure)
}

func TestHandleGenerateMalformedAIResponse(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: "I am not JSON"})

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", "s1",
		`{"ingredients": "flour"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ValCodeMalformedJSON)
}

func TestHandleListEmptySession(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: validAIResponse})

	w := doRequest(router, http.MethodGet, "/api/v1/recipes", "fresh-session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"recipes":[]`)
}

func TestRatingFlow(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: validAIResponse})

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", "s1",
		`{"ingredients": "flour, water"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp generateResponse
	require.NoError(t, common.ParseJSON(w.Body.String(), &resp))
	recipeID := resp.Recipes[0].ID

	// 評分
	w = doRequest(router, http.MethodPost, "/api/v1/recipes/"+recipeID+"/rating", "s1",
		`{"stars": 5}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rated common.RatedRecipe
	require.NoError(t, common.ParseJSON(w.Body.String(), &rated))
	assert.Equal(t, 5, rated.Rating)
	assert.NotNil(t, rated.RatedAt)

	// 超出範圍
	w = doRequest(router, http.MethodPost, "/api/v1/recipes/"+recipeID+"/rating", "s1",
		`{"stars": 6}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), common.ValCodeOutOfRange)

	// stars=0 清除評分
	w = doRequest(router, http.MethodPost, "/api/v1/recipes/"+recipeID+"/rating", "s1",
		`{"stars": 0}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// 別的 session 看不到這筆食譜
	w = doRequest(router, http.MethodPost, "/api/v1/recipes/"+recipeID+"/rating", "s2",
		`{"stars": 3}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsFlow(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: validAIResponse})

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", "s1",
		`{"ingredients": "flour"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp generateResponse
	require.NoError(t, common.ParseJSON(w.Body.String(), &resp))

	w = doRequest(router, http.MethodPost, "/api/v1/recipes/"+resp.Recipes[0].ID+"/rating", "s1",
		`{"stars": 4}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/recipes/stats", "s1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var stats common.RatingStats
	require.NoError(t, common.ParseJSON(w.Body.String(), &stats))
	assert.Equal(t, 2, stats.TotalRecipes)
	assert.Equal(t, 1, stats.RatedRecipes)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
}

func TestExportFlow(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: validAIResponse})

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", "s1",
		`{"ingredients": "flour"}`)
	require.Equal(t, http.StatusOK, w.Code)

	// JSON 匯出
	w = doRequest(router, http.MethodGet, "/api/v1/recipes/export?format=json", "s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filtered_recipes.json")
	assert.Contains(t, w.Body.String(), "Simple Flatbread")

	// 文字匯出
	w = doRequest(router, http.MethodGet, "/api/v1/recipes/export?format=text", "s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filtered_recipes.txt")
	assert.Contains(t, w.Body.String(), "Recipe 1: Simple Flatbread")

	// 不支援的格式
	w = doRequest(router, http.MethodGet, "/api/v1/recipes/export?format=xml", "s1", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportEmptySession(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: validAIResponse})

	// 還沒生成過食譜的 session 匯出空內容，不是 404
	w := doRequest(router, http.MethodGet, "/api/v1/recipes/export?format=json", "fresh-session", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filtered_recipes.json")
	assert.Contains(t, w.Body.String(), `"recipes": []`)

	w = doRequest(router, http.MethodGet, "/api/v1/recipes/export?format=text", "fresh-session", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestClearSession(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: validAIResponse})

	w := doRequest(router, http.MethodPost, "/api/v1/recipes/generate", "s1",
		`{"ingredients": "flour"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodDelete, "/api/v1/session", "s1", "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/v1/recipes", "s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"recipes":[]`)
}

func TestSessionMiddlewareMintsID(t *testing.T) {
	router := newTestRouter(t, &stubAIService{content: validAIResponse})

	// 不帶 session 時配發新 ID 並回寫 header 與 cookie
	w := doRequest(router, http.MethodGet, "/api/v1/recipes", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.SessionHeader))

	cookies := w.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == middleware.SessionCookie && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "session cookie should be set")
}
