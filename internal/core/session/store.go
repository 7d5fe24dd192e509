package session

import (
	"sync"
	"time"

	"recipe-suggester/internal/infrastructure/config"
	"recipe-suggester/internal/pkg/common"

	"go.uber.org/zap"
)

// Store session 範圍的食譜儲存
// 全部放在記憶體，TTL 到期由清理協程回收；重啟即清空（不做持久化）
type Store struct {
	config *config.SessionConfig
	mu     sync.RWMutex
	states map[string]*state
	done   chan struct{}
}

// state 單一 session 的內容
type state struct {
	recipes    []common.RatedRecipe
	lastAccess time.Time
}

// NewStore 創建 session 儲存並啟動清理協程
func NewStore(cfg *config.Config) *Store {
	s := &Store{
		config: &cfg.Session,
		states: make(map[string]*state),
		done:   make(chan struct{}),
	}

	go s.startCleanup()

	common.LogInfo("Session 儲存已初始化",
		zap.Duration("存活時間", s.config.TTL),
		zap.Duration("清理間隔", s.config.CleanupInterval),
	)

	return s
}

// Record 記錄一批新生成的食譜，覆蓋該 session 既有的內容
// 每筆食譜配發新的 ID，評分歸零
func (s *Store) Record(sessionID string, recipes []common.Recipe) ([]common.RatedRecipe, error) {
	rated := make([]common.RatedRecipe, 0, len(recipes))
	for _, r := range recipes {
		rated = append(rated, common.RatedRecipe{
			ID:     common.GenerateUUID(),
			Recipe: r,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[sessionID] = &state{
		recipes:    rated,
		lastAccess: time.Now(),
	}

	return cloneRecipes(rated), nil
}

// Rate 為指定食譜評分
// stars 合法範圍 0-5（0 代表清除評分），超出範圍回傳 OUT_OF_RANGE
func (s *Store) Rate(sessionID, recipeID string, stars int) (*common.RatedRecipe, error) {
	if stars < 0 || stars > 5 {
		return nil, common.NewValidationError(common.ValCodeOutOfRange, "評分必須介於 0 到 5 之間")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[sessionID]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	st.lastAccess = time.Now()

	for i := range st.recipes {
		if st.recipes[i].ID != recipeID {
			continue
		}
		st.recipes[i].Rating = stars
		if stars == 0 {
			st.recipes[i].RatedAt = nil
		} else {
			now := time.Now()
			st.recipes[i].RatedAt = &now
		}
		copied := st.recipes[i]
		return &copied, nil
	}

	return nil, common.ErrRecipeNotFound
}

// Get 取得 session 的所有食譜（副本）
func (s *Store) Get(sessionID string) ([]common.RatedRecipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[sessionID]
	if !ok {
		return nil, common.ErrSessionNotFound
	}
	st.lastAccess = time.Now()

	return cloneRecipes(st.recipes), nil
}

// Stats 計算該 session 的評分統計
// 平均值只計入已評分（1-5 星）的食譜
func (s *Store) Stats(sessionID string) (*common.RatingStats, error) {
	recipes, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}

	stats := &common.RatingStats{
		TotalRecipes: len(recipes),
		Distribution: make(map[int]int),
	}

	sum := 0
	for _, r := range recipes {
		if r.Rating == 0 {
			continue
		}
		stats.RatedRecipes++
		stats.Distribution[r.Rating]++
		sum += r.Rating
	}
	if stats.RatedRecipes > 0 {
		stats.AverageRating = float64(sum) / float64(stats.RatedRecipes)
	}

	return stats, nil
}

// Clear 清除指定 session 的所有內容
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
}

// Count 目前存活的 session 數量
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.states)
}

// startCleanup 定期回收過期的 session
func (s *Store) startCleanup() {
	ticker := time.NewTicker(s.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

func (s *Store) cleanup() {
	deadline := time.Now().Add(-s.config.TTL)
	count := 0

	s.mu.Lock()
	for id, st := range s.states {
		if st.lastAccess.Before(deadline) {
			delete(s.states, id)
			count++
		}
	}
	remaining := len(s.states)
	s.mu.Unlock()

	if count > 0 {
		common.LogInfo("清理過期 session",
			zap.Int("count", count),
			zap.Int("remaining", remaining),
		)
	}
}

// Close 停止清理協程並清空所有 session
func (s *Store) Close() error {
	close(s.done)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = make(map[string]*state)

	common.LogInfo("Session 儲存已關閉")
	return nil
}

func cloneRecipes(src []common.RatedRecipe) []common.RatedRecipe {
	out := make([]common.RatedRecipe, len(src))
	copy(out, src)
	return out
}
