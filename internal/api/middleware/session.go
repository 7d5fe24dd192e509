package middleware

import (
	"github.com/gin-gonic/gin"

	"recipe-suggester/internal/pkg/common"
)

const (
	// SessionKey context 中的 session ID 鍵
	SessionKey = "session_id"
	// SessionCookie 瀏覽器端的 session cookie 名稱
	SessionCookie = "session_id"
	// SessionHeader 非瀏覽器客戶端可直接帶 header
	SessionHeader = "X-Session-ID"

	sessionCookieMaxAge = 2 * 60 * 60
)

// Session 解析或配發 session ID
// 優先順序：X-Session-ID header > cookie > 配發新 ID
// 新 ID 一律回寫 cookie 與 X-Session-ID response header
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(SessionHeader)
		if sessionID == "" {
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				sessionID = cookie
			}
		}
		if sessionID == "" {
			sessionID = common.GenerateUUID()
			c.SetCookie(SessionCookie, sessionID, sessionCookieMaxAge, "/", "", false, true)
		}

		c.Set(SessionKey, sessionID)
		c.Header(SessionHeader, sessionID)

		c.Next()
	}
}

// SessionID 從 context 取出 session ID
func SessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
