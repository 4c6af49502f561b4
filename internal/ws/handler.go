package ws

import (
	"net/http"

	"task_manager/internal/http/middleware"
	"task_manager/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades authenticated requests and streams the caller's task events.
// Browsers cannot set headers on websocket requests, so the token may also be
// passed as ?token=.
func HandleWS(hub *Hub, verifier middleware.TokenVerifier, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			t, err := middleware.BearerToken(c.GetHeader("Authorization"))
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"code": "MISSING_TOKEN", "message": "authorization token required"})
				return
			}
			token = t
		}

		id, err := verifier.Verify(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"code": "INVALID_TOKEN", "message": "invalid or expired token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(id.UserID, conn, hub, id.ExpiresAt)
		go client.Run()
	}
}
