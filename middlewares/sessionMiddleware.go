package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apexcadcam/apex-item/config"
	"github.com/apexcadcam/apex-item/utils"
)

// Session is the redis-backed session payload keyed by the token header.
type Session struct {
	Username        string `json:"username"`
	UserId          int    `json:"user_id"`
	Site            string `json:"site"`
	IsSystemManager bool   `json:"is_system_manager"`
}

// SessionMiddleware resolves the token header against redis and hangs the
// session identity on the request context. Requests without a token pass
// through anonymously; an unknown token is rejected.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Request.Header.Get("token")
		if token == "" {
			c.Next()
			return
		}

		var session Session
		exists, err := config.GetRedisObject("Session:"+token, &session)
		if err != nil || !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		ctx := utils.SetTokenInContext(c.Request.Context(), token)
		ctx = utils.SetUsernameInContext(ctx, session.Username)
		ctx = utils.SetUserIdInContext(ctx, session.UserId)
		ctx = utils.SetSiteInContext(ctx, session.Site)
		ctx = utils.SetIsSystemManagerInContext(ctx, session.IsSystemManager)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
