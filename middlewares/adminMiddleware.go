package middlewares

import (
	"crypto/subtle"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/apexcadcam/apex-item/utils"
)

// AdminMiddleware gates the bulk and settings endpoints. A request passes
// when its session carries the system manager role, or when it presents the
// deploy-time admin API key.
func AdminMiddleware() gin.HandlerFunc {
	adminKey := os.Getenv("ADMIN_API_KEY")
	return func(c *gin.Context) {
		if utils.IsSystemManager(c.Request.Context()) {
			c.Next()
			return
		}

		presented := c.Request.Header.Get("x-api-key")
		if adminKey != "" && presented != "" &&
			subtle.ConstantTimeCompare([]byte(adminKey), []byte(presented)) == 1 {
			c.Next()
			return
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "system manager role required"})
		c.Abort()
	}
}
