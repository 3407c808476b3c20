package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetkit/meetings-gateway/pkg/logger"
)

// Recovery 捕获处理器中的 panic，统一转换为 JSON 500
// 生产环境不回传 panic 细节
func Recovery(production bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		detail := fmt.Sprintf("%v", recovered)

		logger.L().Error("panic recovered in request handler",
			"rid", c.GetString("request_id"),
			"path", c.Request.URL.Path,
			"panic", detail,
		)

		body := gin.H{
			"error":   "Internal server error",
			"message": "An unexpected error occurred",
		}
		if !production {
			body["detail"] = detail
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}
