package api

import (
	"github.com/gin-gonic/gin"
)

// HandleClearCache 创建缓存清空的HTTP处理函数
// 供外部失效使用：上游数据已知变化时无需等待 TTL 过期
func HandleClearCache(svc MeetingsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc.ClearCache()
		successResponse(c, gin.H{
			"message": "Cache cleared",
		})
	}
}
