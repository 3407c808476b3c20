package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meetkit/meetings-gateway/cmd/server/internal/upstream"
)

// 所有错误响应统一为 {error, message} 结构
// detail 字段仅在非生产环境附加

// errorResponse 返回错误响应
func errorResponse(c *gin.Context, code int, summary, message string) {
	c.JSON(code, gin.H{
		"error":   summary,
		"message": message,
	})
}

// errorResponseWithDetail 返回带详情的错误响应
func errorResponseWithDetail(c *gin.Context, code int, summary, message string, detail interface{}) {
	c.JSON(code, gin.H{
		"error":   summary,
		"message": message,
		"detail":  detail,
	})
}

// successResponse 返回成功响应
func successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// badRequestResponse 返回 400 响应
func badRequestResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusBadRequest, "Bad request", message)
}

// notFoundResponse 返回 404 响应
func notFoundResponse(c *gin.Context, message string) {
	errorResponse(c, http.StatusNotFound, "Not found", message)
}

// upstreamErrorResponse 将上游错误映射为 HTTP 响应
// 映射规则:
//
//	CONFIG_MISSING       → 500，带说明性消息（绝不静默降级）
//	UPSTREAM_HTTP        → 上游状态码有意义时原样透传，否则 500
//	UPSTREAM_UNREACHABLE → 500
//	BAD_RESPONSE         → 500
func upstreamErrorResponse(c *gin.Context, production bool, summary string, err error) {
	code := http.StatusInternalServerError
	message := "An unexpected error occurred"
	detail := err.Error()

	var ue *upstream.Error
	if errors.As(err, &ue) {
		message = ue.Message
		switch ue.Code {
		case upstream.UPSTREAM_HTTP:
			if ue.Status >= 400 && ue.Status <= 599 {
				code = ue.Status
			}
			if ue.Body != "" {
				detail = ue.Body
			}
		case upstream.CONFIG_MISSING, upstream.UPSTREAM_UNREACHABLE, upstream.BAD_RESPONSE:
			// 保持 500
		}
	}

	if production {
		errorResponse(c, code, summary, message)
		return
	}
	errorResponseWithDetail(c, code, summary, message, detail)
}
