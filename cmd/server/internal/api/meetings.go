package api

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meetkit/meetings-gateway/cmd/server/internal/cache"
	"github.com/meetkit/meetings-gateway/cmd/server/internal/recordings"
	"github.com/meetkit/meetings-gateway/cmd/server/internal/upstream"
)

// MeetingsService 会议数据服务能力（由 recordings.Service 实现）
type MeetingsService interface {
	ListMeetings(ctx context.Context) (recordings.ListResult, error)
	GetTranscript(ctx context.Context, recordingID int64) (interface{}, error)
	ClearCache()
	CacheStats() cache.Stats
}

// HandleListMeetings 创建会议列表查询的HTTP处理函数
// 命中缓存直接返回，否则完整抓取上游分页后返回
// TTL 内的重复请求返回完全一致的响应体
//
// 响应格式:
//
//	{
//	  "items": [...],          // 规范化会议记录，可能为空数组，绝不为 null
//	  "count": 12,
//	  "fetched_at": "2026-03-01T10:00:00Z"
//	}
func HandleListMeetings(svc MeetingsService, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := svc.ListMeetings(c.Request.Context())
		if err != nil {
			upstreamErrorResponse(c, production, "Failed to fetch meetings", err)
			return
		}
		successResponse(c, gin.H{
			"items":      result.Records,
			"count":      len(result.Records),
			"fetched_at": result.FetchedAt.UTC().Format(time.RFC3339),
		})
	}
}

// HandleGetTranscript 创建会议转写稿查询的HTTP处理函数
// 路径参数 id 必须为整数，解析失败返回 400 并在消息中回显原始值
//
// 响应格式:
//
//	{
//	  "transcript": <上游转写内容，字符串或结构化对象>
//	}
func HandleGetTranscript(svc MeetingsService, production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		idParam := c.Param("id")
		id, err := strconv.ParseInt(idParam, 10, 64)
		if err != nil {
			badRequestResponse(c, fmt.Sprintf("Invalid meeting id: %s", idParam))
			return
		}

		payload, err := svc.GetTranscript(c.Request.Context(), id)
		if err != nil {
			if upstream.IsNotFound(err) {
				notFoundResponse(c, fmt.Sprintf("Transcript not found for meeting %d", id))
				return
			}
			upstreamErrorResponse(c, production, "Failed to fetch transcript", err)
			return
		}

		successResponse(c, gin.H{"transcript": payload})
	}
}
