package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthCheckResponse represents the response from the health check endpoint
type HealthCheckResponse struct {
	Status    string         `json:"status"`
	Service   string         `json:"service"`
	Version   string         `json:"version"`
	Uptime    string         `json:"uptime"`
	Timestamp time.Time      `json:"timestamp"`
	Env       string         `json:"env"`
	Upstream  UpstreamStatus `json:"upstream"`
	Cache     CacheStatus    `json:"cache"`
}

// UpstreamStatus reports how the gateway is wired to the meetings API.
// The credential itself is never included.
type UpstreamStatus struct {
	CredentialConfigured bool   `json:"credential_configured"`
	BaseURL              string `json:"base_url"`
}

// CacheStatus mirrors the cache slot state. Age is reported in
// milliseconds since the slot was last populated, 0 when empty.
type CacheStatus struct {
	HasCache bool  `json:"hasCache"`
	Size     int   `json:"cacheSize"`
	AgeMs    int64 `json:"cacheAge"`
}

// ReadinessCheckResponse represents the response from the readiness check endpoint
type ReadinessCheckResponse struct {
	Ready     bool             `json:"ready"`
	Checks    []ReadinessCheck `json:"checks"`
	Timestamp time.Time        `json:"timestamp"`
}

// ReadinessCheck represents a single readiness check
type ReadinessCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "ok" or "fail"
	Error  string `json:"error,omitempty"`
}

// HandleHealth returns the liveness probe handler. Liveness never depends
// on the upstream being reachable; it reports process state, upstream
// wiring and the cache slot only.
func HandleHealth(svc MeetingsService, env string, startTime time.Time, upstreamStatus UpstreamStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := svc.CacheStats()

		response := HealthCheckResponse{
			Status:    "ok",
			Service:   "meetings-gateway",
			Version:   "1.0.0",
			Uptime:    time.Since(startTime).String(),
			Timestamp: time.Now(),
			Env:       env,
			Upstream:  upstreamStatus,
			Cache: CacheStatus{
				HasCache: stats.HasCache,
				Size:     stats.Size,
				AgeMs:    stats.Age.Milliseconds(),
			},
		}
		c.JSON(http.StatusOK, response)
	}
}

// HandleReadiness returns the readiness probe handler. The gateway is ready
// when an upstream credential is configured; without one every data request
// would fail.
func HandleReadiness(hasCredential bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		credentialCheck := ReadinessCheck{Name: "upstream_credential", Status: "ok"}
		if !hasCredential {
			credentialCheck.Status = "fail"
			credentialCheck.Error = "meetings API credential not configured"
		}

		response := ReadinessCheckResponse{
			Ready:     hasCredential,
			Checks:    []ReadinessCheck{credentialCheck},
			Timestamp: time.Now(),
		}

		httpStatus := http.StatusOK
		if !response.Ready {
			httpStatus = http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, response)
	}
}
