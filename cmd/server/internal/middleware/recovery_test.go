package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/meetkit/meetings-gateway/pkg/logger"
)

func panicRouter(production bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(production))
	r.GET("/boom", func(c *gin.Context) {
		panic("something broke")
	})
	return r
}

func TestRecoveryReturnsJSON500(t *testing.T) {
	_, err := logger.Init(logger.Config{Level: "error", Environment: "test"})
	if err != nil {
		t.Fatalf("logger init failed: %v", err)
	}

	w := httptest.NewRecorder()
	panicRouter(false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", w.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if body["error"] != "Internal server error" {
		t.Fatalf("unexpected error field: %v", body["error"])
	}
	if !strings.Contains(body["detail"].(string), "something broke") {
		t.Fatalf("expected panic detail outside production, got %v", body["detail"])
	}
}

func TestRecoveryHidesDetailInProduction(t *testing.T) {
	_, err := logger.Init(logger.Config{Level: "error", Environment: "production"})
	if err != nil {
		t.Fatalf("logger init failed: %v", err)
	}

	w := httptest.NewRecorder()
	panicRouter(true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if _, present := body["detail"]; present {
		t.Fatalf("panic detail must not leak in production")
	}
}
