package repl

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitIsPerClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(1, 1))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, hit("10.0.0.1"))
	assert.Equal(t, http.StatusNoContent, hit("10.0.0.2"))
}

func TestOriginPolicy(t *testing.T) {
	policy := NewOriginPolicy([]string{" http://localhost:3000/ ", ""})

	tests := []struct {
		name   string
		host   string
		origin string
		want   bool
	}{
		{"no origin", "127.0.0.1:7888", "", true},
		{"same origin", "127.0.0.1:7888", "http://127.0.0.1:7888", true},
		{"allow-listed", "127.0.0.1:7888", "http://localhost:3000", true},
		{"allow-listed case", "127.0.0.1:7888", "HTTP://LOCALHOST:3000", true},
		{"foreign", "127.0.0.1:7888", "https://evil.example", false},
		{"other port", "127.0.0.1:7888", "http://127.0.0.1:9999", false},
		{"opaque", "127.0.0.1:7888", "null", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/eval", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, policy.Check(req))
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	policy := NewOriginPolicy([]string{"http://localhost:3000"})
	router := gin.New()
	router.Use(CORS(policy))
	router.Use(OriginGuard(policy))
	router.POST("/eval", func(c *gin.Context) { c.Status(http.StatusOK) })

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/eval", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight("http://localhost:3000")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = preflight("https://evil.example")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOriginGuardBlocksSimpleRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(OriginGuard(NewOriginPolicy(nil)))
	hit := false
	router.POST("/eval", func(c *gin.Context) {
		hit = true
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/eval", strings.NewReader("1"))
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, hit)
}
