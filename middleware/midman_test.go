package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 和 main.go 同样的挂载方式
func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	mgr := NewManager()
	mgr.Add(AccessLog())
	mgr.Add(Origin())
	engine.Use(mgr.Handlers()...)
	engine.GET("/ping", func(c *gin.Context) { WriteData(c, "pong") })
	return engine
}

func TestCorsHeaderOnWireResponse(t *testing.T) {
	engine := newTestEngine()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://example.com")
	engine.ServeHTTP(w, req)

	// 必须查定稿的响应,不是 handler 结束后的 live header map
	resp := w.Result()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://example.com", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestPreflightShortCircuits(t *testing.T) {
	engine := newTestEngine()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "http://example.com")
	engine.ServeHTTP(w, req)

	resp := w.Result()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "GET, POST, DELETE, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"))
}

func TestHandlersPreservesRegistrationOrder(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var order []string
	mark := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.Next()
		}
	}
	mgr := NewManager()
	mgr.Add(mark("first"))
	mgr.Add(mark("second"))
	engine.Use(mgr.Handlers()...)
	engine.GET("/x", func(c *gin.Context) { order = append(order, "handler") })

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, []string{"first", "second", "handler"}, order)
}
