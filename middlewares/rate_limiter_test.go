package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func hitFrom(r *gin.Engine, ip string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":51234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestStrictRateLimiterBudgetIsPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", NewStrictRateLimiter(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hitFrom(r, "10.0.0.1"))

	// An exhausted neighbour must not burn this client's budget.
	assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.0.2"))
}

func TestRateLimitBudgetIsPerIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ping", NewRateLimiter(3, 60).RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, hitFrom(r, "10.0.0.1"))
	assert.Equal(t, http.StatusOK, hitFrom(r, "10.0.0.2"))
}
