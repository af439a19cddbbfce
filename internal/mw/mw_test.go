package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func perform(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestGates(t *testing.T) {
	r := gin.New()
	api := r.Group("/api", EntryGate("1234"))
	api.GET("/whoami", func(c *gin.Context) { c.JSON(http.StatusOK, SessionFrom(c)) })
	admin := api.Group("/admin", AdminGate("admin"))
	admin.GET("/whoami", func(c *gin.Context) { c.JSON(http.StatusOK, SessionFrom(c)) })

	testCases := []struct {
		name     string
		path     string
		headers  map[string]string
		wantCode int
		wantBody string
	}{
		{name: "No password", path: "/api/whoami", wantCode: http.StatusUnauthorized},
		{name: "Wrong password", path: "/api/whoami", headers: map[string]string{EntryHeader: "4321"}, wantCode: http.StatusUnauthorized},
		{name: "Entry only", path: "/api/whoami", headers: map[string]string{EntryHeader: "1234"}, wantCode: http.StatusOK, wantBody: `{"Entered":true,"Admin":false}`},
		{name: "Admin without admin password", path: "/api/admin/whoami", headers: map[string]string{EntryHeader: "1234"}, wantCode: http.StatusUnauthorized},
		{name: "Admin", path: "/api/admin/whoami", headers: map[string]string{EntryHeader: "1234", AdminHeader: "admin"}, wantCode: http.StatusOK, wantBody: `{"Entered":true,"Admin":true}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := perform(r, http.MethodGet, tc.path, tc.headers)
			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, w.Body.String())
			}
		})
	}
}

func TestGate_EmptySecretIsOpen(t *testing.T) {
	r := gin.New()
	r.GET("/", EntryGate(""), func(c *gin.Context) { c.JSON(http.StatusOK, SessionFrom(c)) })

	w := perform(r, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"Entered":true,"Admin":false}`, w.Body.String())
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimiter(rate.Limit(1), 2), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, perform(r, http.MethodGet, "/", nil).Code)
}

func TestIPRateLimiter_SeparateBuckets(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1, time.Minute)

	assert.True(t, l.GetLimiter("10.0.0.1").Allow())
	assert.False(t, l.GetLimiter("10.0.0.1").Allow())
	assert.True(t, l.GetLimiter("10.0.0.2").Allow())
	assert.Same(t, l.GetLimiter("10.0.0.1"), l.GetLimiter("10.0.0.1"))
}

func TestCache_InvalidateOnWrite(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	hits := 0

	r := gin.New()
	r.Use(Cache(rc, time.Minute), InvalidateOnWrite(rc))
	r.GET("/items", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})
	r.POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.POST("/fail", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	first := perform(r, http.MethodGet, "/items", nil)
	assert.JSONEq(t, `{"hits":1}`, first.Body.String())

	cached := perform(r, http.MethodGet, "/items", nil)
	assert.JSONEq(t, `{"hits":1}`, cached.Body.String())
	assert.Equal(t, "HIT", cached.Header().Get("X-Cache"))

	perform(r, http.MethodPost, "/fail", nil)
	assert.JSONEq(t, `{"hits":1}`, perform(r, http.MethodGet, "/items", nil).Body.String())

	perform(r, http.MethodPost, "/items", nil)
	assert.JSONEq(t, `{"hits":2}`, perform(r, http.MethodGet, "/items", nil).Body.String())
}

func TestCache_WriteDuringReadIsNotCached(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	hits := 0

	r := gin.New()
	r.Use(Cache(rc, time.Minute))
	r.GET("/items", func(c *gin.Context) {
		hits++
		if hits == 1 {
			// A mutation commits after this request read its data.
			rc.Invalidate()
		}
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})

	assert.JSONEq(t, `{"hits":1}`, perform(r, http.MethodGet, "/items", nil).Body.String())

	w := perform(r, http.MethodGet, "/items", nil)
	assert.Empty(t, w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"hits":2}`, w.Body.String())

	w = perform(r, http.MethodGet, "/items", nil)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	assert.JSONEq(t, `{"hits":2}`, w.Body.String())
}
