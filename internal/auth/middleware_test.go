package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/clubhouse/internal/config"
	"github.com/bookclubhq/clubhouse/internal/entities"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(m *Middleware) *gin.Engine {
	router := gin.New()
	router.Use(m.Handler())
	router.GET("/api/books", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	router.POST("/api/books", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	router.GET("/api/notifications", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	router.GET("/api/admin/audit", m.RequireAdmin(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	return router
}

func newAuthFixture(t *testing.T) (*Service, *Middleware) {
	svc := newTestService(t, "")
	m := NewMiddleware(svc, nil, config.Auth{Mode: config.AuthModeLocal, BcryptCost: testBcryptCost})
	return svc, m
}

func TestMiddleware_NoneMode(t *testing.T) {
	svc := newTestService(t, "")
	m := NewMiddleware(svc, nil, config.Auth{Mode: config.AuthModeNone})
	router := newTestRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_PublicReadsAllowed(t *testing.T) {
	_, m := newAuthFixture(t)
	router := newTestRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/books", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_MutationsRequireAuth(t *testing.T) {
	_, m := newAuthFixture(t)
	router := newTestRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_PrivateReadsRequireAuth(t *testing.T) {
	_, m := newAuthFixture(t)
	router := newTestRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/notifications", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_BearerAuth(t *testing.T) {
	svc, m := newAuthFixture(t)
	router := newTestRouter(m)

	user, err := svc.Register("alice", "alice@club.org", "correct-horse-battery")
	require.NoError(t, err)
	token, err := svc.GenerateToken(user.ID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":1`)
}

func TestMiddleware_InvalidBearerRejected(t *testing.T) {
	_, m := newAuthFixture(t)
	router := newTestRouter(m)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/books", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin(t *testing.T) {
	svc, m := newAuthFixture(t)
	router := newTestRouter(m)

	// First registration bootstraps the admin
	admin, err := svc.Register("alice", "alice@club.org", "correct-horse-battery")
	require.NoError(t, err)
	adminToken, err := svc.GenerateToken(admin.ID)
	require.NoError(t, err)

	member, err := svc.Register("bob", "bob@club.org", "correct-horse-battery")
	require.NoError(t, err)
	memberToken, err := svc.GenerateToken(member.ID)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin/audit", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/audit", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGetUserRole_Default(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, entities.UserRole(""), GetUserRole(c))
	assert.Equal(t, DefaultUserID, GetUserID(c))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		MaxAttempts:     3,
		WindowDuration:  time.Minute,
		LockoutDuration: time.Minute,
	})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := rl.Allow("1.2.3.4", "alice")
		assert.True(t, allowed)
		rl.RecordFailure("1.2.3.4", "alice")
	}

	allowed, retryAfter := rl.Allow("1.2.3.4", "alice")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))

	// Other pairs are unaffected
	allowed, _ = rl.Allow("1.2.3.4", "bob")
	assert.True(t, allowed)

	rl.RecordSuccess("1.2.3.4", "alice")
	allowed, _ = rl.Allow("1.2.3.4", "alice")
	assert.True(t, allowed)
}
