package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookclubhq/clubhouse/internal/audit"
	"github.com/bookclubhq/clubhouse/internal/auth"
	"github.com/bookclubhq/clubhouse/internal/config"
	"github.com/bookclubhq/clubhouse/internal/database"
	auditdb "github.com/bookclubhq/clubhouse/internal/database/audit"
	"github.com/bookclubhq/clubhouse/internal/database/badges"
	"github.com/bookclubhq/clubhouse/internal/database/books"
	"github.com/bookclubhq/clubhouse/internal/database/events"
	"github.com/bookclubhq/clubhouse/internal/database/forum"
	"github.com/bookclubhq/clubhouse/internal/database/notifications"
	"github.com/bookclubhq/clubhouse/internal/database/readinglist"
	"github.com/bookclubhq/clubhouse/internal/entities"
	"github.com/bookclubhq/clubhouse/internal/gamification"
	"github.com/bookclubhq/clubhouse/internal/reminders"
)

// testApp wires the full router over a throwaway database, with local
// auth and bearer tokens. No task queue, so fan-out is skipped.
type testApp struct {
	router *gin.Engine
	db     *database.Database

	books         *books.Repository
	notifications *notifications.Repository
	badges        *badges.Repository

	adminID     uint
	adminToken  string
	memberID    uint
	memberToken string
}

func setupTestApp(t *testing.T) (*testApp, func()) {
	gin.SetMode(gin.TestMode)
	dbPath := "./test_http_" + t.Name() + ".db"

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	authCfg := config.Auth{
		Mode:             config.AuthModeLocal,
		BcryptCost:       4,
		TokenExpiry:      time.Hour,
		MaxLoginAttempts: 5,
		RateLimitWindow:  time.Minute,
		LockoutDuration:  time.Minute,
	}
	authService := auth.NewService(db.DB, authCfg, config.Admin{})

	bookRepo := books.NewRepository(db.DB, 30*24*time.Hour)
	readingRepo := readinglist.NewRepository(db.DB)
	forumRepo := forum.NewRepository(db.DB)
	eventRepo := events.NewRepository(db.DB)
	badgeRepo := badges.NewRepository(db.DB)
	notifRepo := notifications.NewRepository(db.DB)
	auditor := audit.NewService(auditdb.NewRepository(db.DB))
	engine := gamification.NewService(readingRepo, forumRepo, eventRepo, badgeRepo, notifRepo)
	sweeper := reminders.NewSweeper(bookRepo, notifRepo, reminders.Config{})

	router := NewRouter(RouterConfig{
		Database:            db,
		Auditor:             auditor,
		BookStore:           bookRepo,
		ReadingListStore:    readingRepo,
		ForumStore:          forumRepo,
		ForumModeration:     forumRepo,
		EventStore:          eventRepo,
		BadgeCatalog:        badgeRepo,
		Notifications:       notifRepo,
		Notifier:            notifRepo,
		GamificationService: engine,
		Sweeper:             sweeper,
		AuthService:         authService,
		AuthMiddleware:      auth.NewMiddleware(authService, nil, authCfg),
		AuthConfig:          authCfg,
		Version:             "test",
	})

	app := &testApp{
		router:        router,
		db:            db,
		books:         bookRepo,
		notifications: notifRepo,
		badges:        badgeRepo,
	}

	// First registered account bootstraps as admin
	admin, err := authService.Register("club_admin", "admin@club.test", "correct horse battery")
	require.NoError(t, err)
	app.adminID = admin.ID
	app.adminToken, err = authService.GenerateToken(admin.ID)
	require.NoError(t, err)

	member, err := authService.Register("reader_one", "reader@club.test", "correct horse battery")
	require.NoError(t, err)
	app.memberID = member.ID
	app.memberToken, err = authService.GenerateToken(member.ID)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return app, cleanup
}

// do performs a JSON request against the test router. An empty token
// sends the request anonymously.
func (app *testApp) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

type auditPage struct {
	Data  []entities.AuditEntry `json:"data"`
	Total int64                 `json:"total"`
}

// waitForAudit polls the audit endpoint until at least min entries match
// the query. Audit writes are asynchronous, so tests cannot read the
// trail back immediately.
func (app *testApp) waitForAudit(t *testing.T, query string, min int64) auditPage {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	var page auditPage
	for {
		w := app.do(t, http.MethodGet, "/api/admin/audit"+query, app.adminToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		page = auditPage{}
		decode(t, w, &page)
		if page.Total >= min || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.GreaterOrEqual(t, page.Total, min)
	return page
}

func TestHealthAndPing(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	w := app.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var health HealthResponse
	decode(t, w, &health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "ok", health.Checks["database"])
	assert.Equal(t, "test", health.Version)

	w = app.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnonymousAccess(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	// Public reads stay open
	w := app.do(t, http.MethodGet, "/api/books", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = app.do(t, http.MethodGet, "/api/forum/topics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Mutations and private reads do not
	w = app.do(t, http.MethodPost, "/api/forum/topics", "", gin.H{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodGet, "/api/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = app.do(t, http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRejectMembers(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	w := app.do(t, http.MethodPost, "/api/books", app.memberToken, gin.H{"title": "T", "author": "A"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodGet, "/api/admin/users", app.memberToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(t, http.MethodPost, "/api/admin/reminders/sweep", app.memberToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
