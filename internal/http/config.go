package http

import (
	"github.com/bookclubhq/clubhouse/internal/audit"
	"github.com/bookclubhq/clubhouse/internal/auth"
	"github.com/bookclubhq/clubhouse/internal/config"
	"github.com/bookclubhq/clubhouse/internal/database"
	"github.com/bookclubhq/clubhouse/internal/gamification"
	"github.com/bookclubhq/clubhouse/internal/reminders"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database
	Auditor  *audit.Service

	// Domain stores (narrow interfaces over the repositories)
	BookStore        BookStore
	ReadingListStore ReadingListStore
	ForumStore       ForumStore
	ForumModeration  ForumModerationStore
	EventStore       EventStore
	BadgeCatalog     BadgeCatalog
	Notifications    NotificationStore
	Notifier         Notifier

	// Gamification engine and the reminder sweeper behind the manual
	// admin trigger
	GamificationService *gamification.Service
	Sweeper             *reminders.Sweeper

	// Authentication
	AuthService    *auth.Service
	SessionManager *auth.SessionManager
	AuthMiddleware *auth.Middleware
	AuthConfig     config.Auth
	CSRFSecret     []byte
	SecureCookies  bool

	// Task queue client (optional, nil disables fan-out)
	TaskClient TaskEnqueuer

	// Application info
	Version string
}
