package http

import (
	"github.com/gin-gonic/gin"

	"github.com/bookclubhq/clubhouse/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF must run before session so that session context is preserved
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies, cfg.AuthService))
	}

	// Session runs after CSRF so session context isn't overwritten by
	// CSRF's request replacement
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	} else {
		// No auth - inject default user ID
		router.Use(func(c *gin.Context) {
			c.Set(auth.ContextKeyUserID, auth.DefaultUserID)
			c.Set(auth.ContextKeyAuthType, auth.AuthTypeNone)
			c.Next()
		})
	}

	if cfg.AuthService != nil && cfg.AuthService.IsAuthEnabled() {
		authController := auth.NewController(cfg.AuthService, cfg.SessionManager, cfg.AuthConfig)
		authController.RegisterRoutes(router)
	}

	// Controllers
	health := NewHealthController(cfg.Database, cfg.Version)
	booksController := NewBooksController(cfg.BookStore, cfg.TaskClient, cfg.Auditor)
	readingListController := NewReadingListController(cfg.ReadingListStore, cfg.TaskClient)
	forumController := NewForumController(cfg.ForumStore, cfg.TaskClient, cfg.Notifier)
	eventsController := NewEventsController(cfg.EventStore, cfg.TaskClient, cfg.Auditor)
	badgesController := NewBadgesController(cfg.BadgeCatalog, cfg.GamificationService, cfg.Auditor)
	notificationsController := NewNotificationsController(cfg.Notifications)
	adminController := NewAdminController(cfg.AuthService, cfg.ForumModeration, cfg.Auditor, cfg.Sweeper)

	requireAuth := passthrough()
	requireAdmin := passthrough()
	if cfg.AuthMiddleware != nil {
		requireAuth = cfg.AuthMiddleware.RequireAuth()
		requireAdmin = cfg.AuthMiddleware.RequireAdmin()
	}

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Book catalog and borrowing
	booksGroup := router.Group("/api/books")
	{
		booksGroup.GET("", booksController.ListBooks)
		booksGroup.GET("/:id", booksController.GetBook)
		booksGroup.POST("", requireAdmin, booksController.CreateBook)
		booksGroup.PUT("/:id", requireAdmin, booksController.UpdateBook)
		booksGroup.DELETE("/:id", requireAdmin, booksController.DeleteBook)
		booksGroup.POST("/:id/borrow", requireAuth, booksController.BorrowBook)
		booksGroup.POST("/:id/return", requireAuth, booksController.ReturnBook)
		booksGroup.GET("/:id/history", requireAdmin, booksController.BookHistory)
	}
	router.GET("/api/loans", requireAuth, booksController.MyLoans)

	// Per-member reading list
	readingListGroup := router.Group("/api/reading-list", requireAuth)
	{
		readingListGroup.GET("", readingListController.List)
		readingListGroup.PUT("/:bookId", readingListController.Upsert)
		readingListGroup.DELETE("/:bookId", readingListController.Remove)
	}

	// Forum
	forumGroup := router.Group("/api/forum")
	{
		forumGroup.GET("/topics", forumController.ListTopics)
		forumGroup.GET("/topics/:id", forumController.GetTopic)
		forumGroup.POST("/topics", requireAuth, forumController.CreateTopic)
		forumGroup.PUT("/topics/:id", requireAuth, forumController.UpdateTopic)
		forumGroup.DELETE("/topics/:id", requireAuth, forumController.DeleteTopic)
		forumGroup.POST("/topics/:id/like", requireAuth, forumController.LikeTopic)
		forumGroup.POST("/topics/:id/replies", requireAuth, forumController.CreateReply)
		forumGroup.PUT("/replies/:id", requireAuth, forumController.UpdateReply)
		forumGroup.DELETE("/replies/:id", requireAuth, forumController.DeleteReply)
		forumGroup.POST("/replies/:id/like", requireAuth, forumController.LikeReply)
	}

	// Events and RSVPs
	eventsGroup := router.Group("/api/events")
	{
		eventsGroup.GET("", eventsController.ListEvents)
		eventsGroup.GET("/:id", eventsController.GetEvent)
		eventsGroup.POST("", requireAdmin, eventsController.CreateEvent)
		eventsGroup.PUT("/:id", requireAdmin, eventsController.UpdateEvent)
		eventsGroup.GET("/:id/rsvps", eventsController.ListRSVPs)
		eventsGroup.POST("/:id/rsvp", requireAuth, eventsController.RSVP)
		eventsGroup.DELETE("/:id/rsvp", requireAuth, eventsController.CancelRSVP)
		eventsGroup.POST("/:id/comments", requireAuth, eventsController.CreateComment)
		eventsGroup.DELETE("/:id/comments/:commentId", requireAuth, eventsController.DeleteComment)
	}

	// Badges and levels
	router.GET("/api/badges", badgesController.ListBadges)
	router.GET("/api/badges/me", requireAuth, badgesController.MyBadges)
	router.GET("/api/badges/progress", requireAuth, badgesController.MyProgress)
	router.GET("/api/badges/users/:id", badgesController.UserBadges)
	router.GET("/api/levels/me", requireAuth, badgesController.MyLevel)

	// Notifications
	notificationsGroup := router.Group("/api/notifications", requireAuth)
	{
		notificationsGroup.GET("", notificationsController.List)
		notificationsGroup.GET("/unread-count", notificationsController.UnreadCount)
		notificationsGroup.POST("/:id/read", notificationsController.MarkRead)
		notificationsGroup.POST("/read-all", notificationsController.MarkAllRead)
		notificationsGroup.DELETE("/:id", notificationsController.Delete)
	}

	// Admin surface, every mutation audited
	adminGroup := router.Group("/api/admin", requireAdmin)
	{
		adminGroup.GET("/users", adminController.ListUsers)
		adminGroup.PUT("/users/:id/role", adminController.SetRole)
		adminGroup.PUT("/forum/topics/:id/moderate", adminController.ModerateTopic)
		adminGroup.DELETE("/forum/topics/:id", adminController.DeleteTopic)
		adminGroup.DELETE("/forum/replies/:id", adminController.DeleteReply)
		adminGroup.POST("/events/:id/cancel", eventsController.CancelEvent)
		adminGroup.POST("/badges/grant", badgesController.Grant)
		adminGroup.POST("/badges/revoke", badgesController.Revoke)
		adminGroup.GET("/audit", adminController.AuditLog)
		adminGroup.POST("/reminders/sweep", adminController.RunSweep)
	}

	return router
}

func passthrough() gin.HandlerFunc {
	return func(c *gin.Context) { c.Next() }
}
