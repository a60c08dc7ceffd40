package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

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
	"github.com/bookclubhq/clubhouse/internal/gamification"
	http_controllers "github.com/bookclubhq/clubhouse/internal/http"
	"github.com/bookclubhq/clubhouse/internal/reminders"
	"github.com/bookclubhq/clubhouse/internal/scheduler"
	"github.com/bookclubhq/clubhouse/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		// service connections
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	// kill (no param) sends SIGTERM, kill -2 is SIGINT; SIGKILL can't be
	// caught so it isn't listed.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Call shutdown callback first (e.g., to stop task queue)
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Clubhouse v%s", version)

	// Initialize database
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	bookRepo := books.NewRepository(db.DB, cfg.Library.LoanPeriod)
	readingRepo := readinglist.NewRepository(db.DB)
	forumRepo := forum.NewRepository(db.DB)
	eventRepo := events.NewRepository(db.DB)
	badgeRepo := badges.NewRepository(db.DB)
	notifRepo := notifications.NewRepository(db.DB)

	// Audit trail, gamification engine and the due-date sweeper
	auditor := audit.NewService(auditdb.NewRepository(db.DB))
	engine := gamification.NewService(readingRepo, forumRepo, eventRepo, badgeRepo, notifRepo)
	sweeper := reminders.NewSweeper(bookRepo, notifRepo, reminders.Config{
		UpcomingDays: cfg.Reminders.UpcomingDays,
		DedupWindow:  cfg.Reminders.DedupWindow,
	})

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		// Register task queues
		taskClient.Register(
			tasks.NewBookAvailableQueue(readingRepo, notifRepo),
			tasks.NewEventCancelledQueue(eventRepo, notifRepo),
			tasks.NewAwardBadgesQueue(engine),
		)

		// Start task workers in background
		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Start the reminder sweep scheduler if enabled
	var sweepScheduler *scheduler.ReminderSweepScheduler
	if cfg.Reminders.Enabled {
		sweepScheduler = scheduler.NewReminderSweepScheduler(sweeper, auditor, cfg.Reminders)
		if err := sweepScheduler.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start reminder scheduler: %v", err)
		}
	}

	// Initialize authentication if enabled
	var authService *auth.Service
	var authMiddleware *auth.Middleware
	var sessionManager *auth.SessionManager
	var csrfSecret []byte

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")

		authService = auth.NewService(db.DB, cfg.Auth, cfg.Admin)

		// Get underlying SQL DB for session store
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}

		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}

		authMiddleware = auth.NewMiddleware(authService, sessionManager, cfg.Auth)

		// Generate or use configured CSRF secret
		if cfg.Auth.SessionSecret != "" {
			csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
			if err != nil {
				// Not hex, use as raw bytes
				csrfSecret = []byte(cfg.Auth.SessionSecret)
			}
		} else {
			secret, err := auth.GenerateSessionSecret()
			if err != nil {
				log.Fatalf("Failed to generate CSRF secret: %v", err)
			}
			csrfSecret, _ = hex.DecodeString(secret)
			log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
		}

		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users yet. The first registered account becomes the administrator.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	// Build router configuration with all dependencies
	routerCfg := http_controllers.RouterConfig{
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
		AuthMiddleware:      authMiddleware,
		SessionManager:      sessionManager,
		AuthConfig:          cfg.Auth,
		CSRFSecret:          csrfSecret,
		SecureCookies:       cfg.Auth.SecureCookies,
		Version:             version,
	}
	if taskClient != nil {
		routerCfg.TaskClient = taskClient
	}

	router := http_controllers.NewRouter(routerCfg)

	// Shutdown callback for graceful cleanup
	onShutdown := func(ctx context.Context) {
		if sweepScheduler != nil {
			sweepScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}

// RunSweep performs one reminder sweep and exits. Used by external
// schedulers that prefer cron over the built-in scheduler.
func RunSweep(cfg *config.Config) error {
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer db.Close()

	bookRepo := books.NewRepository(db.DB, cfg.Library.LoanPeriod)
	notifRepo := notifications.NewRepository(db.DB)
	sweeper := reminders.NewSweeper(bookRepo, notifRepo, reminders.Config{
		UpcomingDays: cfg.Reminders.UpcomingDays,
		DedupWindow:  cfg.Reminders.DedupWindow,
	})

	result, err := sweeper.Run()
	if err != nil {
		return err
	}

	log.Printf("Sweep finished: scanned=%d due_soon=%d due_today=%d overdue=%d skipped=%d",
		result.Scanned, result.DueSoon, result.DueToday, result.Overdue, result.Skipped)
	return nil
}
