package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (useful for local dev)
	AuthModeLocal AuthMode = "local" // Local user database with sessions + bearer tokens
)

type (
	Config struct {
		HTTP
		Global
		Database
		Library
		Reminders
		Tasks
		Auth
		Admin
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Library struct {
		LoanPeriod time.Duration // how long a borrowed book is kept, default 30 days
	}

	Reminders struct {
		Enabled      bool
		Schedule     string        // cron format, e.g. "0 8 * * *" = daily at 08:00
		UpcomingDays int           // "due soon" horizon, default 3 days
		DedupWindow  time.Duration // suppress duplicate reminders inside this window
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	Auth struct {
		Mode             AuthMode
		SessionSecret    string
		SessionLifetime  time.Duration
		BcryptCost       int
		SecureCookies    bool // set to false for local dev without HTTPS
		TokenExpiry      time.Duration
		MaxLoginAttempts int
		RateLimitWindow  time.Duration
		LockoutDuration  time.Duration
	}

	Admin struct {
		// SuperAdminEmail designates the one account whose admin role can
		// never be revoked. Matched case-insensitively against user emails.
		SuperAdminEmail string
	}
)

// IsSuperAdmin reports whether the given email belongs to the configured
// super admin.
func (a Admin) IsSuperAdmin(email string) bool {
	return a.SuperAdminEmail != "" && strings.EqualFold(a.SuperAdminEmail, email)
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8288)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Library defaults
	v.SetDefault("loan_period", "720h") // 30 days

	// Due-date reminder defaults
	v.SetDefault("reminders_enabled", false)
	v.SetDefault("reminders_schedule", "0 8 * * *") // Daily at 08:00
	v.SetDefault("reminders_upcoming_days", 3)
	v.SetDefault("reminders_dedup_window", "24h")

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Auth defaults
	v.SetDefault("auth_mode", "local")
	v.SetDefault("auth_session_secret", "") // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_secure_cookies", true)
	v.SetDefault("auth_token_expiry", "720h") // 30 days, 0 = never
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Admin defaults
	v.SetDefault("admin_super_email", "")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Library: Library{
			LoanPeriod: v.GetDuration("LOAN_PERIOD"),
		},
		Reminders: Reminders{
			Enabled:      v.GetBool("REMINDERS_ENABLED"),
			Schedule:     v.GetString("REMINDERS_SCHEDULE"),
			UpcomingDays: v.GetInt("REMINDERS_UPCOMING_DAYS"),
			DedupWindow:  v.GetDuration("REMINDERS_DEDUP_WINDOW"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Admin: Admin{
			SuperAdminEmail: v.GetString("ADMIN_SUPER_EMAIL"),
		},
	}
}
