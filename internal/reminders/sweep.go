// Package reminders implements the due-date sweep: a polling pass over
// all borrowed books that files "due soon", "due today" and "overdue"
// notifications for their borrowers.
//
// The sweep is safe to run from anywhere (the in-process cron schedule,
// the admin endpoint, or an external scheduler via the sweep subcommand)
// because each bucket is deduplicated per borrower inside a rolling
// window.
package reminders

import (
	"fmt"
	"log"
	"time"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

const (
	titleDueSoon  = "Book due soon"
	titleDueToday = "Book due today"
	titleOverdue  = "Book overdue"
)

// BorrowedLister supplies the books currently checked out.
type BorrowedLister interface {
	ListBorrowed() ([]entities.Book, error)
}

// NotificationStore files reminders and answers the dedup check.
type NotificationStore interface {
	Create(userID uint, title, message, link string) (*entities.Notification, error)
	HasRecent(userID uint, title, link string, window time.Duration) (bool, error)
}

// Config tunes the sweep buckets.
type Config struct {
	UpcomingDays int           // "due soon" horizon in days, default 3
	DedupWindow  time.Duration // suppress identical reminders inside this window, default 24h
}

// Result summarizes one sweep run.
type Result struct {
	Scanned  int `json:"scanned"`
	DueSoon  int `json:"due_soon"`
	DueToday int `json:"due_today"`
	Overdue  int `json:"overdue"`
	Skipped  int `json:"skipped"` // already reminded inside the dedup window
}

// Sweeper classifies borrowed books against their due dates.
type Sweeper struct {
	books         BorrowedLister
	notifications NotificationStore
	cfg           Config
}

func NewSweeper(books BorrowedLister, notifications NotificationStore, cfg Config) *Sweeper {
	if cfg.UpcomingDays <= 0 {
		cfg.UpcomingDays = 3
	}
	if cfg.DedupWindow <= 0 {
		cfg.DedupWindow = 24 * time.Hour
	}
	return &Sweeper{books: books, notifications: notifications, cfg: cfg}
}

// Run executes one sweep. A failure to file one reminder is logged and the
// scan continues; only the initial listing can fail the whole run.
func (s *Sweeper) Run() (Result, error) {
	var result Result

	borrowed, err := s.books.ListBorrowed()
	if err != nil {
		return result, fmt.Errorf("list borrowed books: %w", err)
	}

	now := time.Now()
	for _, book := range borrowed {
		if book.BorrowedBy == nil || book.DueAt == nil {
			continue
		}
		result.Scanned++

		title, message, ok := s.classify(book, now)
		if !ok {
			continue
		}

		link := fmt.Sprintf("/books/%d", book.ID)
		recent, err := s.notifications.HasRecent(*book.BorrowedBy, title, link, s.cfg.DedupWindow)
		if err != nil {
			log.Printf("reminders: dedup check failed for book %d: %v", book.ID, err)
			continue
		}
		if recent {
			result.Skipped++
			continue
		}

		if _, err := s.notifications.Create(*book.BorrowedBy, title, message, link); err != nil {
			log.Printf("reminders: failed to notify user %d about book %d: %v", *book.BorrowedBy, book.ID, err)
			continue
		}

		switch title {
		case titleDueSoon:
			result.DueSoon++
		case titleDueToday:
			result.DueToday++
		case titleOverdue:
			result.Overdue++
		}
	}

	log.Printf("Reminder sweep: scanned %d, due soon %d, due today %d, overdue %d, skipped %d",
		result.Scanned, result.DueSoon, result.DueToday, result.Overdue, result.Skipped)
	return result, nil
}

// classify buckets a book by calendar-day distance to its due date.
func (s *Sweeper) classify(book entities.Book, now time.Time) (title, message string, ok bool) {
	days := daysUntil(now, *book.DueAt)

	switch {
	case days < 0:
		return titleOverdue,
			fmt.Sprintf("%q was due on %s, please return it", book.Title, book.DueAt.Format("Jan 2")),
			true
	case days == 0:
		return titleDueToday,
			fmt.Sprintf("%q is due today", book.Title),
			true
	case days <= s.cfg.UpcomingDays:
		return titleDueSoon,
			fmt.Sprintf("%q is due in %d day(s), on %s", book.Title, days, book.DueAt.Format("Jan 2")),
			true
	}
	return "", "", false
}

// daysUntil counts whole calendar days between now and due, both in local
// time. Negative when due is in the past.
func daysUntil(now, due time.Time) int {
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, due.Location())
	return int(dueDay.Sub(nowDay).Hours() / 24)
}
