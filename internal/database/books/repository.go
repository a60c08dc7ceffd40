// Package books provides database operations for the catalog and the
// borrow/return lifecycle.
//
// Borrow and return each run inside a transaction. Borrowing flips the
// availability flag with a conditional update, so two concurrent borrow
// requests for the same book cannot both succeed: the loser sees zero
// affected rows and gets ErrBookUnavailable.
package books

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/entities"
)

var (
	// ErrBookUnavailable is returned when borrowing a book that is
	// already checked out.
	ErrBookUnavailable = errors.New("book is not available")

	// ErrNotBorrower is returned when returning a book the requesting
	// user does not currently hold.
	ErrNotBorrower = errors.New("book is not borrowed by this user")

	// ErrBookBorrowed is returned when deleting a book that is currently
	// checked out.
	ErrBookBorrowed = errors.New("book is currently borrowed")
)

// Repository handles all catalog and borrowing database operations.
type Repository struct {
	db         *gorm.DB
	loanPeriod time.Duration
}

// NewRepository creates a new books repository. loanPeriod controls how far
// in the future due dates are stamped at borrow time.
func NewRepository(db *gorm.DB, loanPeriod time.Duration) *Repository {
	if loanPeriod <= 0 {
		loanPeriod = 30 * 24 * time.Hour
	}
	return &Repository{db: db, loanPeriod: loanPeriod}
}

// CreateBook inserts a new catalog entry.
func (r *Repository) CreateBook(book *entities.Book) error {
	book.Available = true
	book.BorrowedBy = nil
	book.BorrowedAt = nil
	book.DueAt = nil
	return r.db.Create(book).Error
}

// GetBookByID retrieves a single book.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns catalog entries with pagination. When featured is
// non-nil only matching books are returned; search matches title or author.
func (r *Repository) ListBooks(featured *bool, search string, limit, offset int) ([]entities.Book, int64, error) {
	var books []entities.Book
	var total int64

	query := r.db.Model(&entities.Book{})
	if featured != nil {
		query = query.Where("featured = ?", *featured)
	}
	if search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", pattern, pattern)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("featured DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	err := query.Find(&books).Error
	return books, total, err
}

// UpdateBook updates catalog fields only. Borrowing state is never touched
// here; that belongs to Borrow/Return.
func (r *Repository) UpdateBook(id uint, fields map[string]any) (*entities.Book, error) {
	for _, protected := range []string{"available", "borrowed_by", "borrowed_at", "due_at"} {
		delete(fields, protected)
	}

	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, err
	}
	if len(fields) > 0 {
		if err := r.db.Model(&book).Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return &book, nil
}

// DeleteBook soft-deletes a book. Books that are checked out cannot be
// deleted.
func (r *Repository) DeleteBook(id uint) error {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return err
	}
	if !book.Available {
		return ErrBookBorrowed
	}
	return r.db.Delete(&book).Error
}

// Borrow checks a book out to the given user and opens a borrow log.
// Returns ErrBookUnavailable when the book is already checked out,
// gorm.ErrRecordNotFound when it does not exist.
func (r *Repository) Borrow(bookID, userID uint) (*entities.Book, error) {
	now := time.Now()
	due := now.Add(r.loanPeriod)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			return err
		}

		// Conditional update: only flips availability if nobody got
		// there first. Zero rows affected means we lost the race.
		res := tx.Model(&entities.Book{}).
			Where("id = ? AND available = ?", bookID, true).
			Updates(map[string]any{
				"available":   false,
				"borrowed_by": userID,
				"borrowed_at": now,
				"due_at":      due,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookUnavailable
		}

		borrowLog := entities.BorrowLog{
			BookID:     bookID,
			UserID:     userID,
			BorrowedAt: now,
			DueAt:      due,
			Status:     entities.BorrowStatusBorrowed,
		}
		return tx.Create(&borrowLog).Error
	})
	if err != nil {
		return nil, err
	}

	return r.GetBookByID(bookID)
}

// Return checks a book back in. The requesting user must be the current
// borrower. The open borrow log is closed with RETURNED, or OVERDUE when
// the due date has passed. The second return value is true when the book
// came back overdue.
func (r *Repository) Return(bookID, userID uint) (*entities.Book, bool, error) {
	now := time.Now()
	overdue := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var book entities.Book
		if err := tx.First(&book, bookID).Error; err != nil {
			return err
		}
		if book.BorrowedBy == nil || *book.BorrowedBy != userID {
			return ErrNotBorrower
		}

		status := entities.BorrowStatusReturned
		if book.DueAt != nil && now.After(*book.DueAt) {
			status = entities.BorrowStatusOverdue
			overdue = true
		}

		// Close the most recent open log for this book+user pair.
		var borrowLog entities.BorrowLog
		err := tx.Where("book_id = ? AND user_id = ? AND status = ?", bookID, userID, entities.BorrowStatusBorrowed).
			Order("borrowed_at DESC").
			First(&borrowLog).Error
		if err == nil {
			updates := map[string]any{"returned_at": now, "status": status}
			if err := tx.Model(&borrowLog).Updates(updates).Error; err != nil {
				return err
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Model(&book).Updates(map[string]any{
			"available":   true,
			"borrowed_by": nil,
			"borrowed_at": nil,
			"due_at":      nil,
		}).Error
	})
	if err != nil {
		return nil, false, err
	}

	book, err := r.GetBookByID(bookID)
	return book, overdue, err
}

// GetBorrowLogsByBook returns the borrow history of a book, newest first.
func (r *Repository) GetBorrowLogsByBook(bookID uint) ([]entities.BorrowLog, error) {
	var logs []entities.BorrowLog
	err := r.db.Where("book_id = ?", bookID).
		Order("borrowed_at DESC").
		Find(&logs).Error
	return logs, err
}

// GetBorrowLogsByUser returns a user's borrow history, newest first.
func (r *Repository) GetBorrowLogsByUser(userID uint) ([]entities.BorrowLog, error) {
	var logs []entities.BorrowLog
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("borrowed_at DESC").
		Find(&logs).Error
	return logs, err
}

// ListBorrowed returns all books currently checked out with a due date.
// Used by the due-date reminder sweep.
func (r *Repository) ListBorrowed() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("available = ? AND borrowed_by IS NOT NULL AND due_at IS NOT NULL", false).
		Find(&books).Error
	return books, err
}
