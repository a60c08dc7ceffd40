package entities

import (
	"time"

	"gorm.io/gorm"
)

type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "BORROWED"
	BorrowStatusReturned BorrowStatus = "RETURNED"
	BorrowStatusOverdue  BorrowStatus = "OVERDUE"
)

type ReadingStatus string

const (
	ReadingStatusToRead    ReadingStatus = "to_read"
	ReadingStatusReading   ReadingStatus = "reading"
	ReadingStatusCompleted ReadingStatus = "completed"
)

type Book struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"index;size:512" json:"title"`
	Author      string `gorm:"index;size:256" json:"author"`
	ISBN        string `gorm:"index;size:20" json:"isbn,omitempty"`
	CoverURL    string `gorm:"size:2048" json:"cover_url,omitempty"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	PageCount   int    `json:"page_count,omitempty"`
	Featured    bool   `gorm:"default:false;index" json:"featured"`

	// Borrowing state. Available is false exactly when BorrowedBy is set.
	Available  bool       `gorm:"default:true;index" json:"available"`
	BorrowedBy *uint      `gorm:"index" json:"borrowed_by,omitempty"`
	BorrowedAt *time.Time `json:"borrowed_at,omitempty"`
	DueAt      *time.Time `json:"due_at,omitempty"`

	Borrower *User `gorm:"foreignKey:BorrowedBy" json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// BorrowLog is an append-only audit record of one borrow/return cycle.
// It is created when a book is borrowed and closed when it is returned.
type BorrowLog struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	BookID     uint         `gorm:"index" json:"book_id"`
	UserID     uint         `gorm:"index" json:"user_id"`
	BorrowedAt time.Time    `json:"borrowed_at"`
	DueAt      time.Time    `json:"due_at"`
	ReturnedAt *time.Time   `gorm:"index" json:"returned_at,omitempty"`
	Status     BorrowStatus `gorm:"size:20;index;default:'BORROWED'" json:"status"`

	Book Book `gorm:"foreignKey:BookID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (BorrowLog) TableName() string {
	return "borrow_logs"
}

// ReadingListEntry tracks a user's personal reading status for a book.
// Entries also act as the waiting list for availability notifications.
type ReadingListEntry struct {
	ID          uint          `gorm:"primaryKey" json:"id"`
	UserID      uint          `gorm:"index;uniqueIndex:idx_reading_user_book" json:"user_id"`
	BookID      uint          `gorm:"index;uniqueIndex:idx_reading_user_book" json:"book_id"`
	Status      ReadingStatus `gorm:"size:20;default:'to_read'" json:"status"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`

	Book Book `gorm:"foreignKey:BookID" json:"book,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (ReadingListEntry) TableName() string {
	return "reading_list_entries"
}
