package http

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bookclubhq/clubhouse/internal/audit"
	"github.com/bookclubhq/clubhouse/internal/database/books"
	"github.com/bookclubhq/clubhouse/internal/entities"
	"github.com/bookclubhq/clubhouse/internal/tasks"
)

// BookStore covers the catalog and borrowing operations.
type BookStore interface {
	CreateBook(book *entities.Book) error
	GetBookByID(id uint) (*entities.Book, error)
	ListBooks(featured *bool, search string, limit, offset int) ([]entities.Book, int64, error)
	UpdateBook(id uint, fields map[string]any) (*entities.Book, error)
	DeleteBook(id uint) error
	Borrow(bookID, userID uint) (*entities.Book, error)
	Return(bookID, userID uint) (*entities.Book, bool, error)
	GetBorrowLogsByBook(bookID uint) ([]entities.BorrowLog, error)
	GetBorrowLogsByUser(userID uint) ([]entities.BorrowLog, error)
}

type BooksController struct {
	store      BookStore
	taskClient TaskEnqueuer
	auditor    *audit.Service
}

func NewBooksController(store BookStore, taskClient TaskEnqueuer, auditor *audit.Service) *BooksController {
	return &BooksController{
		store:      store,
		taskClient: taskClient,
		auditor:    auditor,
	}
}

// ListBooks returns the catalog, featured books first. Supports a
// featured filter, free-text search over title/author and pagination.
func (bc *BooksController) ListBooks(c *gin.Context) {
	limit, offset := parsePagination(c)

	var featured *bool
	switch c.Query("featured") {
	case "true":
		v := true
		featured = &v
	case "false":
		v := false
		featured = &v
	}

	list, total, err := bc.store.ListBooks(featured, c.Query("q"), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	c.JSON(200, paginated(list, total, limit, offset))
}

func (bc *BooksController) GetBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.store.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	c.JSON(200, book)
}

type bookRequest struct {
	Title       string `json:"title" binding:"required"`
	Author      string `json:"author" binding:"required"`
	ISBN        string `json:"isbn"`
	CoverURL    string `json:"cover_url"`
	Description string `json:"description"`
	PageCount   int    `json:"page_count"`
	Featured    bool   `json:"featured"`
}

// CreateBook adds a book to the catalog. Admin only.
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and author are required")
		return
	}

	book := &entities.Book{
		Title:       req.Title,
		Author:      req.Author,
		ISBN:        req.ISBN,
		CoverURL:    req.CoverURL,
		Description: req.Description,
		PageCount:   req.PageCount,
		Featured:    req.Featured,
		Available:   true,
	}

	if err := bc.store.CreateBook(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	bc.auditor.Record(GetUserID(c), entities.AuditBookCreate, "book", book.ID, book.Title)
	respondCreated(c, book)
}

// UpdateBook edits catalog fields. The borrowing state is protected and
// cannot be changed through this endpoint. Admin only.
func (bc *BooksController) UpdateBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	book, err := bc.store.UpdateBook(id, fields)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "update book")
		return
	}

	bc.auditor.Record(GetUserID(c), entities.AuditBookUpdate, "book", book.ID, book.Title)
	c.JSON(200, book)
}

// DeleteBook removes a book from the catalog. Borrowed books cannot be
// deleted until they come back. Admin only.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.DeleteBook(id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, books.ErrBookBorrowed):
			respondConflict(c, "book is currently borrowed")
		default:
			respondInternalError(c, err, "delete book")
		}
		return
	}

	bc.auditor.Record(GetUserID(c), entities.AuditBookDelete, "book", id, "")
	respondSuccess(c, "book deleted")
}

// BorrowBook checks a book out to the authenticated user. Exactly one
// member can hold a book; a concurrent borrow loses with a 409.
func (bc *BooksController) BorrowBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	book, err := bc.store.Borrow(id, userID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, books.ErrBookUnavailable):
			respondConflict(c, "book is not available")
		default:
			respondInternalError(c, err, "borrow book")
		}
		return
	}

	c.JSON(200, book)
}

// ReturnBook checks a book back in and broadcasts its availability to
// everyone holding it on their reading list.
func (bc *BooksController) ReturnBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID := GetUserID(c)

	book, overdue, err := bc.store.Return(id, userID)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			respondNotFound(c, "book")
		case errors.Is(err, books.ErrNotBorrower):
			respondForbidden(c, "book is not borrowed by you")
		default:
			respondInternalError(c, err, "return book")
		}
		return
	}

	// Fan-out happens after the return committed, via the task queue
	if bc.taskClient != nil {
		_, _ = bc.taskClient.Add(tasks.BookAvailableTask{BookID: book.ID, Title: book.Title}).Save()
	}

	c.JSON(200, gin.H{"book": book, "overdue": overdue})
}

// BookHistory returns the borrow log for one book. Admin only.
func (bc *BooksController) BookHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := bc.store.GetBookByID(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	logs, err := bc.store.GetBorrowLogsByBook(id)
	if err != nil {
		respondInternalError(c, err, "book history")
		return
	}

	c.JSON(200, gin.H{"history": logs, "count": len(logs)})
}

// MyLoans returns the authenticated user's borrow history.
func (bc *BooksController) MyLoans(c *gin.Context) {
	logs, err := bc.store.GetBorrowLogsByUser(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "my loans")
		return
	}

	c.JSON(200, gin.H{"loans": logs, "count": len(logs)})
}
