package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/bookshelf-app/bookshelf/internal/middleware"
	"github.com/bookshelf-app/bookshelf/internal/models"
	"github.com/bookshelf-app/bookshelf/internal/repo"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ==========================
// Book Handler
// ==========================
type BookHandler struct {
	Books *repo.BookRepo
}

// parseID reads a chi URL parameter as an int64 id.
func parseID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

type bookInput struct {
	Title         string   `json:"title" validate:"required,max=100"`
	Author        string   `json:"author" validate:"required,max=100"`
	ISBN          string   `json:"isbn" validate:"max=20"`
	CoverImage    string   `json:"coverImage"`
	Description   string   `json:"description" validate:"max=2000"`
	PublishedDate string   `json:"publishedDate"`
	Genres        []string `json:"genres"`
}

func bookMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		if fe.Tag() == "required" {
			return "Please provide a book title"
		}
		return "Title must be at most 100 characters long"
	case "Author":
		if fe.Tag() == "required" {
			return "Please provide an author name"
		}
		return "Author name must be at most 100 characters long"
	case "Description":
		return "Book description must be at most 2000 characters long"
	}
	return "Invalid request body"
}

// toModel builds a models.Book from validated input. publishedDate accepts
// YYYY-MM-DD and reports an error for anything else.
func (in *bookInput) toModel(addedBy int64) (*models.Book, error) {
	book := &models.Book{
		Title:       in.Title,
		Author:      in.Author,
		ISBN:        in.ISBN,
		CoverImage:  in.CoverImage,
		Description: in.Description,
		Genres:      in.Genres,
		AddedBy:     addedBy,
	}
	if in.PublishedDate != "" {
		t, err := time.Parse("2006-01-02", in.PublishedDate)
		if err != nil {
			return nil, err
		}
		book.PublishedDate = &t
	}
	return book, nil
}

// ==========================
// Create Book
// ==========================
// POST /api/books (authenticated)
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	var input bookInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, bookMessage(err), http.StatusBadRequest)
		return
	}

	book, err := input.toModel(user.ID)
	if err != nil {
		JSONError(w, "Published date must be in YYYY-MM-DD format", http.StatusBadRequest)
		return
	}

	created, err := h.Books.Create(r.Context(), book)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			JSONError(w, "Book already exists", http.StatusBadRequest)
			return
		}
		slog.Error("create book failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, created)
}

// ==========================
// List Books
// ==========================
// GET /api/books?limit=&offset=&search=
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 10
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	// Plain substring filter on title/author. No relevance ranking.
	search := r.URL.Query().Get("search")

	books, err := h.Books.List(r.Context(), limit, offset, search)
	if err != nil {
		slog.Error("list books failed", "error", err)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if books == nil {
		books = []models.Book{}
	}

	JSONData(w, http.StatusOK, books)
}

// ==========================
// Get Book By ID
// ==========================
// GET /api/books/{id}
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	book, err := h.Books.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Book not found", http.StatusNotFound)
			return
		}
		slog.Error("get book failed", "error", err, "book_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, book)
}

// ==========================
// Update Book
// ==========================
// PUT /api/books/{id} (authenticated, contributor only)
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	existing, err := h.Books.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Book not found", http.StatusNotFound)
			return
		}
		slog.Error("get book failed", "error", err, "book_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if existing.AddedBy != user.ID {
		JSONError(w, "Not allowed to modify this book", http.StatusForbidden)
		return
	}

	var input bookInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, bookMessage(err), http.StatusBadRequest)
		return
	}

	book, err := input.toModel(existing.AddedBy)
	if err != nil {
		JSONError(w, "Published date must be in YYYY-MM-DD format", http.StatusBadRequest)
		return
	}
	book.ID = id
	if book.CoverImage == "" {
		book.CoverImage = existing.CoverImage
	}

	updated, err := h.Books.Update(r.Context(), book)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			JSONError(w, "Book already exists", http.StatusBadRequest)
			return
		}
		slog.Error("update book failed", "error", err, "book_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, updated)
}

// ==========================
// Delete Book
// ==========================
// DELETE /api/books/{id} (authenticated, contributor only)
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	existing, err := h.Books.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Book not found", http.StatusNotFound)
			return
		}
		slog.Error("get book failed", "error", err, "book_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if existing.AddedBy != user.ID {
		JSONError(w, "Not allowed to modify this book", http.StatusForbidden)
		return
	}

	if err := h.Books.Delete(r.Context(), id); err != nil {
		slog.Error("delete book failed", "error", err, "book_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
