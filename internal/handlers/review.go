package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bookshelf-app/bookshelf/internal/metrics"
	"github.com/bookshelf-app/bookshelf/internal/middleware"
	"github.com/bookshelf-app/bookshelf/internal/models"
	"github.com/bookshelf-app/bookshelf/internal/repo"
	"github.com/go-playground/validator/v10"
)

// ==========================
// Review Handler
// ==========================
type ReviewHandler struct {
	Reviews *repo.ReviewRepo
	Books   *repo.BookRepo
}

type reviewInput struct {
	Rating int    `json:"rating" validate:"required,min=1,max=5"`
	Review string `json:"review" validate:"max=500"`
}

func reviewMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Rating":
		if fe.Tag() == "required" {
			return "Please provide a rating"
		}
		return "Rating must be between 1 and 5"
	case "Review":
		return "Review must be at most 500 characters long"
	}
	return "Invalid request body"
}

// ==========================
// Create Review
// ==========================
// POST /api/books/{id}/reviews (authenticated)
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	bookID, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid book id", http.StatusBadRequest)
		return
	}

	if _, err := h.Books.GetByID(r.Context(), bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Book not found", http.StatusNotFound)
			return
		}
		slog.Error("get book failed", "error", err, "book_id", bookID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	var input reviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, reviewMessage(err), http.StatusBadRequest)
		return
	}

	review, err := h.Reviews.Create(r.Context(), user.ID, bookID, input.Rating, input.Review)
	if err != nil {
		if repo.IsUniqueViolation(err) {
			JSONError(w, "You have already reviewed this book", http.StatusBadRequest)
			return
		}
		slog.Error("create review failed", "error", err, "book_id", bookID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.ReviewsCreated.Inc()

	JSONData(w, http.StatusOK, review)
}

// ==========================
// List Reviews By Book
// ==========================
// GET /api/books/{id}/reviews
func (h *ReviewHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	bookID, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid book id", http.StatusBadRequest)
		return
	}

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

	reviews, err := h.Reviews.ListByBook(r.Context(), bookID, limit, offset)
	if err != nil {
		slog.Error("list reviews failed", "error", err, "book_id", bookID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	JSONData(w, http.StatusOK, reviews)
}

// ==========================
// Get Review By ID
// ==========================
// GET /api/reviews/{id}
func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid review id", http.StatusBadRequest)
		return
	}

	review, err := h.Reviews.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Review not found", http.StatusNotFound)
			return
		}
		slog.Error("get review failed", "error", err, "review_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, review)
}

// loadOwnReview fetches the review and checks the requester is its author.
// Writes the error response and returns nil when the caller should stop.
func (h *ReviewHandler) loadOwnReview(w http.ResponseWriter, r *http.Request) *models.Review {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return nil
	}

	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid review id", http.StatusBadRequest)
		return nil
	}

	review, err := h.Reviews.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Review not found", http.StatusNotFound)
			return nil
		}
		slog.Error("get review failed", "error", err, "review_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return nil
	}
	if review.Author != user.ID {
		JSONError(w, "Not allowed to modify this review", http.StatusForbidden)
		return nil
	}

	return review
}

// ==========================
// Update Review
// ==========================
// PUT /api/reviews/{id} (authenticated, author only)
func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	review := h.loadOwnReview(w, r)
	if review == nil {
		return
	}

	var input reviewInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, reviewMessage(err), http.StatusBadRequest)
		return
	}

	updated, err := h.Reviews.Update(r.Context(), review.ID, input.Rating, input.Review)
	if err != nil {
		slog.Error("update review failed", "error", err, "review_id", review.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, updated)
}

// ==========================
// Delete Review
// ==========================
// DELETE /api/reviews/{id} (authenticated, author only)
func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	review := h.loadOwnReview(w, r)
	if review == nil {
		return
	}

	if err := h.Reviews.Delete(r.Context(), review.ID); err != nil {
		slog.Error("delete review failed", "error", err, "review_id", review.ID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

// ==========================
// Like / Unlike Review
// ==========================
// POST /api/reviews/{id}/like, DELETE /api/reviews/{id}/like (authenticated)
func (h *ReviewHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, true)
}

func (h *ReviewHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.setLike(w, r, false)
}

func (h *ReviewHandler) setLike(w http.ResponseWriter, r *http.Request, liked bool) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid review id", http.StatusBadRequest)
		return
	}

	if _, err := h.Reviews.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Review not found", http.StatusNotFound)
			return
		}
		slog.Error("get review failed", "error", err, "review_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	var count int
	if liked {
		count, err = h.Reviews.Like(r.Context(), id, user.ID)
	} else {
		count, err = h.Reviews.Unlike(r.Context(), id, user.ID)
	}
	if err != nil {
		slog.Error("toggle like failed", "error", err, "review_id", id, "liked", liked)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, map[string]interface{}{"likesCount": count})
}
