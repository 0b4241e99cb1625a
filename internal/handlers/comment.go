package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bookshelf-app/bookshelf/internal/middleware"
	"github.com/bookshelf-app/bookshelf/internal/models"
	"github.com/bookshelf-app/bookshelf/internal/repo"
	"github.com/go-playground/validator/v10"
)

// ==========================
// Comment Handler
// ==========================
type CommentHandler struct {
	Comments *repo.CommentRepo
	Reviews  *repo.ReviewRepo
}

type commentInput struct {
	Text string `json:"text" validate:"required,max=200"`
}

func commentMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	if verrs[0].Tag() == "required" {
		return "A comment requires text"
	}
	return "Comment must be at most 200 characters long"
}

// ==========================
// Create Comment
// ==========================
// POST /api/reviews/{id}/comments (authenticated)
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	reviewID, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid review id", http.StatusBadRequest)
		return
	}

	if _, err := h.Reviews.GetByID(r.Context(), reviewID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Review not found", http.StatusNotFound)
			return
		}
		slog.Error("get review failed", "error", err, "review_id", reviewID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	var input commentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, commentMessage(err), http.StatusBadRequest)
		return
	}

	comment, err := h.Comments.Create(r.Context(), input.Text, user.ID, reviewID)
	if err != nil {
		slog.Error("create comment failed", "error", err, "review_id", reviewID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, comment)
}

// ==========================
// List Comments By Review
// ==========================
// GET /api/reviews/{id}/comments
func (h *CommentHandler) ListByReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid review id", http.StatusBadRequest)
		return
	}

	limit := 20
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

	comments, err := h.Comments.ListByReview(r.Context(), reviewID, limit, offset)
	if err != nil {
		slog.Error("list comments failed", "error", err, "review_id", reviewID)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	JSONData(w, http.StatusOK, comments)
}

// ==========================
// Delete Comment
// ==========================
// DELETE /api/comments/{id} (authenticated, author only)
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		JSONError(w, "Not authorized to access this route", http.StatusUnauthorized)
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		JSONError(w, "Invalid comment id", http.StatusBadRequest)
		return
	}

	comment, err := h.Comments.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			JSONError(w, "Comment not found", http.StatusNotFound)
			return
		}
		slog.Error("get comment failed", "error", err, "comment_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if comment.Author != user.ID {
		JSONError(w, "Not allowed to modify this comment", http.StatusForbidden)
		return
	}

	if err := h.Comments.Delete(r.Context(), id); err != nil {
		slog.Error("delete comment failed", "error", err, "comment_id", id)
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	JSONData(w, http.StatusOK, map[string]interface{}{"deleted": true})
}
