package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bookshelf-app/bookshelf/internal/middleware"
	"github.com/bookshelf-app/bookshelf/internal/models"
	"github.com/bookshelf-app/bookshelf/internal/repo"
	"github.com/go-chi/chi/v5"
)

func commentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "text", "author", "review", "created_at"})
}

func commentRouter(db *sql.DB) chi.Router {
	h := &CommentHandler{Comments: repo.NewCommentRepo(db), Reviews: repo.NewReviewRepo(db)}
	r := chi.NewRouter()
	r.Post("/api/reviews/{id}/comments", h.Create)
	r.Get("/api/reviews/{id}/comments", h.ListByReview)
	r.Delete("/api/comments/{id}", h.Delete)
	return r
}

func TestCommentHandler_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM reviews WHERE id`).
		WithArgs(int64(10)).
		WillReturnRows(reviewRows().AddRow(10, 1, 2, 5, "", 0, now, now))
	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs("Great review!", int64(3), int64(10)).
		WillReturnRows(commentRows().AddRow(100, "Great review!", 3, 10, now))

	body, _ := json.Marshal(map[string]string{"text": "Great review!"})
	req := httptest.NewRequest("POST", "/api/reviews/10/comments", bytes.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 3}))
	rr := httptest.NewRecorder()
	commentRouter(db).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Success bool           `json:"success"`
		Data    models.Comment `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !out.Success || out.Data.Text != "Great review!" || out.Data.Author != 3 {
		t.Errorf("unexpected response: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCommentHandler_Create_Validation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	cases := []struct {
		payload map[string]string
		message string
	}{
		{map[string]string{}, "A comment requires text"},
		{map[string]string{"text": strings.Repeat("x", 201)}, "Comment must be at most 200 characters long"},
	}
	for range cases {
		mock.ExpectQuery(`FROM reviews WHERE id`).
			WithArgs(int64(10)).
			WillReturnRows(reviewRows().AddRow(10, 1, 2, 5, "", 0, now, now))
	}

	for _, tc := range cases {
		body, _ := json.Marshal(tc.payload)
		req := httptest.NewRequest("POST", "/api/reviews/10/comments", bytes.NewReader(body))
		req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 3}))
		rr := httptest.NewRecorder()
		commentRouter(db).ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("payload %v: status got %d, want 400", tc.payload, rr.Code)
		}
		var out struct {
			Message string `json:"message"`
		}
		json.NewDecoder(rr.Body).Decode(&out)
		if out.Message != tc.message {
			t.Errorf("message: got %q, want %q", out.Message, tc.message)
		}
	}
}

func TestCommentHandler_Delete_NotAuthor(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM comments\s+WHERE id`).
		WithArgs(int64(100)).
		WillReturnRows(commentRows().AddRow(100, "mine", 3, 10, time.Now()))

	req := httptest.NewRequest("DELETE", "/api/comments/100", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &models.User{ID: 99}))
	rr := httptest.NewRecorder()
	commentRouter(db).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", rr.Code)
	}
}
