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

func userRouter(db *sql.DB) chi.Router {
	h := &UserHandler{Users: repo.NewUserRepo(db)}
	r := chi.NewRouter()
	r.Get("/api/users/{id}", h.GetProfile)
	r.Put("/api/users/me", h.UpdateMe)
	return r
}

func TestUserHandler_GetProfile_HidesEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, email, profile_image, bio, created_at`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "profile_image", "bio", "created_at"}).
			AddRow(1, "alice", "alice@example.com", "default-profile.jpg", "reader", time.Now()))

	req := httptest.NewRequest("GET", "/api/users/1", nil)
	rr := httptest.NewRecorder()
	userRouter(db).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "alice@example.com") {
		t.Error("public profile leaks the email address")
	}
	var out struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Data["username"] != "alice" || out.Data["bio"] != "reader" {
		t.Errorf("unexpected profile: %v", out.Data)
	}
}

func TestUserHandler_GetProfile_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, email, profile_image, bio, created_at`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest("GET", "/api/users/404", nil)
	rr := httptest.NewRecorder()
	userRouter(db).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestUserHandler_UpdateMe(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE users`).
		WithArgs("likes sci-fi", "default-profile.jpg", int64(1)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "profile_image", "bio", "created_at"}).
			AddRow(1, "alice", "alice@example.com", "default-profile.jpg", "likes sci-fi", time.Now()))

	body, _ := json.Marshal(map[string]string{"bio": "likes sci-fi"})
	req := httptest.NewRequest("PUT", "/api/users/me", bytes.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(),
		&models.User{ID: 1, ProfileImage: "default-profile.jpg"}))
	rr := httptest.NewRecorder()
	userRouter(db).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	var out struct {
		Data models.User `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Data.Bio != "likes sci-fi" {
		t.Errorf("bio: got %q", out.Data.Bio)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// Changing the password re-hashes the new plaintext; the profile update alone
// must not touch the stored hash.
func TestUserHandler_UpdateMe_PasswordChange(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`UPDATE users`).
		WithArgs("", "default-profile.jpg", int64(1)).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "profile_image", "bio", "created_at"}).
			AddRow(1, "alice", "alice@example.com", "default-profile.jpg", "", time.Now()))
	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs(sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body, _ := json.Marshal(map[string]string{"password": "newSecret"})
	req := httptest.NewRequest("PUT", "/api/users/me", bytes.NewReader(body))
	req = req.WithContext(middleware.WithUser(req.Context(),
		&models.User{ID: 1, ProfileImage: "default-profile.jpg"}))
	rr := httptest.NewRecorder()
	userRouter(db).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
