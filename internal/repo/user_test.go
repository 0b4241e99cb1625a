package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

func TestUserRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users \(username, email, password_hash\)`).
		WithArgs("alice", "alice@example.com", "$2a$10$hash").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "profile_image", "bio", "created_at"}).
			AddRow(1, "alice", "alice@example.com", "default-profile.jpg", "", time.Now()))

	repo := NewUserRepo(db)
	user, err := repo.Create(context.Background(), "alice", "alice@example.com", "$2a$10$hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != 1 || user.Username != "alice" || user.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if user.PasswordHash != "" {
		t.Error("Create must not return the password hash")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, email, profile_image, bio, created_at`).
		WithArgs(int64(999)).
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(db)
	_, err = repo.GetByID(context.Background(), 999)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByEmailWithPassword(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, email, password_hash, profile_image, bio, created_at`).
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "username", "email", "password_hash", "profile_image", "bio", "created_at"}).
			AddRow(2, "bob", "bob@example.com", "$2a$10$hash", "default-profile.jpg", "", time.Now()))

	repo := NewUserRepo(db)
	user, err := repo.GetByEmailWithPassword(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("GetByEmailWithPassword: %v", err)
	}
	if user.PasswordHash != "$2a$10$hash" {
		t.Error("login lookup must load the password hash")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_ExistsByUsernameOrEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("carol", "carol@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	repo := NewUserRepo(db)
	exists, err := repo.ExistsByUsernameOrEmail(context.Background(), "carol", "carol@example.com")
	if err != nil {
		t.Fatalf("ExistsByUsernameOrEmail: %v", err)
	}
	if !exists {
		t.Error("expected exists=true")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_UpdatePasswordHash_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs("$2a$10$newhash", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepo(db)
	err = repo.UpdatePasswordHash(context.Background(), 42, "$2a$10$newhash")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for missing user, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("23505 should be a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("23503 is a foreign key violation, not unique")
	}
	if IsUniqueViolation(errors.New("boom")) {
		t.Error("plain errors are not unique violations")
	}
	if IsUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
}
