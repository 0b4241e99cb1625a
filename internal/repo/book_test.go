package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bookshelf-app/bookshelf/internal/models"
	"github.com/lib/pq"
)

func bookRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "author", "isbn", "cover_image", "description",
		"published_date", "genres", "added_by", "average_rating", "total_reviews", "created_at",
	})
}

func TestBookRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO books`).
		WithArgs("Dune", "Frank Herbert", "9780441013593", "default-coverImage.jpg",
			"A desert planet.", nil, pq.Array([]string{"sci-fi"}), int64(1)).
		WillReturnRows(bookRows().AddRow(
			1, "Dune", "Frank Herbert", "9780441013593", "default-coverImage.jpg",
			"A desert planet.", nil, "{sci-fi}", 1, 0, 0, time.Now()))

	repo := NewBookRepo(db)
	book, err := repo.Create(context.Background(), &models.Book{
		Title:       "Dune",
		Author:      "Frank Herbert",
		ISBN:        "9780441013593",
		Description: "A desert planet.",
		Genres:      []string{"sci-fi"},
		AddedBy:     1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if book.ID != 1 || book.Title != "Dune" || book.AddedBy != 1 {
		t.Errorf("unexpected book: %+v", book)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBookRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM books WHERE id`).
		WithArgs(int64(404)).
		WillReturnError(sql.ErrNoRows)

	repo := NewBookRepo(db)
	_, err = repo.GetByID(context.Background(), 404)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBookRepo_List_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM books\s+WHERE title ILIKE`).
		WithArgs("dune", 10, 0).
		WillReturnRows(bookRows().AddRow(
			1, "Dune", "Frank Herbert", "", "default-coverImage.jpg",
			"", nil, "{}", 1, 4.5, 2, time.Now()))

	repo := NewBookRepo(db)
	books, err := repo.List(context.Background(), 10, 0, "dune")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Dune" {
		t.Errorf("unexpected books: %+v", books)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBookRepo_Delete_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`DELETE FROM books WHERE id`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewBookRepo(db)
	if err := repo.Delete(context.Background(), 5); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestBookRepo_RefreshRatings(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`UPDATE books b\s+SET average_rating`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE books\s+SET average_rating = 0`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewBookRepo(db)
	updated, err := repo.RefreshRatings(context.Background())
	if err != nil {
		t.Fatalf("RefreshRatings: %v", err)
	}
	if updated != 4 {
		t.Errorf("updated: got %d, want 4", updated)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
