package repo

import (
	"context"
	"database/sql"

	"github.com/bookshelf-app/bookshelf/internal/models"
	"github.com/lib/pq"
)

// ==========================
// BookRepo
// ==========================
type BookRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewBookRepo(db *sql.DB) *BookRepo {
	return &BookRepo{DB: db}
}

const bookColumns = `id, title, author, COALESCE(isbn, ''), cover_image, description,
	published_date, genres, added_by, average_rating, total_reviews, created_at`

func scanBook(row interface{ Scan(...interface{}) error }) (*models.Book, error) {
	book := &models.Book{}
	err := row.Scan(
		&book.ID, &book.Title, &book.Author, &book.ISBN, &book.CoverImage,
		&book.Description, &book.PublishedDate, pq.Array(&book.Genres),
		&book.AddedBy, &book.AverageRating, &book.TotalReviews, &book.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ==========================
// Create Book
// ==========================
func (r *BookRepo) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	query := `
		INSERT INTO books (title, author, isbn, cover_image, description, published_date, genres, added_by)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8)
		RETURNING ` + bookColumns

	coverImage := b.CoverImage
	if coverImage == "" {
		coverImage = models.DefaultCoverImage
	}
	genres := b.Genres
	if genres == nil {
		genres = []string{}
	}

	row := r.DB.QueryRowContext(ctx, query,
		b.Title, b.Author, b.ISBN, coverImage, b.Description, b.PublishedDate,
		pq.Array(genres), b.AddedBy,
	)

	return scanBook(row)
}

// ==========================
// Get By ID
// ==========================
func (r *BookRepo) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE id = $1`

	return scanBook(r.DB.QueryRowContext(ctx, query, id))
}

// ==========================
// List Books (paginated, optional title/author filter)
// ==========================
func (r *BookRepo) List(ctx context.Context, limit, offset int, search string) ([]models.Book, error) {
	var (
		rows *sql.Rows
		err  error
	)

	if search != "" {
		query := `
			SELECT ` + bookColumns + `
			FROM books
			WHERE title ILIKE '%' || $1 || '%' OR author ILIKE '%' || $1 || '%'
			ORDER BY id
			LIMIT $2 OFFSET $3
		`
		rows, err = r.DB.QueryContext(ctx, query, search, limit, offset)
	} else {
		query := `SELECT ` + bookColumns + ` FROM books ORDER BY id LIMIT $1 OFFSET $2`
		rows, err = r.DB.QueryContext(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []models.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *book)
	}

	return books, rows.Err()
}

// ==========================
// Count Books
// ==========================
func (r *BookRepo) Count(ctx context.Context) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM books`).Scan(&total)
	return total, err
}

// ==========================
// Update Book
// ==========================
func (r *BookRepo) Update(ctx context.Context, b *models.Book) (*models.Book, error) {
	query := `
		UPDATE books
		SET title = $1, author = $2, isbn = NULLIF($3, ''), cover_image = $4,
			description = $5, published_date = $6, genres = $7
		WHERE id = $8
		RETURNING ` + bookColumns

	genres := b.Genres
	if genres == nil {
		genres = []string{}
	}

	row := r.DB.QueryRowContext(ctx, query,
		b.Title, b.Author, b.ISBN, b.CoverImage, b.Description, b.PublishedDate,
		pq.Array(genres), b.ID,
	)

	return scanBook(row)
}

// ==========================
// Delete Book
// ==========================
func (r *BookRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ==========================
// Refresh Rating Rollups
// ==========================
// RefreshRatings recomputes average_rating and total_reviews for every book
// from the reviews table. The per-review transactions keep these columns
// current; this bulk pass repairs any drift and backs the scheduled job.
func (r *BookRepo) RefreshRatings(ctx context.Context) (int64, error) {
	query := `
		UPDATE books b
		SET average_rating = COALESCE(sub.avg_rating, 0),
			total_reviews = COALESCE(sub.review_count, 0)
		FROM (
			SELECT book, AVG(rating) AS avg_rating, COUNT(*) AS review_count
			FROM reviews
			GROUP BY book
		) sub
		WHERE b.id = sub.book
			AND (b.average_rating <> COALESCE(sub.avg_rating, 0)
				OR b.total_reviews <> COALESCE(sub.review_count, 0))
	`

	result, err := r.DB.ExecContext(ctx, query)
	if err != nil {
		return 0, err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	// Books whose last review disappeared have no row in the grouped subquery.
	zeroQuery := `
		UPDATE books
		SET average_rating = 0, total_reviews = 0
		WHERE id NOT IN (SELECT DISTINCT book FROM reviews)
			AND (average_rating <> 0 OR total_reviews <> 0)
	`
	result, err = r.DB.ExecContext(ctx, zeroQuery)
	if err != nil {
		return updated, err
	}
	zeroed, err := result.RowsAffected()
	if err != nil {
		return updated, err
	}

	return updated + zeroed, nil
}
