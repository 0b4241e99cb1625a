package repo

import (
	"context"
	"database/sql"

	"github.com/bookshelf-app/bookshelf/internal/models"
)

// ==========================
// ReviewRepo
// ==========================
type ReviewRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewReviewRepo(db *sql.DB) *ReviewRepo {
	return &ReviewRepo{DB: db}
}

const reviewColumns = `id, author, book, rating, review, likes_count, created_at, updated_at`

func scanReview(row interface{ Scan(...interface{}) error }) (*models.Review, error) {
	rv := &models.Review{}
	err := row.Scan(
		&rv.ID, &rv.Author, &rv.Book, &rv.Rating, &rv.Review,
		&rv.LikesCount, &rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rv, nil
}

// refreshBookRating recomputes the denormalized rating columns for one book.
// Runs inside the same transaction as the review mutation that made them stale.
func refreshBookRating(ctx context.Context, tx *sql.Tx, bookID int64) error {
	query := `
		UPDATE books
		SET average_rating = (SELECT COALESCE(AVG(rating), 0) FROM reviews WHERE book = $1),
			total_reviews = (SELECT COUNT(*) FROM reviews WHERE book = $1)
		WHERE id = $2
	`
	_, err := tx.ExecContext(ctx, query, bookID, bookID)
	return err
}

// ==========================
// Create Review
// ==========================
func (r *ReviewRepo) Create(ctx context.Context, authorID, bookID int64, rating int, text string) (*models.Review, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO reviews (author, book, rating, review)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + reviewColumns

	review, err := scanReview(tx.QueryRowContext(ctx, query, authorID, bookID, rating, text))
	if err != nil {
		return nil, err
	}

	if err := refreshBookRating(ctx, tx, bookID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return review, nil
}

// ==========================
// Get By ID
// ==========================
func (r *ReviewRepo) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	return scanReview(r.DB.QueryRowContext(ctx, query, id))
}

// ==========================
// List By Book
// ==========================
func (r *ReviewRepo) ListByBook(ctx context.Context, bookID int64, limit, offset int) ([]models.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE book = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(ctx, query, bookID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		review, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *review)
	}

	return reviews, rows.Err()
}

// ==========================
// Update Review
// ==========================
func (r *ReviewRepo) Update(ctx context.Context, id int64, rating int, text string) (*models.Review, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	query := `
		UPDATE reviews
		SET rating = $1, review = $2, updated_at = now()
		WHERE id = $3
		RETURNING ` + reviewColumns

	review, err := scanReview(tx.QueryRowContext(ctx, query, rating, text, id))
	if err != nil {
		return nil, err
	}

	if err := refreshBookRating(ctx, tx, review.Book); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return review, nil
}

// ==========================
// Delete Review
// ==========================
func (r *ReviewRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var bookID int64
	err = tx.QueryRowContext(ctx, `DELETE FROM reviews WHERE id = $1 RETURNING book`, id).
		Scan(&bookID)
	if err != nil {
		return err
	}

	if err := refreshBookRating(ctx, tx, bookID); err != nil {
		return err
	}

	return tx.Commit()
}

// ==========================
// Like Review
// ==========================
// Like is idempotent: liking an already-liked review changes nothing.
// Returns the review's current likes count.
func (r *ReviewRepo) Like(ctx context.Context, reviewID, userID int64) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO review_likes (review_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (review_id, user_id) DO NOTHING
	`, reviewID, userID)
	if err != nil {
		return 0, err
	}

	count, err := syncLikesCount(ctx, tx, reviewID)
	if err != nil {
		return 0, err
	}

	return count, tx.Commit()
}

// ==========================
// Unlike Review
// ==========================
// Unlike is idempotent: removing a like that does not exist changes nothing.
func (r *ReviewRepo) Unlike(ctx context.Context, reviewID, userID int64) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM review_likes WHERE review_id = $1 AND user_id = $2`,
		reviewID, userID)
	if err != nil {
		return 0, err
	}

	count, err := syncLikesCount(ctx, tx, reviewID)
	if err != nil {
		return 0, err
	}

	return count, tx.Commit()
}

// syncLikesCount re-derives likes_count from the join table and returns it.
// Errors with sql.ErrNoRows when the review does not exist.
func syncLikesCount(ctx context.Context, tx *sql.Tx, reviewID int64) (int, error) {
	var count int
	err := tx.QueryRowContext(ctx, `
		UPDATE reviews
		SET likes_count = (SELECT COUNT(*) FROM review_likes WHERE review_id = $1)
		WHERE id = $2
		RETURNING likes_count
	`, reviewID, reviewID).Scan(&count)
	return count, err
}
