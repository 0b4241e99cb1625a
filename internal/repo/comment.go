package repo

import (
	"context"
	"database/sql"

	"github.com/bookshelf-app/bookshelf/internal/models"
)

// ==========================
// CommentRepo
// ==========================
type CommentRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewCommentRepo(db *sql.DB) *CommentRepo {
	return &CommentRepo{DB: db}
}

// ==========================
// Create Comment
// ==========================
func (r *CommentRepo) Create(ctx context.Context, text string, authorID, reviewID int64) (*models.Comment, error) {
	query := `
		INSERT INTO comments (text, author, review)
		VALUES ($1, $2, $3)
		RETURNING id, text, author, review, created_at
	`

	comment := &models.Comment{}

	err := r.DB.QueryRowContext(ctx, query, text, authorID, reviewID).
		Scan(&comment.ID, &comment.Text, &comment.Author, &comment.Review, &comment.CreatedAt)

	if err != nil {
		return nil, err
	}

	return comment, nil
}

// ==========================
// Get By ID
// ==========================
func (r *CommentRepo) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	query := `
		SELECT id, text, author, review, created_at
		FROM comments
		WHERE id = $1
	`

	comment := &models.Comment{}

	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&comment.ID, &comment.Text, &comment.Author, &comment.Review, &comment.CreatedAt)

	if err != nil {
		return nil, err
	}

	return comment, nil
}

// ==========================
// List By Review
// ==========================
func (r *CommentRepo) ListByReview(ctx context.Context, reviewID int64, limit, offset int) ([]models.Comment, error) {
	query := `
		SELECT id, text, author, review, created_at
		FROM comments
		WHERE review = $1
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	rows, err := r.DB.QueryContext(ctx, query, reviewID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.Author, &c.Review, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}

	return comments, rows.Err()
}

// ==========================
// Delete Comment
// ==========================
func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
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
