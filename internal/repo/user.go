package repo

import (
	"context"
	"database/sql"

	"github.com/bookshelf-app/bookshelf/internal/models"
	"github.com/lib/pq"
)

// IsUniqueViolation reports whether err is a postgres unique-constraint
// violation (23505). Registration relies on this to tell a duplicate race
// apart from other storage errors.
func IsUniqueViolation(err error) bool {
	if e, ok := err.(*pq.Error); ok {
		return e.Code == "23505"
	}
	return false
}

// ==========================
// UserRepo
// ==========================
type UserRepo struct {
	DB *sql.DB
}

// ==========================
// Constructor
// ==========================
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// ==========================
// Create User
// ==========================
// Create persists a user with an already-hashed password. Callers hash the
// plaintext first; this layer never sees or stores a plaintext password.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, username, email, profile_image, bio, created_at
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, username, email, passwordHash).
		Scan(&user.ID, &user.Username, &user.Email, &user.ProfileImage, &user.Bio, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By ID (no password hash)
// ==========================
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, email, profile_image, bio, created_at
		FROM users
		WHERE id = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.ProfileImage, &user.Bio, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Get By Email (with password hash, login only)
// ==========================
// GetByEmailWithPassword is the one lookup that loads password_hash, mirroring
// the login path which must compare credentials. Every other query leaves the
// hash out of the selection set.
func (r *UserRepo) GetByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, profile_image, bio, created_at
		FROM users
		WHERE email = $1
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, email).
		Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.ProfileImage, &user.Bio, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Exists By Username Or Email
// ==========================
// ExistsByUsernameOrEmail backs the register pre-check. It is not atomic with
// the insert; the unique indexes are the real duplicate defense.
func (r *UserRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE username = $1 OR email = $2
		)
	`

	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, username, email).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// ==========================
// Update Profile
// ==========================
func (r *UserRepo) UpdateProfile(ctx context.Context, id int64, bio, profileImage string) (*models.User, error) {
	query := `
		UPDATE users
		SET bio = $1, profile_image = $2
		WHERE id = $3
		RETURNING id, username, email, profile_image, bio, created_at
	`

	user := &models.User{}

	err := r.DB.QueryRowContext(ctx, query, bio, profileImage, id).
		Scan(&user.ID, &user.Username, &user.Email, &user.ProfileImage, &user.Bio, &user.CreatedAt)

	if err != nil {
		return nil, err
	}

	return user, nil
}

// ==========================
// Update Password Hash
// ==========================
func (r *UserRepo) UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`, passwordHash, id)
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
