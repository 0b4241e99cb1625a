package auth

import "golang.org/x/crypto/bcrypt"

// ==========================
// Password hashing
// ==========================

// HashPassword hashes a plaintext password with bcrypt (random salt, default
// cost). Callers hash exactly once, when they hold a new plaintext: at
// registration and on password change. A stored hash is never re-hashed.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
// A wrong password is a false return, never an error.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
