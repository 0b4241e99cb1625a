package auth

import (
	"math/rand"
	"testing"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("mySecretPassword")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "mySecretPassword" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword("mySecretPassword", hash) {
		t.Error("original plaintext should verify")
	}
	if CheckPassword("wrongPassword", hash) {
		t.Error("wrong plaintext should not verify")
	}
}

func TestHashPassword_SaltedPerHash(t *testing.T) {
	h1, err := HashPassword("samePassword")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	h2, err := HashPassword("samePassword")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
	if !CheckPassword("samePassword", h1) || !CheckPassword("samePassword", h2) {
		t.Error("both hashes should verify the original password")
	}
}

// Property check over random strings: only the original plaintext matches.
func TestCheckPassword_RandomMismatches(t *testing.T) {
	const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#"
	rng := rand.New(rand.NewSource(42))
	randString := func(n int) string {
		b := make([]byte, n)
		for i := range b {
			b[i] = letters[rng.Intn(len(letters))]
		}
		return string(b)
	}

	original := randString(12)
	hash, err := HashPassword(original)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	for i := 0; i < 20; i++ {
		candidate := randString(2 + rng.Intn(20))
		if candidate == original {
			continue
		}
		if CheckPassword(candidate, hash) {
			t.Errorf("candidate %q verified against hash of %q", candidate, original)
		}
	}
	if !CheckPassword(original, hash) {
		t.Error("original should still verify")
	}
}
