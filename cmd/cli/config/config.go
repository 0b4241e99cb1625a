package config

import (
	"os"
	"path/filepath"
)

const defaultAPIURL = "http://localhost:8080"

const tokenFileName = ".bookshelf_token"

// APIURL returns the base URL for the BookShelf API.
// It can be overridden with the BOOKSHELF_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("BOOKSHELF_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// ==========================
// Token Storage
// ==========================
// The bearer token from login is kept in a file in the home directory so
// later commands can authenticate without prompting again.

func SaveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

func LoadToken() (string, error) {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func ClearToken() error {
	if _, err := os.Stat(tokenPath()); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(tokenPath())
}

func tokenPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}
