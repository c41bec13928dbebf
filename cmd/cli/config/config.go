package config

import (
	"os"
	"path/filepath"
)

const defaultAPIURL = "http://localhost:8000"

const tokenFileName = ".img2md_token"

// APIURL returns the base URL for the img2md API.
// It can be overridden with the IMG2MD_API_URL environment variable.
func APIURL() string {
	if v := os.Getenv("IMG2MD_API_URL"); v != "" {
		return v
	}
	return defaultAPIURL
}

// ==========================
// Token Storage Helpers
// ==========================

// SaveToken writes the JWT token to the user's home directory.
func SaveToken(token string) error {
	return os.WriteFile(tokenPath(), []byte(token), 0600)
}

// LoadToken reads the locally saved JWT token.
func LoadToken() (string, error) {
	data, err := os.ReadFile(tokenPath())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RemoveToken deletes the locally saved JWT token. It is not an error
// if no token is stored.
func RemoveToken() error {
	err := os.Remove(tokenPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func tokenPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, tokenFileName)
}
