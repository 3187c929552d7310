package utils

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"regexp"

	"github.com/google/uuid"
)

// GenerateSecureToken returns a random URL-safe token of exactly length characters.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("token length must be positive")
	}
	// base64 yields 4 characters per 3 bytes
	b := make([]byte, (length*3+3)/4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b)[:length], nil
}

// NewFileID returns an unguessable identifier for a stored upload.
func NewFileID() string {
	return uuid.NewString()
}

var fileIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,128}$`)

// IsValidFileID reports whether a client-chosen upload id is safe to use as a storage key.
func IsValidFileID(id string) bool {
	return fileIDPattern.MatchString(id)
}
