package accounts

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const (
	tokenBytes             = 32
	temporaryPasswordChars = 12
)

// newToken returns 32 random bytes as unpadded URL-safe base64.
func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func newTemporaryPassword() (string, error) {
	token, err := newToken()
	if err != nil {
		return "", err
	}
	return token[:temporaryPasswordChars], nil
}
