package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateSecureToken returns a hex-encoded token with n bytes of entropy.
func GenerateSecureToken(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateInviteToken generates the token embedded in invitation links.
func GenerateInviteToken() (string, error) {
	return GenerateSecureToken(24)
}

// GenerateResetToken generates a password-reset token.
func GenerateResetToken() (string, error) {
	return GenerateSecureToken(16)
}
