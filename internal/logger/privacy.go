package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
)

var hashSalt string

// InitHashSalt loads the log hash salt from the environment.
// Set LOG_HASH_SALT in production.
func InitHashSalt() {
	hashSalt = os.Getenv("LOG_HASH_SALT")
	if hashSalt == "" {
		hashSalt = "default-salt-change-in-production"
	}
}

// InitHashSaltForTesting sets a fixed salt for deterministic tests.
func InitHashSaltForTesting(salt string) {
	hashSalt = salt
}

// HashChatID creates a privacy-preserving hash of a Telegram chat ID so user
// actions can be correlated in logs without exposing the raw identifier.
func HashChatID(chatID int64) string {
	if hashSalt == "" {
		InitHashSalt()
	}
	data := fmt.Sprintf("%d:%s", chatID, hashSalt)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:8]
}

// SanitizeText redacts user-provided text while preserving length information
// for debugging.
func SanitizeText(text string) string {
	if text == "" {
		return "<empty>"
	}
	if len(text) <= 10 {
		return fmt.Sprintf("<%d chars>", len(text))
	}
	return fmt.Sprintf("%s...<%d chars>", text[:3], len(text))
}
