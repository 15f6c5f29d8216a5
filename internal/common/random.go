package common

import (
	"crypto/rand"
	"encoding/hex"
	"path/filepath"
	"strings"
)

// GenerateStoredName returns 16 random bytes rendered as hex, keeping the
// lowercased extension of originalName.
func GenerateStoredName(originalName string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf) + strings.ToLower(filepath.Ext(originalName)), nil
}
