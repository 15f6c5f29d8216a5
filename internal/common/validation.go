package common

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)
	objectIDRegex = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
)

// ValidateUpload checks a staged file against the allow-list for kind.
// Only the declared MIME type and the filename extension are looked at.
func ValidateUpload(kind MediaKind, originalName, contentType string, size, maxBytes int64) error {
	if !kind.IsValid() {
		return fmt.Errorf("%w: unknown media kind %q", ErrValidation, kind)
	}
	if !kind.AllowsExtension(originalName) {
		return fmt.Errorf("%w: %s files with extension %q are not allowed", ErrValidation, kind, filepath.Ext(originalName))
	}
	if !kind.AllowsMIME(contentType) {
		return fmt.Errorf("%w: content type %q is not an allowed %s type", ErrValidation, contentType, kind)
	}
	if size <= 0 {
		return fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if size > maxBytes {
		return fmt.Errorf("%w: file exceeds the %d byte limit for %s", ErrValidation, maxBytes, kind)
	}
	return nil
}

func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < 2 || n > 50 {
		return fmt.Errorf("%w: username must be between 2 and 50 characters", ErrValidation)
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: username contains control characters", ErrValidation)
		}
	}
	return nil
}

func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrValidation)
	}

	return nil
}

func IsObjectIDHex(s string) bool {
	return objectIDRegex.MatchString(s)
}
