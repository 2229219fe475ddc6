package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds node ids, area types, and screen names.
const maxIDLength = 128

// ValidateID validates a layout node id (Area or Row).
//
// Ids come from persisted blobs and HTTP requests, so the rules are
// conservative:
//   - No empty ids
//   - No control characters or whitespace
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "node id cannot be empty")
	}
	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "node id too long (max %d characters)", maxIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidID, "node id contains invalid characters: %q", id)
		}
	}
	return nil
}

// areaTypeRegex matches registry type tags such as "text", "palette" or "code-editor".
var areaTypeRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._-]*$`)

// ValidateAreaType validates an area content type tag.
func ValidateAreaType(t string) error {
	if t == "" {
		return New(ErrCodeInvalidInput, "area type cannot be empty")
	}
	if len(t) > maxIDLength {
		return New(ErrCodeInvalidInput, "area type too long (max %d characters)", maxIDLength)
	}
	if !areaTypeRegex.MatchString(t) {
		return New(ErrCodeInvalidInput, "invalid area type: %q", t)
	}
	return nil
}

// screenNameRegex matches screen names usable as storage keys and URL segments.
var screenNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateScreenName validates a screen name. Screen names become storage
// keys and file names, so path traversal sequences are rejected.
func ValidateScreenName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "screen name cannot be empty")
	}
	if len(name) > maxIDLength {
		return New(ErrCodeInvalidInput, "screen name too long (max %d characters)", maxIDLength)
	}
	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidInput, "screen name cannot contain path traversal sequences (..)")
	}
	if !screenNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid screen name: %q", name)
	}
	return nil
}
