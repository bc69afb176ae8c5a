// Package validate provides shared validation functions.
package validate

import (
	"fmt"
	"regexp"
	"strings"
)

var platformIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// PlatformID validates a platform id is a lowercase slug.
func PlatformID(id string) error {
	if id == "" {
		return fmt.Errorf("platform id is required")
	}
	if !platformIDPattern.MatchString(id) {
		return fmt.Errorf("invalid platform id %q: use lowercase letters, digits, '-' or '_'", id)
	}
	return nil
}

// SessionID validates a session id is non-empty after trimming whitespace.
func SessionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("session id is required")
	}
	return nil
}
