package desk

import (
	"regexp"
	"strconv"
)

var badgeSuffix = regexp.MustCompile(` \(\d+\)$`)

// WithBadge returns title with its unread suffix set to " (count)". A count
// of zero or less removes the suffix.
func WithBadge(title string, count int) string {
	base := StripBadge(title)
	if count <= 0 {
		return base
	}
	return base + " (" + strconv.Itoa(count) + ")"
}

// StripBadge removes a trailing " (<digits>)" suffix.
func StripBadge(title string) string {
	return badgeSuffix.ReplaceAllString(title, "")
}

// PlaceholderTitle labels a tab whose account has not reported its identity.
func PlaceholderTitle(platform string) string {
	return "New " + platform + " account"
}
