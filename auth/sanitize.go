package auth

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// SanitizeString strips HTML and trims whitespace from user-supplied text
// (usernames, display names, chat bodies).
func SanitizeString(input string) string {
	cleaned := policy.Sanitize(input)
	return strings.TrimSpace(cleaned)
}
