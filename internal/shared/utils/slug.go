package utils

import (
	"regexp"
	"strings"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
)

// GenerateSlug turns a title into a URL-safe identifier:
// "Hello, World!" -> "hello-world". Uniqueness is the caller's problem;
// the review service probes the slug index and falls back to a random
// token on collision.
func GenerateSlug(title string) string {
	lower := strings.ToLower(strings.TrimSpace(title))

	// Every run of non-alphanumeric characters collapses to one hyphen.
	hyphenated := nonAlnum.ReplaceAllString(lower, "-")

	return strings.Trim(hyphenated, "-")
}
