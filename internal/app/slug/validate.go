package slug

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	// ErrInvalidSlug signals a syntactically unacceptable slug.
	ErrInvalidSlug = errors.New("invalid slug")
	// ErrInvalidURL signals a target that is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")
)

const (
	minSlugLength = 3
	maxSlugLength = 32
)

// ValidateSlug accepts slugs of 3-32 characters drawn from [a-z0-9-].
// The returned error wraps ErrInvalidSlug with a human-readable reason.
func ValidateSlug(s string) error {
	if len(s) < minSlugLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrInvalidSlug, minSlugLength)
	}
	if len(s) > maxSlugLength {
		return fmt.Errorf("%w: must be at most %d characters", ErrInvalidSlug, maxSlugLength)
	}
	for _, c := range s {
		if !isSlugChar(c) {
			return fmt.Errorf("%w: only lowercase letters, digits and hyphens are allowed", ErrInvalidSlug)
		}
	}
	return nil
}

// ValidateURL accepts absolute URLs with an http or https scheme.
func ValidateURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: only http and https schemes are allowed", ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: url must be absolute", ErrInvalidURL)
	}
	return nil
}

func isSlugChar(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-'
}
