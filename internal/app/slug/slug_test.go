package slug

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestValidateSlug(t *testing.T) {
	valid := []string{"abc", "abc-123", "a1b2c3d", strings.Repeat("a", 32)}
	for _, s := range valid {
		if err := ValidateSlug(s); err != nil {
			t.Errorf("ValidateSlug(%q) = %v, want nil", s, err)
		}
	}

	invalid := []string{
		"",
		"ab",
		"ABC",
		"abc_def",
		"abc def",
		"slügs",
		strings.Repeat("a", 33),
	}
	for _, s := range invalid {
		err := ValidateSlug(s)
		if err == nil {
			t.Errorf("ValidateSlug(%q) = nil, want error", s)
			continue
		}
		if !errors.Is(err, ErrInvalidSlug) {
			t.Errorf("ValidateSlug(%q) = %v, want ErrInvalidSlug", s, err)
		}
	}
}

func TestValidateURL(t *testing.T) {
	valid := []string{
		"http://example.com",
		"https://example.com/path?q=1",
	}
	for _, s := range valid {
		if err := ValidateURL(s); err != nil {
			t.Errorf("ValidateURL(%q) = %v, want nil", s, err)
		}
	}

	invalid := []string{
		"",
		"example.com",
		"ftp://example.com",
		"javascript:alert(1)",
		"//example.com",
	}
	for _, s := range invalid {
		err := ValidateURL(s)
		if err == nil {
			t.Errorf("ValidateURL(%q) = nil, want error", s)
			continue
		}
		if !errors.Is(err, ErrInvalidURL) {
			t.Errorf("ValidateURL(%q) = %v, want ErrInvalidURL", s, err)
		}
	}
}

func TestGenerateShape(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z0-9]{7}$`)
	for i := 0; i < 100; i++ {
		s, err := Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if !pattern.MatchString(s) {
			t.Fatalf("Generate() = %q, want match for %s", s, pattern)
		}
		if err := ValidateSlug(s); err != nil {
			t.Fatalf("generated slug %q failed validation: %v", s, err)
		}
	}
}

func TestGenerateUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		s, err := Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if _, dup := seen[s]; dup {
			t.Fatalf("duplicate slug %q after %d samples", s, i)
		}
		seen[s] = struct{}{}
	}
}
