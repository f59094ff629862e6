package utils

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// FileNameFromURL returns the decoded final path segment of rawURL
func FileNameFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return "", fmt.Errorf("url %q has no file name", rawURL)
	}

	name := path.Base(u.Path)
	if name == "." || name == ".." {
		return "", fmt.Errorf("url %q has no file name", rawURL)
	}

	return name, nil
}

// LastSegment returns the part of s after the final sep, or s itself
// when sep does not occur
func LastSegment(s, sep string) string {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[i+len(sep):]
	}

	return s
}

// ValidFileName reports whether name is a single, plain path element
func ValidFileName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}

	return !strings.ContainsAny(name, `/\`)
}
