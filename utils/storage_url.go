package utils

import (
	"errors"
	"strings"
)

const storageURLPrefix = "https://storage.googleapis.com/"

// IsStorageURL reports whether url points into our storage bucket host, so the
// object behind it can be deleted when a poster is replaced.
func IsStorageURL(url string) bool {
	_, err := ExtractObjectPath(url)
	return err == nil
}

// ExtractObjectPath returns the object path of a public storage URL,
// without the bucket name.
func ExtractObjectPath(url string) (string, error) {
	if !strings.HasPrefix(url, storageURLPrefix) {
		return "", errors.New("invalid URL")
	}

	parts := strings.SplitN(strings.TrimPrefix(url, storageURLPrefix), "/", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid URL format")
	}

	return parts[1], nil
}
