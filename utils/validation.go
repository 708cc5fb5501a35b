package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AllowedImageContentTypes is the set of allowed content types for poster uploads.
var AllowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// MaxImageSize is the maximum allowed poster size (5MB).
const MaxImageSize = 5 << 20

// AllowedCSVContentTypes lists what browsers and curl send for a .csv file.
var AllowedCSVContentTypes = map[string]bool{
	"":                         true,
	"text/csv":                 true,
	"text/plain":               true,
	"application/csv":          true,
	"application/vnd.ms-excel": true,
	"application/octet-stream": true,
}

// ValidateImageUpload checks that the uploaded file has a valid image content type
// and does not exceed the maximum file size.
func ValidateImageUpload(fh *multipart.FileHeader) error {
	if fh.Size > MaxImageSize {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of 5MB", fh.Size)
	}

	contentType := fh.Header.Get("Content-Type")
	if !AllowedImageContentTypes[contentType] {
		return fmt.Errorf("invalid file type '%s'; allowed types: image/jpeg, image/png, image/webp", contentType)
	}

	return nil
}

// ValidateCSVUpload checks a catalog upload by extension, content type and size.
func ValidateCSVUpload(fh *multipart.FileHeader, maxBytes int64) error {
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".csv") {
		return fmt.Errorf("invalid file '%s'; only .csv files are accepted", fh.Filename)
	}
	if fh.Size == 0 {
		return fmt.Errorf("file '%s' is empty", fh.Filename)
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return fmt.Errorf("file size %d bytes exceeds maximum allowed size of %d bytes", fh.Size, maxBytes)
	}

	contentType := strings.TrimSpace(strings.Split(fh.Header.Get("Content-Type"), ";")[0])
	if !AllowedCSVContentTypes[strings.ToLower(contentType)] {
		return fmt.Errorf("invalid content type '%s' for a csv upload", contentType)
	}
	return nil
}

// SanitizeValidationError takes a validator error and returns a user-friendly message
// without leaking internal Go struct names.
func SanitizeValidationError(err error) string {
	if err == nil {
		return ""
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return "Invalid request body"
	}

	var messages []string
	for _, fe := range validationErrors {
		field := toSnake(fe.Field())
		switch fe.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", field))
		case "email":
			messages = append(messages, fmt.Sprintf("%s must be a valid email address", field))
		case "min":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", field, fe.Param()))
		case "max":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", field, fe.Param()))
		case "gt":
			messages = append(messages, fmt.Sprintf("%s must be greater than %s", field, fe.Param()))
		case "url":
			messages = append(messages, fmt.Sprintf("%s must be a valid URL", field))
		case "datetime":
			messages = append(messages, fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", field))
		}
	}

	if len(messages) == 0 {
		return "Invalid request body"
	}

	return strings.Join(messages, "; ")
}

// toSnake turns a Go field name such as ReleaseDate or TmdbID into release_date or tmdb_id.
func toSnake(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		upper := r >= 'A' && r <= 'Z'
		if upper && i > 0 {
			prevLower := runes[i-1] >= 'a' && runes[i-1] <= 'z'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			// plural acronym: IDs
			if nextLower && runes[i+1] == 's' && i+2 == len(runes) {
				nextLower = false
			}
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		if upper {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
