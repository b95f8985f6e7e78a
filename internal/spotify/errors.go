package spotify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/zmb3/spotify/v2"
)

// ErrUnauthorized is returned when the catalog rejects the access token.
var ErrUnauthorized = errors.New("catalog rejected access token")

// wrapError adds context to a catalog error and marks token rejections
// with ErrUnauthorized.
func wrapError(err error, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if isUnauthorized(err) {
		return fmt.Errorf("%s: %w: %w", msg, ErrUnauthorized, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isUnauthorized(err error) bool {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized
	}
	// The client reports an empty error body as a plain formatted error.
	return err != nil && strings.Contains(err.Error(), fmt.Sprintf("HTTP %d:", http.StatusUnauthorized))
}
