package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error is a non-2xx reply from the backend.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("backend: status %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("backend: status %d", e.StatusCode)
}

// SessionExpired reports whether the backend rejected the bearer token.
// 401 and 403 are treated alike: the session is gone either way.
func (e *Error) SessionExpired() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

// IsSessionExpired reports whether err is a backend token rejection.
func IsSessionExpired(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.SessionExpired()
}

// Detail returns the backend's detail string from err, or "" when err is
// not a backend error or carried none.
func Detail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	return ""
}

// decodeError turns an error response into an *Error. The backend wraps
// every failure as {"detail": ...}; validation failures put a list there,
// which is left out rather than stringified.
func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
	var payload struct {
		Detail string `json:"detail"`
	}
	e := &Error{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(body, &payload); err == nil {
		e.Detail = strings.TrimSpace(payload.Detail)
	}
	return e
}
