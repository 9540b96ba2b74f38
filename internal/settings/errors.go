package settings

import (
	"fmt"
	"net/http"
)

// Error is returned for transport failures and non-2xx responses. StatusCode
// is zero when no response was received.
type Error struct {
	Method     string
	Path       string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("settings: %s %s: %v", e.Method, e.Path, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("settings: %s %s: %d: %v", e.Method, e.Path, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("settings: %s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NotFound reports whether the server answered 404.
func (e *Error) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}
