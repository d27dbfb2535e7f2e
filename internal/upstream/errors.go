package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// HTTPError is a non-2xx answer from an upstream service.
type HTTPError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *HTTPError) Error() string {
	msg := strings.TrimSpace(e.Message)
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d message=%s", e.StatusCode, msg)
}

func IsHTTPStatus(err error, status int) bool {
	var target *HTTPError
	return errors.As(err, &target) && target.StatusCode == status
}

// decodeError marks a 2xx response whose body could not be decoded.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string { return e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var target *HTTPError
	if errors.As(err, &target) {
		return target.StatusCode >= 500
	}
	var de *decodeError
	return !errors.As(err, &de)
}

// parseHTTPError reads the error body the upstream services emit
// ({"path": ..., "message": ...}) and falls back to the raw body.
func parseHTTPError(status int, raw []byte) error {
	body := strings.TrimSpace(string(raw))

	var info struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &info); err == nil && strings.TrimSpace(info.Message) != "" {
		return &HTTPError{StatusCode: status, Message: strings.TrimSpace(info.Message), Body: body}
	}
	return &HTTPError{StatusCode: status, Body: body}
}
