package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

// RequestError is a non-2xx response from the API.
type RequestError struct {
	Op      string
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// Unauthorized reports whether the server rejected the bearer token.
func (e *RequestError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// NetworkError means no response was received: dial failure, reset, or the
// per-request timeout elapsing.
type NetworkError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return "Request timed out. Please try again"
	}
	return "Network error. Please check if the server is reachable"
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Unauthorized()
}

// messageFromBody prefers the server's "message", then a string "error" or
// "error.message", and falls back to the per-operation text.
func messageFromBody(body []byte, fallback string) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}
	for _, path := range []string{"message", "error.message", "error"} {
		res := gjson.GetBytes(body, path)
		if res.Type == gjson.String && res.String() != "" {
			return res.String()
		}
	}
	return fallback
}

func newRequestError(op string, status int, body []byte, fallback string) *RequestError {
	if fallback == "" {
		fallback = fmt.Sprintf("Request failed with status %d", status)
	}
	return &RequestError{
		Op:      op,
		Status:  status,
		Message: messageFromBody(body, fallback),
	}
}

// unwrapObject returns the first JSON object found at paths, or body itself.
// Endpoints disagree on whether payloads sit under "data", "data.user" or
// at the root.
func unwrapObject(body []byte, paths ...string) []byte {
	for _, path := range paths {
		res := gjson.GetBytes(body, path)
		if res.IsObject() {
			return []byte(res.Raw)
		}
	}
	return body
}
