package rpc

import (
	"errors"
	"net/http"
	"strconv"
)

// errNotFound is the cause used for 404 responses.
var errNotFound = errors.New("not found")

// httpError pairs a cause with the HTTP status code it should produce,
// mirroring the thin error-to-status wrapper used across the examples'
// JSON-RPC/REST surfaces.
type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string { return e.cause.Error() }

// badRequest wraps cause as a 400 response.
func badRequest(cause error) error {
	return &httpError{cause: cause, status: http.StatusBadRequest}
}

// internalError wraps cause as a 500 response.
func internalError(cause error) error {
	return &httpError{cause: cause, status: http.StatusInternalServerError}
}

// handlerFunc is like http.HandlerFunc but returns an error, which
// wrapHandlerFunc translates into the right status code.
type handlerFunc func(http.ResponseWriter, *http.Request) error

func wrapHandlerFunc(f handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			if he, ok := err.(*httpError); ok {
				http.Error(w, he.cause.Error(), he.status)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

// scanUint64 parses s as a base-10 uint64, for use on path variables that
// callers wrap as a bad request on failure.
func scanUint64(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}
