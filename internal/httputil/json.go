// Package httputil holds small helpers shared by the HTTP handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrBodyTooLarge is returned by DecodeJSON when the body exceeds the
// limit set by the request size middleware.
var ErrBodyTooLarge = errors.New("request body too large")

type errorResponse struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// Error writes {"error": msg}.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorResponse{Error: msg})
}

// DecodeJSON decodes the request body into v. The body must hold exactly one
// JSON value and no fields that v does not declare.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if IsMaxBytesError(err) {
			return ErrBodyTooLarge
		}
		return fmt.Errorf("decode body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if IsMaxBytesError(err) {
			return ErrBodyTooLarge
		}
		return errors.New("decode body: trailing data after JSON value")
	}
	return nil
}

// DecodeError writes the response for a DecodeJSON failure.
func DecodeError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrBodyTooLarge) {
		Error(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	Error(w, http.StatusBadRequest, "invalid request body")
}

// IsMaxBytesError reports whether err came from http.MaxBytesReader.
func IsMaxBytesError(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
