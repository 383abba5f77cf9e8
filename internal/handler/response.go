package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
// With helpers, handlers stay short and consistent:
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, err, "Failed to fetch questions")
//
// CONSISTENT ENVELOPE:
// Every response from the API carries a "success" flag. Failures always look
// like:
//   {"success": false, "message": "Invalid email or password"}
//
// so the front end can branch on one field regardless of the status code.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/studyhub/internal/apperror"
)

// maxBodyBytes caps every JSON request body. The largest legitimate body is a
// question with its answer; 1 MiB is far beyond that.
const maxBodyBytes = 1 << 20

// envelope is the response body shape shared by every endpoint. Extra data
// (user, question, questions) goes in alongside success/message.
type envelope map[string]any

// failure is the body of every error response.
type failure struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be written BEFORE the body. Once Encode calls
// w.Write, the headers are on the wire and later changes are ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and writes the failure
// envelope.
//
// ERROR MAPPING:
//
//	apperror.ErrValidation   → 400
//	apperror.ErrDuplicate    → 400 (clients treat it as a form error)
//	apperror.ErrUnauthorized → 401
//	apperror.ErrNotFound     → 404
//	anything else            → 500 with fallback as the message
//
// fallback is route-specific ("Failed to fetch questions", ...). Unexpected
// errors never leak their text: it might contain SQL or file paths. The
// caller is responsible for logging the cause.
func writeError(w http.ResponseWriter, err error, fallback string) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrDuplicate):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		}
		if status != http.StatusInternalServerError {
			writeJSON(w, status, failure{Message: appErr.Message})
			return
		}
	}

	writeJSON(w, http.StatusInternalServerError, failure{Message: fallback})
}

// isUnexpected reports whether err will be answered with a 500, i.e. whether
// the handler should log it.
func isUnexpected(err error) bool {
	for _, known := range []error{
		apperror.ErrValidation,
		apperror.ErrDuplicate,
		apperror.ErrUnauthorized,
		apperror.ErrNotFound,
	} {
		if errors.Is(err, known) {
			return false
		}
	}
	return true
}

// decodeJSON reads a JSON request body into dst.
//
// An empty body decodes to the zero value, so "missing field" validation is
// left to the service. Malformed JSON is a validation error (400).
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperror.ValidationFailed("", fmt.Sprintf("Invalid JSON body: %s", jsonErrorReason(err)))
	}
	return nil
}

func jsonErrorReason(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxErr):
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	case errors.As(err, &typeErr):
		return fmt.Sprintf("field %q has the wrong type", typeErr.Field)
	case errors.As(err, &maxErr):
		return "body too large"
	default:
		return "could not parse body"
	}
}
