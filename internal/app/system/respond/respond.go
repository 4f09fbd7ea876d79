// Package respond writes JSON responses in the shape the client expects.
//
// Errors are always {"message": "..."}; success bodies are the value as-is.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/facultrack/internal/app/system/limits"
	"go.uber.org/zap"
)

// errorBody is the JSON structure for every error response.
type errorBody struct {
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, v)
}

// Message writes {"message": msg} with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Message: msg})
}

// Error writes a client error. Use ServerError for 5xx.
func Error(w http.ResponseWriter, status int, msg string) {
	Message(w, status, msg)
}

// Invalid writes 400 with the first message and the full list.
func Invalid(w http.ResponseWriter, msgs []string) {
	msg := "Invalid request."
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	JSON(w, http.StatusBadRequest, errorBody{Message: msg, Errors: msgs})
}

// ServerError logs err and writes a generic 500.
func ServerError(w http.ResponseWriter, log *zap.Logger, what string, err error, fields ...zap.Field) {
	if log != nil {
		log.Error(what, append(fields, zap.Error(err))...)
	}
	Message(w, http.StatusInternalServerError, "Server error")
}

// Decode reads a JSON body into v. It writes a 400 and returns false on
// malformed input and a 413 when the body is larger than limits.MaxJSONBody.
func Decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxJSONBody))
	if err := dec.Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			Message(w, http.StatusRequestEntityTooLarge, "Request body too large.")
			return false
		}
		Message(w, http.StatusBadRequest, "Invalid JSON body.")
		return false
	}
	return true
}
