// Package jsonutil writes the small JSON replies used by the file manager
// script and reads its JSON request bodies.
//
// Every reply is a Result, so the browser only ever has to look at
// "success" and "message".
package jsonutil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes bounds a decoded request body.
const MaxBodyBytes = 64 << 10

// ErrTrailingData is returned by Decode when the body holds more than one
// JSON value.
var ErrTrailingData = errors.New("jsonutil: unexpected data after JSON value")

// Result is the reply envelope.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// OK writes a 200 reply with Success set.
func OK(w http.ResponseWriter, message string) {
	JSON(w, http.StatusOK, Result{Success: true, Message: message})
}

// Fail writes a failed reply with the given status code. The message is
// shown to the user as is, so it must not carry internal details.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Result{Success: false, Message: message})
}

// Reply writes OK when success is true and Fail with status otherwise.
func Reply(w http.ResponseWriter, status int, success bool, message string) {
	if success {
		OK(w, message)
		return
	}
	Fail(w, status, message)
}

// Decode reads one JSON value from the request body into v. Bodies over
// MaxBodyBytes and bodies with trailing data are rejected.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return ErrTrailingData
	}
	return nil
}
