// Package remoteapi holds the response envelope and error taxonomy shared by
// the clients for the remote file and auth services.
//
// Both services answer with {success, data|message}. A request fails in one
// of two ways: the service could not be reached or answered with a server
// error (ErrUnavailable), or it answered and said no (ErrRejected).
package remoteapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

var (
	// ErrUnavailable means the service was unreachable or failed internally.
	ErrUnavailable = errors.New("remote service unavailable")
	// ErrRejected means the service answered with success=false or a 4xx.
	ErrRejected = errors.New("remote service rejected request")
)

// Envelope is the response shape used by the remote services.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error describes a failed remote call.
type Error struct {
	Op      string // client operation, e.g. "getFiles"
	Status  int    // HTTP status, 0 when no response was received
	Message string // message reported by the service, if any
	Err     error  // ErrUnavailable or ErrRejected
	Cause   error  // transport or decode error, if any
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the service-provided message carried by err, if any.
func Message(err error) string {
	var re *Error
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}

// Decode interprets a resty response (or transport error) as an envelope.
// On success it returns the raw data payload.
func Decode(op string, resp *resty.Response, err error) (json.RawMessage, error) {
	if err != nil {
		return nil, &Error{Op: op, Err: ErrUnavailable, Cause: err}
	}

	status := resp.StatusCode()
	var env Envelope
	decodeErr := json.Unmarshal(resp.Body(), &env)

	if status >= http.StatusInternalServerError {
		return nil, &Error{Op: op, Status: status, Message: env.Message, Err: ErrUnavailable}
	}
	if decodeErr != nil {
		if status >= http.StatusBadRequest {
			return nil, &Error{Op: op, Status: status, Err: ErrRejected}
		}
		return nil, &Error{Op: op, Status: status, Err: ErrUnavailable, Cause: fmt.Errorf("decode envelope: %w", decodeErr)}
	}
	if status >= http.StatusBadRequest || !env.Success {
		return nil, &Error{Op: op, Status: status, Message: env.Message, Err: ErrRejected}
	}
	return env.Data, nil
}

// DecodeInto is Decode followed by unmarshalling the data payload into out.
// An absent payload leaves out untouched.
func DecodeInto(op string, resp *resty.Response, err error, out any) error {
	data, err := Decode(op, resp, err)
	if err != nil {
		return err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Op: op, Status: resp.StatusCode(), Err: ErrUnavailable, Cause: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}
