package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

var (
	// ErrNullBody is returned by DecodeJSON when the body is the JSON literal null.
	ErrNullBody = errors.New("httpx: request body is null")
	// ErrTrailingData is returned by DecodeJSON when more follows the first JSON value.
	ErrTrailingData = errors.New("httpx: unexpected data after JSON body")
)

// MessageBody is the body of informational and error responses.
type MessageBody struct {
	Message string `json:"message"`
}

// ErrorBody is the body used when a request could not be processed at all.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Message sends {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}

// Fail sends {"error": msg}.
func Fail(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, ErrorBody{Error: msg})
}

// DecodeJSON decodes JSON request body into the target struct. The body must
// hold exactly one JSON value and that value must not be null.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ErrTrailingData
	}
	if bytes.Equal(raw, []byte("null")) {
		return ErrNullBody
	}
	return json.Unmarshal(raw, target)
}
