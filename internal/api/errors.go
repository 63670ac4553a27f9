package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrInvalidID rejects non-positive ids before any request is made.
	ErrInvalidID = errors.New("invalid id")

	// ErrAborted marks requests cancelled by the caller. UIs suppress
	// these; they are distinct from network failures.
	ErrAborted = errors.New("request aborted")
)

// FieldMessages normalizes the backend's validation detail, which sends
// either a single string or a list per field.
type FieldMessages map[string][]string

func (m *FieldMessages) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := FieldMessages{}
	for field, msg := range raw {
		var many []string
		if err := json.Unmarshal(msg, &many); err == nil {
			out[field] = many
			continue
		}
		var one string
		if err := json.Unmarshal(msg, &one); err == nil {
			out[field] = []string{one}
		}
	}
	*m = out
	return nil
}

// ErrorData is the decoded body of a failed response.
type ErrorData struct {
	Message string        `json:"message"`
	Errors  FieldMessages `json:"errors"`

	// Raw keeps the undecoded body for non-JSON failures.
	Raw string `json:"-"`
}

// Error carries a non-2xx backend response.
type Error struct {
	Status  int
	Message string
	Data    ErrorData
}

func (e *Error) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// IsAbort reports whether err came from caller cancellation rather than
// the network or the backend.
func IsAbort(err error) bool {
	return errors.Is(err, ErrAborted) || errors.Is(err, context.Canceled)
}

// AsError unwraps a backend error, if err carries one.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
