package ark

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTimeout is returned when the model does not answer within the
	// configured timeout.
	ErrTimeout = errors.New("ark: request timed out")

	// ErrMalformedResponse means the HTTP body was not JSON at all.
	ErrMalformedResponse = errors.New("ark: response body is not valid JSON")

	// ErrNoJSON means the model text contained nothing that looks like a JSON object.
	ErrNoJSON = errors.New("ark: no JSON object found in model output")

	// ErrMalformedJSON means brace-delimited spans were found but none parsed.
	ErrMalformedJSON = errors.New("ark: could not parse JSON in model output")
)

// StatusError is a non-2xx reply from the model endpoint.
type StatusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("ark: request failed: %s", e.Status)
	if e.Body != "" {
		msg += " - " + e.Body
	}
	return msg
}

// NetworkError wraps a transport failure before any reply was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "ark: network error: " + e.Err.Error() }

func (e *NetworkError) Unwrap() error { return e.Err }

// SchemaError means the parsed object carried none of the expected tier lists.
type SchemaError struct {
	Keys []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ark: expected high_purine_foods, medium_purine_foods or low_purine_foods, got fields: %s",
		strings.Join(e.Keys, ", "))
}

// preview returns at most n runes of s.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
