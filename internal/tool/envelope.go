package tool

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the structured result returned by every tool invocation.
// It always carries a status discriminant ("success" or "error"), an
// RFC 3339 timestamp, and a request ID; successful envelopes add the
// operation's payload fields.
type Envelope map[string]any

// Success builds a success envelope from the operation's payload fields
func Success(fields map[string]any) Envelope {
	env := newEnvelope("success")
	for key, value := range fields {
		env[key] = value
	}
	return env
}

// Error builds an error envelope carrying the failure description
func Error(msg string) Envelope {
	env := newEnvelope("error")
	env["error"] = msg
	return env
}

// Errorf builds an error envelope from a format string
func Errorf(format string, args ...any) Envelope {
	return Error(fmt.Sprintf(format, args...))
}

func newEnvelope(status string) Envelope {
	return Envelope{
		"status":     status,
		"timestamp":  time.Now().Format(time.RFC3339),
		"request_id": uuid.NewString(),
	}
}

// IsError reports whether the envelope carries an error status
func (e Envelope) IsError() bool {
	return e["status"] == "error"
}

// JSON serializes the envelope; marshal failure is reported in-band
// so callers never have to special-case it.
func (e Envelope) JSON() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"status":"error","error":"envelope serialization failed: %v"}`, err)
	}
	return string(data)
}
