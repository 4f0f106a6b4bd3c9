package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Reason classifies a gateway failure.
type Reason string

const (
	ReasonTimeout         Reason = "timeout"
	ReasonMalformedOutput Reason = "malformed-output"
	ReasonRateLimited     Reason = "rate-limited"
	ReasonUnknown         Reason = "unknown"
)

// ModelError is the only error type returned across the gateway boundary.
type ModelError struct {
	Reason Reason
	Err    error
	Raw    string // model output, set for malformed-output
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("model error (%s)", e.Reason)
	}
	return fmt.Sprintf("model error (%s): %v", e.Reason, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// IsReason reports whether err is a ModelError with the given reason.
func IsReason(err error, reason Reason) bool {
	var me *ModelError
	return errors.As(err, &me) && me.Reason == reason
}

var errEmptyResponse = errors.New("empty response from model")

func malformed(err error, raw string) *ModelError {
	return &ModelError{Reason: ReasonMalformedOutput, Err: err, Raw: raw}
}

// classify maps a backend error onto a ModelError. ctx is the per-call
// context so a fired per-call deadline is reported as a timeout.
func classify(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	var me *ModelError
	if errors.As(err, &me) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &ModelError{Reason: ReasonTimeout, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ModelError{Reason: ReasonUnknown, Err: err}
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return &ModelError{Reason: ReasonRateLimited, Err: err}
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return &ModelError{Reason: ReasonTimeout, Err: err}
		}
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "RESOURCE_EXHAUSTED"), strings.Contains(msg, "429"):
		return &ModelError{Reason: ReasonRateLimited, Err: err}
	case strings.Contains(msg, "DEADLINE_EXCEEDED"):
		return &ModelError{Reason: ReasonTimeout, Err: err}
	}
	return &ModelError{Reason: ReasonUnknown, Err: err}
}
