package pipeline

import (
	"fmt"
	"time"
)

// StageRequest tags errors raised before any stage runs.
const StageRequest = "request"

// GenerationError is the only error Generate returns. Err is the stage
// failure; use errors.As to reach an *agent.AgentError or errors.Is to test
// for context.Canceled.
type GenerationError struct {
	Topic   string
	Stage   string
	Err     error
	Elapsed time.Duration
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %q failed at %s after %s: %v", e.Topic, e.Stage, e.Elapsed.Round(time.Millisecond), e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
