// Package agent implements the pipeline stages: research, content, design,
// asset resolution and composition. Each stage is constructed once, shared
// across requests, and records one AgentTask per operation.
package agent

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cpunion/slidegen/pkg/llm"
	"github.com/cpunion/slidegen/pkg/tasklog"
	"github.com/cpunion/slidegen/pkg/types"
)

// Stage names used in errors, logs and metrics.
const (
	StageResearch    = "research"
	StageOutline     = "outline"
	StageContent     = "slide-contents"
	StageDesign      = "design-decision"
	StageAssets      = "assets"
	StageComposition = "composition"
)

// AgentError is a stage-local failure the stage could not recover from.
type AgentError struct {
	Stage   string
	Message string
	Details string // raw model output or validation detail
	Err     error
}

func (e *AgentError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

func (e *AgentError) Unwrap() error { return e.Err }

func stageError(stage, msg string, err error) *AgentError {
	ae := &AgentError{Stage: stage, Message: msg, Err: err}
	var me *llm.ModelError
	if errors.As(err, &me) && me.Raw != "" {
		ae.Details = me.Raw
	}
	return ae
}

// recorder writes the task history of one agent.
type recorder struct {
	typ    types.TaskType
	tasks  *tasklog.Log
	logger zerolog.Logger
}

func newRecorder(typ types.TaskType, tasks *tasklog.Log, logger zerolog.Logger) recorder {
	if tasks == nil {
		tasks = tasklog.New(tasklog.DefaultConfig())
	}
	return recorder{
		typ:    typ,
		tasks:  tasks,
		logger: logger.With().Str("stage", string(typ)).Logger(),
	}
}

// start opens a task; it is only published by finish.
func (r *recorder) start(operation string, input any) types.AgentTask {
	return types.AgentTask{
		ID:        uuid.NewString(),
		Type:      r.typ,
		Operation: operation,
		Status:    types.TaskInProgress,
		Input:     input,
		StartTime: time.Now(),
	}
}

func (r *recorder) finish(task types.AgentTask, output any, err error) {
	end := time.Now()
	task.EndTime = &end
	task.Output = output
	task.Status = types.TaskCompleted
	if err != nil {
		task.Status = types.TaskFailed
		task.Error = err.Error()
	}
	if aerr := r.tasks.Append(task); aerr != nil {
		r.logger.Warn().Err(aerr).Str("task", task.ID).Msg("archive task")
	}
	r.logger.Debug().
		Str("operation", task.Operation).
		Str("status", string(task.Status)).
		Dur("elapsed", task.Duration()).
		Msg("task finished")
}

// Stats summarizes this agent's task history.
func (r *recorder) Stats() tasklog.Stats {
	return r.tasks.Stats(r.typ)
}
