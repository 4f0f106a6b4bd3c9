package tasklog

import (
	"time"

	"github.com/cpunion/slidegen/pkg/types"
)

// Stats aggregates a set of tasks.
type Stats struct {
	Total           int            `json:"total"`
	Completed       int            `json:"completed"`
	Failed          int            `json:"failed"`
	Open            int            `json:"open"`
	SuccessRate     float64        `json:"successRate"`
	AverageDuration time.Duration  `json:"averageDuration"`
	ByOperation     map[string]int `json:"byOperation,omitempty"`
}

// Summarize computes Stats over tasks of type typ (all when empty).
func Summarize(tasks []types.AgentTask, typ types.TaskType) Stats {
	s := Stats{ByOperation: make(map[string]int)}
	var total time.Duration
	finished := 0
	for _, t := range tasks {
		if typ != "" && t.Type != typ {
			continue
		}
		s.Total++
		if t.Operation != "" {
			s.ByOperation[t.Operation]++
		}
		switch t.Status {
		case types.TaskCompleted:
			s.Completed++
		case types.TaskFailed:
			s.Failed++
		default:
			s.Open++
		}
		if t.EndTime != nil {
			total += t.Duration()
			finished++
		}
	}
	if done := s.Completed + s.Failed; done > 0 {
		s.SuccessRate = float64(s.Completed) / float64(done)
	}
	if finished > 0 {
		s.AverageDuration = total / time.Duration(finished)
	}
	return s
}

// Merge adds o into s.
func (s Stats) Merge(o Stats) Stats {
	out := Stats{
		Total:       s.Total + o.Total,
		Completed:   s.Completed + o.Completed,
		Failed:      s.Failed + o.Failed,
		Open:        s.Open + o.Open,
		ByOperation: make(map[string]int, len(s.ByOperation)+len(o.ByOperation)),
	}
	for k, v := range s.ByOperation {
		out.ByOperation[k] += v
	}
	for k, v := range o.ByOperation {
		out.ByOperation[k] += v
	}
	if done := out.Completed + out.Failed; done > 0 {
		out.SuccessRate = float64(out.Completed) / float64(done)
	}
	if n := s.Completed + s.Failed + o.Completed + o.Failed; n > 0 {
		weighted := s.AverageDuration*time.Duration(s.Completed+s.Failed) + o.AverageDuration*time.Duration(o.Completed+o.Failed)
		out.AverageDuration = weighted / time.Duration(n)
	}
	return out
}
