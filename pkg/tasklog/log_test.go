package tasklog

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/cpunion/slidegen/pkg/types"
)

func finished(id string, typ types.TaskType, status types.TaskStatus, d time.Duration) types.AgentTask {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(d)
	return types.AgentTask{
		ID:        id,
		Type:      typ,
		Operation: "op",
		Status:    status,
		StartTime: start,
		EndTime:   &end,
	}
}

func TestLog_RingEvictsOldest(t *testing.T) {
	l := New(Config{Limit: 3})
	for i := 0; i < 5; i++ {
		require.NoError(t, l.Append(finished(fmt.Sprint(i), types.TaskContent, types.TaskCompleted, time.Second)))
	}

	snap := l.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"2", "3", "4"}, []string{snap[0].ID, snap[1].ID, snap[2].ID})
	assert.Equal(t, 3, l.Len())
	assert.Equal(t, int64(5), l.Appended())
}

func TestLog_Unbounded(t *testing.T) {
	l := New(Config{})
	for i := 0; i < 20; i++ {
		_ = l.Append(finished(fmt.Sprint(i), types.TaskDesign, types.TaskCompleted, 0))
	}
	assert.Equal(t, 20, l.Len())
	assert.Equal(t, "0", l.Snapshot()[0].ID)
}

func TestLog_ConcurrentAppend(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := New(Config{Limit: 100})
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				_ = l.Append(finished(fmt.Sprintf("%d-%d", g, i), types.TaskAsset, types.TaskCompleted, time.Millisecond))
				_ = l.Stats(types.TaskAsset)
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 100, l.Len())
	assert.Equal(t, int64(400), l.Appended())
}

type failingSink struct{ n int }

func (s *failingSink) Write(types.AgentTask) error {
	s.n++
	return errors.New("disk full")
}

func TestLog_SinkErrorStillRecords(t *testing.T) {
	sink := &failingSink{}
	l := New(Config{Sink: sink})

	err := l.Append(finished("a", types.TaskResearch, types.TaskFailed, 0))
	assert.Error(t, err)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, 1, sink.n)
}

func TestStats(t *testing.T) {
	l := New(DefaultConfig())
	_ = l.Append(finished("1", types.TaskContent, types.TaskCompleted, 2*time.Second))
	_ = l.Append(finished("2", types.TaskContent, types.TaskFailed, 4*time.Second))
	_ = l.Append(finished("3", types.TaskDesign, types.TaskCompleted, time.Second))

	s := l.Stats(types.TaskContent)
	assert.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 1, s.Failed)
	assert.InDelta(t, 0.5, s.SuccessRate, 1e-9)
	assert.Equal(t, 3*time.Second, s.AverageDuration)
	assert.Equal(t, 2, s.ByOperation["op"])

	all := l.Stats("")
	assert.Equal(t, 3, all.Total)

	merged := s.Merge(l.Stats(types.TaskDesign))
	assert.Equal(t, all.Total, merged.Total)
	assert.Equal(t, all.Completed, merged.Completed)
	assert.Equal(t, all.AverageDuration, merged.AverageDuration)
}
