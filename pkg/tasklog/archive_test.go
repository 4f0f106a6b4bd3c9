package tasklog

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpunion/slidegen/pkg/types"
)

func TestArchive_RotationAndResume(t *testing.T) {
	dir := t.TempDir()

	a, err := OpenArchive(ArchiveConfig{Dir: dir, MaxTasksPerShard: 3})
	require.NoError(t, err)
	for i := 0; i < 7; i++ {
		require.NoError(t, a.Write(finished(fmt.Sprint(i), types.TaskContent, types.TaskCompleted, time.Second)))
	}
	require.NoError(t, a.Close())

	idx, err := LoadIndex(filepath.Join(dir, IndexFile))
	require.NoError(t, err)
	assert.Equal(t, 7, idx.TotalTasks)
	require.Len(t, idx.Shards, 3)
	assert.Equal(t, Shard{Seq: 1, File: "tasks-000001.jsonl", Tasks: 3}, idx.Shards[0])
	assert.Equal(t, Shard{Seq: 3, File: "tasks-000003.jsonl", Tasks: 1}, idx.Shards[2])

	// Resume fills the last shard before rotating.
	a2, err := OpenArchive(ArchiveConfig{Dir: dir, MaxTasksPerShard: 3, Append: true})
	require.NoError(t, err)
	for i := 7; i < 10; i++ {
		require.NoError(t, a2.Write(finished(fmt.Sprint(i), types.TaskDesign, types.TaskCompleted, 0)))
	}
	require.NoError(t, a2.Close())

	idx2 := a2.Index()
	assert.Equal(t, 10, idx2.TotalTasks)
	require.Len(t, idx2.Shards, 4)
	assert.Equal(t, 3, idx2.Shards[2].Tasks)
	assert.Equal(t, 1, idx2.Shards[3].Tasks)

	tasks, skipped, err := Replay(dir)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	require.Len(t, tasks, 10)
	for i, task := range tasks {
		assert.Equal(t, fmt.Sprint(i), task.ID)
	}
	assert.Equal(t, time.Second, tasks[0].Duration())
}

func TestArchive_RefusesDirtyDirWithoutAppend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks-000001.jsonl"), []byte("{}\n"), 0644))

	_, err := OpenArchive(ArchiveConfig{Dir: dir})
	assert.Error(t, err)
}

func TestArchive_RebuildsMissingIndex(t *testing.T) {
	dir := t.TempDir()
	line := `{"id":"x","type":"research","operation":"research","status":"completed","startTime":"2026-01-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tasks-000002.jsonl"), []byte(line+"\nnot json\n"), 0644))

	tasks, skipped, err := Replay(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, tasks, 1)
	assert.Equal(t, types.TaskResearch, tasks[0].Type)

	a, err := OpenArchive(ArchiveConfig{Dir: dir, MaxTasksPerShard: 10, Append: true})
	require.NoError(t, err)
	require.NoError(t, a.Write(finished("y", types.TaskAsset, types.TaskCompleted, 0)))
	require.NoError(t, a.Close())

	idx := a.Index()
	require.Len(t, idx.Shards, 1)
	assert.Equal(t, 2, idx.Shards[0].Seq)
	assert.Equal(t, 3, idx.Shards[0].Tasks)
}

func TestLog_ArchiveSink(t *testing.T) {
	dir := t.TempDir()
	a, err := OpenArchive(ArchiveConfig{Dir: dir})
	require.NoError(t, err)

	l := New(Config{Limit: 1, Sink: a})
	require.NoError(t, l.Append(finished("a", types.TaskResearch, types.TaskCompleted, 0)))
	require.NoError(t, l.Append(finished("b", types.TaskContent, types.TaskCompleted, 0)))
	require.NoError(t, a.Close())

	tasks, _, err := Replay(dir)
	require.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, 1, l.Len())
}

func TestReplay_EmptyDir(t *testing.T) {
	_, _, err := Replay(t.TempDir())
	assert.Error(t, err)
}
