package tasklog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// IndexFile is the manifest name inside an archive directory.
const IndexFile = "index.json"

// Index lists the shards of a task archive.
type Index struct {
	Version          int       `json:"version"`
	UpdatedAt        time.Time `json:"updatedAt"`
	MaxTasksPerShard int       `json:"maxTasksPerShard,omitempty"`

	// Shards are ordered oldest -> newest.
	Shards []Shard `json:"shards"`

	TotalTasks int `json:"totalTasks"`
}

// Shard is one JSONL file of the archive.
type Shard struct {
	Seq   int    `json:"seq"`
	File  string `json:"file"`  // relative to the archive directory, e.g. "tasks-000001.jsonl"
	Tasks int    `json:"tasks"` // lines in the shard
}

func (idx *Index) recount() {
	sum := 0
	for _, s := range idx.Shards {
		sum += s.Tasks
	}
	idx.TotalTasks = sum
}

// LoadIndex reads an archive index.
func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx := &Index{}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, err
	}
	if idx.Version == 0 {
		idx.Version = 1
	}
	return idx, nil
}

// SaveIndexAtomic writes idx through a temp file and rename.
func SaveIndexAtomic(path string, idx *Index) error {
	if idx == nil {
		return nil
	}
	if idx.Version <= 0 {
		idx.Version = 1
	}
	idx.UpdatedAt = time.Now()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
