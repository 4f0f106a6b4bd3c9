package tasklog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cpunion/slidegen/pkg/types"
)

// DefaultTasksPerShard is the shard size when none is configured.
const DefaultTasksPerShard = 500

// ArchiveConfig configures an Archive.
type ArchiveConfig struct {
	Dir              string
	MaxTasksPerShard int
	Append           bool // resume an existing archive instead of starting a new one
}

// Archive is a Sink that writes tasks as JSON lines into numbered shards,
// keeping index.json current after every write.
type Archive struct {
	mu sync.Mutex

	dir       string
	indexPath string
	perShard  int

	idx *Index

	file   *os.File
	writer *bufio.Writer
	seq    int
	count  int
}

// OpenArchive opens or creates an archive directory.
func OpenArchive(cfg ArchiveConfig) (*Archive, error) {
	if cfg.Dir == "" {
		return nil, errors.New("archive dir is required")
	}
	if cfg.MaxTasksPerShard <= 0 {
		cfg.MaxTasksPerShard = DefaultTasksPerShard
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}

	a := &Archive{
		dir:       cfg.Dir,
		indexPath: filepath.Join(cfg.Dir, IndexFile),
		perShard:  cfg.MaxTasksPerShard,
		idx:       &Index{Version: 1, MaxTasksPerShard: cfg.MaxTasksPerShard},
	}

	if cfg.Append {
		if idx, err := LoadIndex(a.indexPath); err == nil {
			if idx.MaxTasksPerShard == 0 {
				idx.MaxTasksPerShard = cfg.MaxTasksPerShard
			}
			idx.recount()
			a.idx = idx
		} else if maxShardSeq(cfg.Dir) > 0 {
			// Shards without an index: rebuild it from disk.
			a.idx = scanIndex(cfg.Dir, cfg.MaxTasksPerShard)
		}
	} else {
		// Fresh archive: old shards would be mixed into the new index on resume.
		if maxShardSeq(cfg.Dir) > 0 {
			return nil, fmt.Errorf("archive dir %s is not empty", cfg.Dir)
		}
	}

	if err := a.resume(); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Archive) resume() error {
	if len(a.idx.Shards) == 0 {
		return a.rotateTo(1)
	}
	last := a.idx.Shards[len(a.idx.Shards)-1]
	path := filepath.Join(a.dir, last.File)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	a.file = f
	a.writer = bufio.NewWriter(f)
	a.seq = last.Seq
	a.count = countLines(path)
	a.idx.Shards[len(a.idx.Shards)-1].Tasks = a.count
	a.idx.recount()
	return SaveIndexAtomic(a.indexPath, a.idx)
}

func (a *Archive) rotateTo(seq int) error {
	if a.writer != nil {
		_ = a.writer.Flush()
	}
	if a.file != nil {
		_ = a.file.Close()
	}

	name := shardFileName(seq)
	f, err := os.OpenFile(filepath.Join(a.dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	a.file = f
	a.writer = bufio.NewWriter(f)
	a.seq = seq
	a.count = 0

	a.idx.Shards = append(a.idx.Shards, Shard{Seq: seq, File: name})
	return SaveIndexAtomic(a.indexPath, a.idx)
}

// Write appends one task.
func (a *Archive) Write(task types.AgentTask) error {
	line, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task %s: %w", task.ID, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.writer == nil {
		return errors.New("archive is closed")
	}
	// Rotate lazily so an empty next shard is never indexed.
	if a.count >= a.perShard {
		if err := a.rotateTo(a.seq + 1); err != nil {
			return err
		}
	}

	line = append(line, '\n')
	if _, err := a.writer.Write(line); err != nil {
		return err
	}
	if err := a.writer.Flush(); err != nil {
		return err
	}

	a.count++
	a.idx.Shards[len(a.idx.Shards)-1].Tasks = a.count
	a.idx.TotalTasks++
	return SaveIndexAtomic(a.indexPath, a.idx)
}

// Index returns a copy of the current index.
func (a *Archive) Index() Index {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := *a.idx
	out.Shards = append([]Shard(nil), a.idx.Shards...)
	return out
}

// Close flushes and closes the current shard.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var err error
	if a.writer != nil {
		err = a.writer.Flush()
		a.writer = nil
	}
	if a.file != nil {
		if cerr := a.file.Close(); err == nil {
			err = cerr
		}
		a.file = nil
	}
	if serr := SaveIndexAtomic(a.indexPath, a.idx); err == nil {
		err = serr
	}
	return err
}

func countLines(path string) int {
	f, err := os.Open(path)
	if err != nil {
		return 0
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 8*1024*1024)
	n := 0
	for scanner.Scan() {
		if len(bytes.TrimSpace(scanner.Bytes())) > 0 {
			n++
		}
	}
	return n
}

func scanIndex(dir string, perShard int) *Index {
	idx := &Index{Version: 1, MaxTasksPerShard: perShard}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return idx
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		seq := parseShardSeq(e.Name())
		if seq <= 0 {
			continue
		}
		idx.Shards = append(idx.Shards, Shard{Seq: seq, File: e.Name(), Tasks: countLines(filepath.Join(dir, e.Name()))})
	}
	sort.Slice(idx.Shards, func(i, j int) bool { return idx.Shards[i].Seq < idx.Shards[j].Seq })
	idx.recount()
	return idx
}

func maxShardSeq(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	maxSeq := 0
	for _, e := range entries {
		if seq := parseShardSeq(e.Name()); !e.IsDir() && seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq
}

// tasks-000123.jsonl
func parseShardSeq(name string) int {
	if !strings.HasPrefix(name, "tasks-") || !strings.HasSuffix(name, ".jsonl") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "tasks-"), ".jsonl"))
	if err != nil {
		return 0
	}
	return n
}

func shardFileName(seq int) string {
	return fmt.Sprintf("tasks-%06d.jsonl", seq)
}
