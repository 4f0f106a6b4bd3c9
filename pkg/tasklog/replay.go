package tasklog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cpunion/slidegen/pkg/types"
)

// Replay reads every archived task in dir, oldest first. Lines that do not
// decode are skipped and counted in the returned skip total.
func Replay(dir string) ([]types.AgentTask, int, error) {
	idx, err := LoadIndex(filepath.Join(dir, IndexFile))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, 0, fmt.Errorf("load archive index: %w", err)
		}
		idx = scanIndex(dir, 0)
	}
	if len(idx.Shards) == 0 {
		return nil, 0, fmt.Errorf("no task shards in %s", dir)
	}

	shards := append([]Shard(nil), idx.Shards...)
	sort.Slice(shards, func(i, j int) bool { return shards[i].Seq < shards[j].Seq })

	out := make([]types.AgentTask, 0, idx.TotalTasks)
	skipped := 0
	for _, s := range shards {
		n, err := readShard(filepath.Join(dir, s.File), &out)
		if err != nil {
			return nil, 0, err
		}
		skipped += n
	}
	return out, skipped, nil
}

func readShard(path string, out *[]types.AgentTask) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open shard: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 8*1024*1024)
	skipped := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var task types.AgentTask
		if err := json.Unmarshal([]byte(line), &task); err != nil {
			skipped++
			continue
		}
		*out = append(*out, task)
	}
	return skipped, scanner.Err()
}
