package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpunion/slidegen/pkg/config"
	"github.com/cpunion/slidegen/pkg/llm/llmtest"
	"github.com/cpunion/slidegen/pkg/tasklog"
	"github.com/cpunion/slidegen/pkg/types"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), &config.Config{}, zerolog.Nop(), nil)
	assert.ErrorContains(t, err, "GOOGLE_API_KEY")
}

func TestNewWithGenerator_ArchivesTasks(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "tasks")
	cfg := &config.Config{TaskHistoryLimit: 10, TaskArchiveDir: dir, MaxAssetsPerSlide: 2, AssetConcurrency: 2}

	fake := &llmtest.Fake{
		JSONFunc: func(prompt string) (string, error) {
			return `{"keyPoints": ["Cheap storage", "Elastic compute", "Managed databases"], "confidence": 0.5}`, nil
		},
		TextFunc: func(string) (string, error) { return "- point", nil },
	}
	a, err := NewWithGenerator(fake, cfg, zerolog.Nop(), nil)
	require.NoError(t, err)
	assert.Nil(t, a.Client)

	result, err := a.Pipeline.Generate(context.Background(), types.SlideGenerationRequest{Topic: "Cloud", SlideCount: 3, IncludeImages: true})
	require.NoError(t, err)
	assert.Len(t, result.Slides, 5)
	require.NoError(t, a.Close())

	tasks, skipped, err := tasklog.Replay(dir)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Len(t, tasks, a.Pipeline.Tasks().Len())
	assert.Equal(t, a.Pipeline.Stats().Overall.Total, len(tasks))
}
