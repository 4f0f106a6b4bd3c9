package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpunion/slidegen/pkg/llm"
	"github.com/cpunion/slidegen/pkg/llm/llmtest"
	"github.com/cpunion/slidegen/pkg/pipeline"
	"github.com/cpunion/slidegen/pkg/site"
)

func newTestServer(t *testing.T, fake *llmtest.Fake) (*httptest.Server, string) {
	t.Helper()
	reg := prometheus.NewRegistry()
	p := pipeline.New(fake, pipeline.WithMetrics(pipeline.NewMetrics(reg)))
	dir := t.TempDir()
	ts := httptest.NewServer(newRouter(p, reg, dir, zerolog.Nop()))
	t.Cleanup(ts.Close)
	return ts, dir
}

func researchOnly() *llmtest.Fake {
	return &llmtest.Fake{
		JSONFunc: func(string) (string, error) {
			return `{"keyPoints": ["Solar is cheap", "Wind scales offshore", "Storage smooths demand"], "confidence": 0.9}`, nil
		},
		TextFunc: func(string) (string, error) { return "- detail", nil },
	}
}

func TestGenerateEndpoint(t *testing.T) {
	ts, dir := newTestServer(t, researchOnly())

	resp, err := http.Post(ts.URL+"/api/generate?save=true", "application/json",
		strings.NewReader(`{"topic": "Renewable Energy", "slideCount": 3, "tone": "casual"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Slides   []json.RawMessage `json:"slides"`
		HTML     string            `json:"html"`
		DeckPath string            `json:"deckPath"`
		Theme    struct {
			Name string `json:"name"`
		} `json:"theme"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Slides, 5)
	assert.Equal(t, "Vibrant", body.Theme.Name)
	assert.Contains(t, body.HTML, "Renewable Energy")
	require.NotEmpty(t, body.DeckPath)

	deck, err := http.Get(ts.URL + body.DeckPath)
	require.NoError(t, err)
	deck.Body.Close()
	assert.Equal(t, http.StatusOK, deck.StatusCode)

	cat, err := site.ScanDecks(dir)
	require.NoError(t, err)
	assert.Len(t, cat.Decks, 1)

	metrics, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	var sb strings.Builder
	_, _ = io.Copy(&sb, metrics.Body)
	assert.Contains(t, sb.String(), `slidegen_generations_total{status="success"} 1`)
}

func TestGenerateEndpoint_BadRequest(t *testing.T) {
	ts, _ := newTestServer(t, researchOnly())

	for _, body := range []string{`{"topic": ""}`, `not json`, `{"topic": "x", "colour": "red"}`} {
		resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestGenerateEndpoint_FatalStage(t *testing.T) {
	fake := &llmtest.Fake{JSONFunc: func(string) (string, error) {
		return "", &llm.ModelError{Reason: llm.ReasonRateLimited, Err: errors.New("quota")}
	}}
	ts, _ := newTestServer(t, fake)

	resp, err := http.Post(ts.URL+"/api/generate", "application/json", strings.NewReader(`{"topic": "x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "outline", body["stage"])
}

func TestThemesAndHealth(t *testing.T) {
	ts, _ := newTestServer(t, researchOnly())

	resp, err := http.Get(ts.URL + "/api/themes")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Themes []struct {
			ID string `json:"id"`
		} `json:"themes"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Themes, 5)

	health, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)

	decks, err := http.Get(ts.URL + "/api/decks")
	require.NoError(t, err)
	decks.Body.Close()
	assert.Equal(t, http.StatusOK, decks.StatusCode)
}
