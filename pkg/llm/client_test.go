package llm

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	ailibmodel "github.com/cpunion/ailib/adk/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

type mockModel struct {
	mu       sync.Mutex
	texts    []string
	err      error
	block    bool
	requests []*model.LLMRequest
}

func (m *mockModel) Name() string {
	return "mock"
}

func (m *mockModel) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	return func(yield func(*model.LLMResponse, error) bool) {
		if m.block {
			<-ctx.Done()
			yield(nil, ctx.Err())
			return
		}
		if m.err != nil {
			yield(nil, m.err)
			return
		}
		parts := make([]*genai.Part, 0, len(m.texts))
		for _, t := range m.texts {
			parts = append(parts, &genai.Part{Text: t})
		}
		yield(&model.LLMResponse{Content: &genai.Content{Role: "model", Parts: parts}}, nil)
	}
}

func TestClient_GenerateTextJoinsParts(t *testing.T) {
	m := &mockModel{texts: []string{"Hello, ", "world"}}
	c := NewClient(m, DefaultClientConfig())

	out, err := c.GenerateText(context.Background(), "say hi", 100)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", out)

	require.Len(t, m.requests, 1)
	req := m.requests[0]
	assert.Equal(t, int32(100), req.Config.MaxOutputTokens)
	assert.Empty(t, req.Config.ResponseMIMEType)
	require.Len(t, req.Contents, 1)
	assert.Equal(t, "say hi", req.Contents[0].Parts[0].Text)
}

func TestClient_GenerateJSONRequestsJSON(t *testing.T) {
	m := &mockModel{texts: []string{`{"a":1}`}}
	c := NewClient(m, DefaultClientConfig())

	out, err := c.GenerateJSON(context.Background(), "give json", []byte(`{"type":"object"}`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	req := m.requests[0]
	assert.Equal(t, "application/json", req.Config.ResponseMIMEType)
	assert.Contains(t, req.Contents[0].Parts[0].Text, `{"type":"object"}`)
}

func TestClient_EmptyResponseIsMalformed(t *testing.T) {
	c := NewClient(&mockModel{texts: []string{"   "}}, DefaultClientConfig())

	_, err := c.GenerateText(context.Background(), "x", 0)
	require.Error(t, err)
	assert.True(t, IsReason(err, ReasonMalformedOutput))
}

func TestClient_TimeoutIsClassified(t *testing.T) {
	c := NewClient(&mockModel{block: true}, ClientConfig{Timeout: 20 * time.Millisecond})

	start := time.Now()
	_, err := c.GenerateText(context.Background(), "x", 0)
	require.Error(t, err)
	assert.True(t, IsReason(err, ReasonTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_CancellationPropagates(t *testing.T) {
	c := NewClient(&mockModel{block: true}, ClientConfig{Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := c.GenerateText(ctx, "x", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, IsReason(err, ReasonTimeout))
}

func TestClient_RateLimitIsClassified(t *testing.T) {
	c := NewClient(&mockModel{err: errors.New("Error 429, Message: quota, Status: RESOURCE_EXHAUSTED")}, DefaultClientConfig())

	_, err := c.GenerateText(context.Background(), "x", 0)
	assert.True(t, IsReason(err, ReasonRateLimited), "got %v", err)
}

func TestClient_UnknownError(t *testing.T) {
	c := NewClient(&mockModel{err: errors.New("boom")}, DefaultClientConfig())

	_, err := c.GenerateText(context.Background(), "x", 0)
	assert.True(t, IsReason(err, ReasonUnknown))
	assert.True(t, strings.Contains(err.Error(), "boom"))
}

func TestClient_RecordsUsage(t *testing.T) {
	mock := ailibmodel.NewMockLLM(&model.LLMResponse{
		Content: &genai.Content{
			Role:  "model",
			Parts: []*genai.Part{{Text: "hello"}},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     11,
			CandidatesTokenCount: 22,
			TotalTokenCount:      33,
		},
	})
	c := NewClient(mock, DefaultClientConfig())

	out, err := c.GenerateText(context.Background(), "x", 0)
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "mock-llm", c.Model())
	assert.Equal(t, Usage{Calls: 1, PromptTokens: 11, CandidateTokens: 22, TotalTokens: 33}, c.Usage())
}
