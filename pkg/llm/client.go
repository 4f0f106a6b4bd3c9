// Package llm is the structured model gateway: it wraps a generative model
// backend, bounds every call with a timeout and turns failures into ModelError.
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"google.golang.org/adk/model"
	"google.golang.org/genai"
)

// Generator is the gateway contract the pipeline stages depend on.
type Generator interface {
	// GenerateText produces free text bounded by maxTokens (0 = client default).
	GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error)
	// GenerateJSON produces raw JSON text intended to conform to schema.
	// The result is untrusted; use Structured to decode and validate it.
	GenerateJSON(ctx context.Context, prompt string, schema []byte) (string, error)
	// Model returns the backing model name.
	Model() string
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Timeout         time.Duration
	Temperature     float32
	MaxOutputTokens int
}

// DefaultClientConfig returns default configuration.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:         30 * time.Second,
		Temperature:     0.7,
		MaxOutputTokens: 8192,
	}
}

// Usage is the cumulative token usage reported by the backend.
type Usage struct {
	Calls           int64 `json:"calls"`
	PromptTokens    int64 `json:"promptTokens"`
	CandidateTokens int64 `json:"candidateTokens"`
	TotalTokens     int64 `json:"totalTokens"`
}

// Client implements Generator over an adk model.LLM. It owns no retries;
// compose it with WithRetry at the process boundary.
type Client struct {
	llm model.LLM
	cfg ClientConfig

	calls           atomic.Int64
	promptTokens    atomic.Int64
	candidateTokens atomic.Int64
	totalTokens     atomic.Int64
}

// NewClient creates a gateway client for the given model.
func NewClient(llm model.LLM, cfg ClientConfig) *Client {
	def := DefaultClientConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = def.MaxOutputTokens
	}
	return &Client{llm: llm, cfg: cfg}
}

// Model returns the model name.
func (c *Client) Model() string {
	return c.llm.Name()
}

// Usage returns a snapshot of token usage.
func (c *Client) Usage() Usage {
	return Usage{
		Calls:           c.calls.Load(),
		PromptTokens:    c.promptTokens.Load(),
		CandidateTokens: c.candidateTokens.Load(),
		TotalTokens:     c.totalTokens.Load(),
	}
}

// GenerateText produces a free-text response.
func (c *Client) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 || maxTokens > c.cfg.MaxOutputTokens {
		maxTokens = c.cfg.MaxOutputTokens
	}
	return c.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(c.cfg.Temperature),
		MaxOutputTokens: int32(maxTokens),
	})
}

// GenerateJSON asks for a JSON document conforming to schema.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema []byte) (string, error) {
	var sb strings.Builder
	sb.WriteString(prompt)
	if len(schema) > 0 {
		sb.WriteString("\n\nRespond with a single JSON document that conforms to this JSON schema:\n")
		sb.Write(schema)
		sb.WriteString("\nDo not wrap the JSON in markdown and do not add commentary.")
	}
	return c.generate(ctx, sb.String(), &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(c.cfg.Temperature),
		MaxOutputTokens:  int32(c.cfg.MaxOutputTokens),
		ResponseMIMEType: "application/json",
	})
}

func (c *Client) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	c.calls.Add(1)
	req := &model.LLMRequest{
		Model:    c.llm.Name(),
		Contents: []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		Config:   config,
	}

	var sb strings.Builder
	for resp, err := range c.llm.GenerateContent(ctx, req, false) {
		if err != nil {
			return "", classify(ctx, err)
		}
		if resp == nil {
			continue
		}
		if u := resp.UsageMetadata; u != nil {
			c.promptTokens.Add(int64(u.PromptTokenCount))
			c.candidateTokens.Add(int64(u.CandidatesTokenCount))
			c.totalTokens.Add(int64(u.TotalTokenCount))
		}
		if resp.Content == nil {
			continue
		}
		for _, part := range resp.Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				sb.WriteString(part.Text)
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return "", classify(ctx, err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", malformed(fmt.Errorf("%s: %w", c.llm.Name(), errEmptyResponse), "")
	}
	return text, nil
}
