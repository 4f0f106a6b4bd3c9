// Package llmtest provides a scripted llm.Generator for tests.
package llmtest

import (
	"context"
	"strings"
	"sync"
)

// Fake is a scripted generator. Unset funcs return an empty answer.
type Fake struct {
	Name     string
	TextFunc func(prompt string) (string, error)
	JSONFunc func(prompt string) (string, error)

	mu      sync.Mutex
	prompts []string
}

func (f *Fake) Model() string {
	if f.Name == "" {
		return "fake"
	}
	return f.Name
}

func (f *Fake) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	f.record(prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.TextFunc == nil {
		return "", nil
	}
	return f.TextFunc(prompt)
}

func (f *Fake) GenerateJSON(ctx context.Context, prompt string, schema []byte) (string, error) {
	f.record(prompt)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.JSONFunc == nil {
		return "{}", nil
	}
	return f.JSONFunc(prompt)
}

// Prompts returns every prompt seen so far.
func (f *Fake) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// PromptsContaining returns prompts that contain substr.
func (f *Fake) PromptsContaining(substr string) []string {
	var out []string
	for _, p := range f.Prompts() {
		if strings.Contains(p, substr) {
			out = append(out, p)
		}
	}
	return out
}

func (f *Fake) record(prompt string) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
}
