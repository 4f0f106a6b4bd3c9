package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title string   `json:"title" validate:"required"`
	Count int      `json:"count" validate:"gte=1"`
	Tags  []string `json:"tags,omitempty"`
}

type jsonOnly struct {
	raw    string
	err    error
	schema []byte
}

func (j *jsonOnly) Model() string { return "json-only" }

func (j *jsonOnly) GenerateText(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return "", nil
}

func (j *jsonOnly) GenerateJSON(ctx context.Context, prompt string, schema []byte) (string, error) {
	j.schema = schema
	return j.raw, j.err
}

func TestDecode_WeakTypesAndFences(t *testing.T) {
	out, err := Decode[sample]("```json\n{\"title\": \"Deck\", \"count\": \"3\", \"tags\": [\"a\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, sample{Title: "Deck", Count: 3, Tags: []string{"a"}}, out)
}

func TestDecode_SurroundingProse(t *testing.T) {
	out, err := Decode[sample]("Sure! Here it is: {\"title\":\"x\",\"count\":2} Hope that helps.")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"no json":     "I cannot help with that",
		"broken":      `{"title": "x", "count": }`,
		"invalid":     `{"title": "", "count": 1}`,
		"below range": `{"title": "x", "count": 0}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Decode[sample](raw)
			assert.Error(t, err)
		})
	}
}

func TestStructured_MalformedCarriesRaw(t *testing.T) {
	g := &jsonOnly{raw: "not json at all"}

	_, err := Structured[sample](context.Background(), g, "prompt")
	require.Error(t, err)

	var me *ModelError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, ReasonMalformedOutput, me.Reason)
	assert.Equal(t, "not json at all", me.Raw)
}

func TestStructured_PassesSchema(t *testing.T) {
	g := &jsonOnly{raw: `{"title":"x","count":1}`}

	out, err := Structured[sample](context.Background(), g, "prompt")
	require.NoError(t, err)
	assert.Equal(t, "x", out.Title)

	var schema map[string]any
	require.NoError(t, json.Unmarshal(g.schema, &schema))
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok, "schema: %s", g.schema)
	assert.Contains(t, props, "title")
	assert.Contains(t, props, "count")
}

func TestStructured_GatewayErrorPassesThrough(t *testing.T) {
	g := &jsonOnly{err: &ModelError{Reason: ReasonRateLimited}}

	_, err := Structured[sample](context.Background(), g, "prompt")
	assert.True(t, IsReason(err, ReasonRateLimited))
}
