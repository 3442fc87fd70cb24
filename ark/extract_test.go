package ark

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{
			name: "responses output with reasoning first",
			body: `{"output":[{"type":"reasoning","summary":[]},{"type":"message","role":"assistant","content":[{"type":"output_text","text":"{\"a\":1}"}]}]}`,
			want: `{"a":1}`,
		},
		{
			name: "last message wins",
			body: `{"output":[{"type":"message","content":[{"type":"output_text","text":"first"}]},{"type":"message","content":[{"type":"output_text","text":"second"}]}]}`,
			want: "second",
		},
		{
			name: "message without output_text falls back to earlier message",
			body: `{"output":[{"type":"message","content":[{"type":"output_text","text":"early"}]},{"type":"message","content":[{"type":"refusal","text":"no"}]}]}`,
			want: "early",
		},
		{
			name: "output as string",
			body: `{"output":"plain answer"}`,
			want: "plain answer",
		},
		{
			name: "chat completion choices",
			body: `{"choices":[{"message":{"role":"assistant","content":"from choices"}}]}`,
			want: "from choices",
		},
		{
			name: "text field",
			body: `{"text":"from text"}`,
			want: "from text",
		},
		{
			name: "content string",
			body: `{"content":"from content"}`,
			want: "from content",
		},
		{
			name: "content object is re-serialized",
			body: `{"content":{"high_purine_foods":[]}}`,
			want: `{"high_purine_foods":[]}`,
		},
		{
			name: "JSON string body",
			body: `"just a string"`,
			want: "just a string",
		},
		{
			name: "unknown envelope returns body",
			body: `{"high_purine_foods":[]}`,
			want: `{"high_purine_foods":[]}`,
		},
		{
			name: "not JSON",
			body: "  free text  ",
			want: "free text",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractText([]byte(tc.body)))
		})
	}
}

func TestExtractJSON(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		obj, err := ExtractJSON(` {"a": 1} `)
		require.NoError(t, err)
		assert.JSONEq(t, `1`, string(obj["a"]))
	})

	t.Run("markdown fence", func(t *testing.T) {
		text := "Here is the result:\n```json\n{\"a\": {\"b\": 2}}\n```\nEnjoy."
		obj, err := ExtractJSON(text)
		require.NoError(t, err)
		assert.JSONEq(t, `{"b": 2}`, string(obj["a"]))
	})

	t.Run("fence without language tag", func(t *testing.T) {
		obj, err := ExtractJSON("```\n{\"a\": 3}\n```")
		require.NoError(t, err)
		assert.JSONEq(t, `3`, string(obj["a"]))
	})

	t.Run("prose around object", func(t *testing.T) {
		obj, err := ExtractJSON(`Sure! {"a": {"b": [1, 2]}} Let me know.`)
		require.NoError(t, err)
		assert.JSONEq(t, `{"b": [1, 2]}`, string(obj["a"]))
	})

	t.Run("several objects prefers the last valid one", func(t *testing.T) {
		obj, err := ExtractJSON(`first {"x": 1} then {"y": 2} and {broken}`)
		require.NoError(t, err)
		_, hasY := obj["y"]
		assert.True(t, hasY)
	})

	t.Run("no braces", func(t *testing.T) {
		_, err := ExtractJSON("I could not see any food.")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoJSON)
		assert.Contains(t, err.Error(), "I could not see any food.")
	})

	t.Run("braces but nothing parses", func(t *testing.T) {
		_, err := ExtractJSON("{not json at all}")
		assert.ErrorIs(t, err, ErrMalformedJSON)
	})

	t.Run("null is not an object", func(t *testing.T) {
		_, err := ExtractJSON("null")
		assert.ErrorIs(t, err, ErrNoJSON)
	})

	t.Run("error preview is truncated", func(t *testing.T) {
		_, err := ExtractJSON(strings.Repeat("x", 2000))
		require.Error(t, err)
		assert.Less(t, len(err.Error()), 700)
	})
}

func TestParseResponsesEnvelopeWithFence(t *testing.T) {
	answer := "```json\n" + `{
  "high_purine_foods": [{"food_name": "shrimp", "purine_value": 180, "coordinates": {"x1": 10, "y1": 20, "x2": 110, "y2": 220}}],
  "low_purine_foods": [{"food_name": "rice", "purine_value": 18}]
}` + "\n```"
	body, err := json.Marshal(map[string]any{
		"output": []any{
			map[string]any{"type": "message", "content": []any{
				map[string]any{"type": "output_text", "text": answer},
			}},
		},
	})
	require.NoError(t, err)

	result, err := Parse(body)
	require.NoError(t, err)

	require.Len(t, result.High, 1)
	assert.Equal(t, "shrimp", result.High[0].Name)
	assert.Equal(t, 180.0, result.High[0].PurineValue)
	require.NotNil(t, result.High[0].Coordinates)
	assert.Equal(t, 220.0, result.High[0].Coordinates.Y2)
	assert.Empty(t, result.Medium)
	assert.NotNil(t, result.Medium)
	require.Len(t, result.Low, 1)
	assert.Nil(t, result.Low[0].Coordinates)
}

func TestParseChoicesWithEmptyContentUsesBody(t *testing.T) {
	_, err := Parse([]byte(`{"choices":[{"message":{"content":""}}]}`))
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, []string{"choices"}, schemaErr.Keys)
}
