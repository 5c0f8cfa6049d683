package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLLMConfigParameters(t *testing.T) {
	t.Run("all fields", func(t *testing.T) {
		params, err := ParseLLMConfigParameters(map[string]any{
			"max_token_count": 1024,
			"temperature":     0.7,
			"top_p":           0.95,
			"stop_sequence":   []any{"User:", "###"},
			"chat_prompt":     "prompts/chat.yaml",
			"rag_prompt":      "prompts/rag.yaml",
		})
		require.NoError(t, err)
		assert.Equal(t, 1024, *params.MaxTokenCount)
		assert.Equal(t, 0.7, *params.Temperature)
		assert.Equal(t, 0.95, *params.TopP)
		assert.Equal(t, []string{"User:", "###"}, params.StopSequence)
		assert.Equal(t, "prompts/chat.yaml", *params.ChatPrompt)
		assert.Equal(t, "prompts/rag.yaml", *params.RagPrompt)
	})

	t.Run("nil document", func(t *testing.T) {
		params, err := ParseLLMConfigParameters(nil)
		require.NoError(t, err)
		assert.Equal(t, &LLMConfigParameters{}, params)
	})

	t.Run("zero values are present", func(t *testing.T) {
		params, err := ParseLLMConfigParameters(map[string]any{
			"temperature":   0,
			"stop_sequence": []any{},
		})
		require.NoError(t, err)
		require.NotNil(t, params.Temperature)
		assert.Equal(t, 0.0, *params.Temperature)
		assert.NotNil(t, params.StopSequence)
		assert.Empty(t, params.StopSequence)
	})

	t.Run("single stop sequence string", func(t *testing.T) {
		params, err := ParseLLMConfigParameters(map[string]any{"stop_sequence": "\n\nHuman:"})
		require.NoError(t, err)
		assert.Equal(t, []string{"\n\nHuman:"}, params.StopSequence)
	})

	t.Run("json numbers", func(t *testing.T) {
		params, err := ParseLLMConfigParameters(map[string]any{
			"max_token_count": json.Number("256"),
			"top_p":           json.Number("0.5"),
		})
		require.NoError(t, err)
		assert.Equal(t, 256, *params.MaxTokenCount)
		assert.Equal(t, 0.5, *params.TopP)
	})
}

func TestParseLLMConfigParameters_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
	}{
		{"fractional max tokens", map[string]any{"max_token_count": 12.5}},
		{"overflowing max tokens", map[string]any{"max_token_count": 1e300}},
		{"max tokens above int32", map[string]any{"max_token_count": int64(math.MaxInt32) + 1}},
		{"negative max tokens", map[string]any{"max_token_count": -5}},
		{"string temperature", map[string]any{"temperature": "hot"}},
		{"numeric stop sequence", map[string]any{"stop_sequence": 7}},
		{"mixed stop sequence list", map[string]any{"stop_sequence": []any{"a", 1}}},
		{"numeric chat prompt", map[string]any{"chat_prompt": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params, err := ParseLLMConfigParameters(tt.doc)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Nil(t, params)
		})
	}
}

func TestParseLLMConfigParameters_MaxTokenBounds(t *testing.T) {
	for _, v := range []any{0, math.MaxInt32, float64(math.MaxInt32)} {
		params, err := ParseLLMConfigParameters(map[string]any{"max_token_count": v})
		require.NoError(t, err, "%v", v)
		assert.EqualValues(t, v, *params.MaxTokenCount)
	}
}

func TestLLMConfigParameters_RoundTrip(t *testing.T) {
	docs := []Document{
		(&LLMConfigParameters{}).ToDict(),
		(&LLMConfigParameters{MaxTokenCount: Ptr(300), Temperature: Ptr(0.2)}).ToDict(),
		(&LLMConfigParameters{
			MaxTokenCount: Ptr(2048),
			Temperature:   Ptr(0.0),
			TopP:          Ptr(1.0),
			StopSequence:  []string{"Observation:"},
			ChatPrompt:    Ptr("prompts/a.yaml"),
			RagPrompt:     Ptr("prompts/b.yaml"),
		}).ToDict(),
	}

	for _, doc := range docs {
		params, err := ParseLLMConfigParameters(doc)
		require.NoError(t, err)
		assert.Equal(t, doc, params.ToDict())
	}
}

func TestLLMConfigParameters_Clone(t *testing.T) {
	original := &LLMConfigParameters{StopSequence: []string{"a"}, Temperature: Ptr(0.3)}
	clone := original.Clone()
	clone.StopSequence[0] = "b"
	*clone.Temperature = 0.9

	assert.Equal(t, []string{"a"}, original.StopSequence)
	assert.Equal(t, 0.3, *original.Temperature)
}

func TestParseLLMConfig(t *testing.T) {
	cfg, err := ParseLLMConfig(map[string]any{
		"type":       "LLMConfig",
		"parameters": map[string]any{"top_p": 0.8},
	})
	require.NoError(t, err)
	assert.Equal(t, LLMConfigType, cfg.Type)
	assert.Equal(t, 0.8, *cfg.Parameters.TopP)

	untyped, err := ParseLLMConfig(map[string]any{"parameters": map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, LLMConfigType, untyped.Type)

	_, err = ParseLLMConfig(map[string]any{"type": "Other"})
	assert.ErrorIs(t, err, ErrValidation)

	var verr *ValidationError
	_, err = ParseLLMConfig(map[string]any{"parameters": map[string]any{"top_p": "x"}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "parameters.top_p", verr.Field)
}
