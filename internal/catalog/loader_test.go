package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model_catalog/internal/models"
)

const catalogYAML = `
llm_config:
  max_token_count: 1024
  temperature: 0.2
models:
  - model_id: anthropic.claude-v2
    bedrock:
      region: us-east-1
  - model_id: amazon.titan-text-express-v1
    bedrock:
      type: AmazonBedrock
      parameters:
        region: eu-central-1
        profile: bedrock
    llm_config:
      type: LLMConfig
      parameters:
        top_p: 0.5
        stop_sequence: "User:"
        chat_prompt: prompts/titan_chat.yaml
  - model_id: ai21.j2-ultra
    bedrock:
      region: us-east-1
    model_kwargs:
      maxTokens: 200
  - model_id: cohere.command-text-v14
    bedrock:
      region: atlantis-1
  - bedrock:
      region: us-east-1
`

func TestLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalogYAML), 0o600))

	loader := NewLoader(&recordingResolver{}, false)
	items, err := loader.LoadFile(path)

	require.Len(t, items, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "models[3]")
	assert.Contains(t, err.Error(), "models[4]")

	claude := items[0].(*BedrockModelItem)
	assert.Equal(t, "Bedrock - anthropic.claude-v2 - (us-east-1)", claude.Name())
	assert.Equal(t, 1024, claude.ModelKwargs()["max_tokens_to_sample"])
	assert.Equal(t, 0.2, claude.ModelKwargs()["temperature"])

	titan := items[1].(*BedrockModelItem)
	assert.Equal(t, "Bedrock - amazon.titan-text-express-v1 - (eu-central-1)", titan.Name())
	assert.Equal(t, "bedrock", *titan.Parameters().Profile)
	assert.Equal(t, "prompts/titan_chat.yaml", titan.ChatPromptIdentifier())
	assert.Equal(t, 0.5, titan.ModelKwargs()["topP"])
	assert.Equal(t, 512, titan.ModelKwargs()["maxTokenCount"], "entry llm_config replaces the document default")
	assert.Equal(t, []string{"User:"}, titan.ModelKwargs()["stopSequences"])

	jurassic := items[2].(*BedrockModelItem)
	assert.Equal(t, map[string]any{"maxTokens": 200}, jurassic.ModelKwargs())
}

func TestLoader_LoadFileErrors(t *testing.T) {
	loader := NewLoader(&recordingResolver{}, false)

	_, err := loader.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("models: [\n"), 0o600))
	_, err = loader.LoadFile(path)
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	items, err := loader.LoadFile(empty)
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestLoader_LoadDocument(t *testing.T) {
	loader := NewLoader(&recordingResolver{}, false)

	t.Run("models must be a list", func(t *testing.T) {
		_, err := loader.LoadDocument(models.Document{"models": "nope"})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "models", verr.Field)
	})

	t.Run("non-object entry", func(t *testing.T) {
		items, err := loader.LoadDocument(models.Document{"models": []any{"anthropic.claude-v2"}})
		assert.Empty(t, items)
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("nested field names", func(t *testing.T) {
		_, err := loader.LoadDocument(models.Document{"models": []any{
			map[string]any{"model_id": "anthropic.claude-v2", "bedrock": map[string]any{}},
		}})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "bedrock.region", verr.Field)
	})

	t.Run("typed bedrock with wrong type", func(t *testing.T) {
		_, err := loader.LoadDocument(models.Document{"models": []any{
			map[string]any{
				"model_id": "anthropic.claude-v2",
				"bedrock":  map[string]any{"type": "OpenAI", "parameters": map[string]any{"region": "us-east-1"}},
			},
		}})
		var verr *models.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "bedrock.type", verr.Field)
	})
}

func TestLoader_LegacyFalsyDefaults(t *testing.T) {
	doc := models.Document{
		"llm_config": map[string]any{"max_token_count": 0},
		"models": []any{
			map[string]any{"model_id": "amazon.titan-text-express-v1", "bedrock": map[string]any{"region": "us-east-1"}},
		},
	}

	items, err := NewLoader(&recordingResolver{}, false).LoadDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, 0, items[0].(*BedrockModelItem).ModelKwargs()["maxTokenCount"])

	items, err = NewLoader(&recordingResolver{}, true).LoadDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, 512, items[0].(*BedrockModelItem).ModelKwargs()["maxTokenCount"])
}

func TestLoader_LoadEntries(t *testing.T) {
	entries := []*models.CatalogEntry{
		{
			ID:          uuid.New(),
			ModelID:     "anthropic.claude-v2",
			Bedrock:     models.JSONB{"region": "us-west-2"},
			LLMConfig:   models.JSONB{"max_token_count": 2048},
			ModelKwargs: models.JSONB{},
			Enabled:     true,
		},
		{
			ID:      uuid.New(),
			ModelID: "ai21.j2-ultra",
			Bedrock: models.JSONB{"region": "us-west-2"},
			Enabled: false,
		},
		{
			ID:      uuid.New(),
			ModelID: "meta.llama2-13b-chat-v1",
			Bedrock: models.JSONB{},
			Enabled: true,
		},
	}

	items, err := NewLoader(&recordingResolver{}, false).LoadEntries(entries)
	require.Len(t, items, 1)
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 2048, items[0].(*BedrockModelItem).ModelKwargs()["max_tokens_to_sample"])
}

type staticEntries struct {
	entries []*models.CatalogEntry
	err     error
}

func (s staticEntries) List(ctx context.Context, enabledOnly bool) ([]*models.CatalogEntry, error) {
	return s.entries, s.err
}

func TestLoader_LoadAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - model_id: anthropic.claude-v2
    bedrock: {region: us-east-1}
`), 0o600))

	entries := staticEntries{entries: []*models.CatalogEntry{
		{ID: uuid.New(), ModelID: "anthropic.claude-v2", Bedrock: models.JSONB{"region": "us-east-1"}, Enabled: true},
		{ID: uuid.New(), ModelID: "cohere.command-text-v14", Bedrock: models.JSONB{"region": "us-east-1"}, Enabled: true},
	}}

	loader := NewLoader(&recordingResolver{}, false)
	items, err := loader.LoadAll(context.Background(), Sources{File: path, Entries: entries})

	require.Len(t, items, 2)
	assert.ErrorIs(t, err, ErrDuplicateItem)
	assert.Equal(t, "Bedrock - anthropic.claude-v2 - (us-east-1)", items[0].Name())
	assert.Equal(t, "Bedrock - cohere.command-text-v14 - (us-east-1)", items[1].Name())
}

func TestLoader_LoadAllSourceFailure(t *testing.T) {
	cause := errors.New("connection refused")
	items, err := NewLoader(&recordingResolver{}, false).LoadAll(context.Background(), Sources{
		Entries: staticEntries{err: cause},
	})
	assert.Empty(t, items)
	assert.ErrorIs(t, err, cause)
}
