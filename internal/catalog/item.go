package catalog

import (
	"context"
	"errors"
	"fmt"

	"model_catalog/internal/models"
	"model_catalog/internal/providers"
	"model_catalog/internal/utils"
)

// ModelCatalogItem is a named, selectable model configuration.
type ModelCatalogItem interface {
	// Name is the human-readable display name, unique within a catalog
	Name() string
	ChatPromptIdentifier() string
	RagPromptIdentifier() string

	// GetClient returns a freshly resolved client handle
	GetClient(ctx context.Context) (providers.TextGenerator, error)

	// Describe returns a serializable summary of the item
	Describe() ItemInfo
}

// ItemInfo is the public description of a catalog item.
type ItemInfo struct {
	Name        string         `json:"name"`
	ModelID     string         `json:"model_id"`
	Provider    string         `json:"provider"`
	Region      string         `json:"region"`
	EndpointURL *string        `json:"endpoint_url"`
	Profile     *string        `json:"profile"`
	ChatPrompt  string         `json:"chat_prompt"`
	RagPrompt   string         `json:"rag_prompt"`
	ModelKwargs map[string]any `json:"model_kwargs"`
}

// Option configures a BedrockModelItem.
type Option func(*itemOptions)

type itemOptions struct {
	modelKwargs map[string]any
	legacy      bool
}

// WithModelKwargs supplies explicit generation parameters. A non-empty map is
// used verbatim and suppresses the provider defaults.
func WithModelKwargs(kwargs map[string]any) Option {
	return func(o *itemOptions) {
		o.modelKwargs = kwargs
	}
}

// WithLegacyFalsyDefaults treats zero values and empty lists in the
// generation config as absent when synthesizing defaults.
func WithLegacyFalsyDefaults() Option {
	return func(o *itemOptions) {
		o.legacy = true
	}
}

// BedrockModelItem is a catalog item backed by an Amazon Bedrock model. It is
// immutable after construction.
type BedrockModelItem struct {
	name        string
	modelID     string
	provider    models.ModelProvider
	params      *models.BedrockParameters
	generation  GenerationConfig
	modelKwargs map[string]any
	resolver    providers.ClientResolver
}

var _ ModelCatalogItem = (*BedrockModelItem)(nil)

// NewBedrockModelItem builds a catalog item for modelID. llmConfig may be nil.
// None of the arguments are retained; params and llmConfig are copied.
func NewBedrockModelItem(modelID string, params *models.BedrockParameters, llmConfig *models.LLMConfig, resolver providers.ClientResolver, opts ...Option) (*BedrockModelItem, error) {
	if modelID == "" {
		return nil, &models.ValidationError{Field: "model_id", Reason: "is required"}
	}
	if params == nil {
		return nil, &models.ValidationError{Field: "bedrock", Reason: "is required"}
	}
	if !params.Region.IsValid() {
		return nil, &models.ValidationError{Field: "region", Reason: fmt.Sprintf("unknown AWS region %q", params.Region)}
	}
	if resolver == nil {
		return nil, errors.New("catalog: client resolver is required")
	}

	var options itemOptions
	for _, opt := range opts {
		opt(&options)
	}

	var llmParams *models.LLMConfigParameters
	if llmConfig != nil {
		llmParams = llmConfig.Parameters
	}

	item := &BedrockModelItem{
		modelID:    modelID,
		provider:   models.ProviderFromModelID(modelID),
		params:     params.Clone(),
		generation: ResolveGenerationConfig(llmParams),
		resolver:   resolver,
	}
	item.name = DisplayName(modelID, item.params.Region)

	if len(options.modelKwargs) > 0 {
		item.modelKwargs = copyKwargs(options.modelKwargs)
	} else {
		if !item.provider.IsKnown() {
			utils.NewLogger("catalog").Debug("Unrecognized model provider, using amazon defaults", "model_id", modelID)
		}
		item.modelKwargs = DefaultModelKwargs(item.provider, item.generation, options.legacy)
	}

	return item, nil
}

// DisplayName formats the catalog name of a Bedrock model.
func DisplayName(modelID string, region models.AWSRegion) string {
	return fmt.Sprintf("Bedrock - %s - (%s)", modelID, region)
}

func (i *BedrockModelItem) Name() string {
	return i.name
}

func (i *BedrockModelItem) ModelID() string {
	return i.modelID
}

func (i *BedrockModelItem) Provider() models.ModelProvider {
	return i.provider
}

// Parameters returns a copy of the connection settings.
func (i *BedrockModelItem) Parameters() *models.BedrockParameters {
	return i.params.Clone()
}

// GenerationConfig returns a copy of the resolved generation settings.
func (i *BedrockModelItem) GenerationConfig() GenerationConfig {
	return i.generation.clone()
}

// ModelKwargs returns a copy of the generation parameters sent to the model.
func (i *BedrockModelItem) ModelKwargs() map[string]any {
	return copyKwargs(i.modelKwargs)
}

func (i *BedrockModelItem) ChatPromptIdentifier() string {
	return i.generation.ChatPrompt
}

func (i *BedrockModelItem) RagPromptIdentifier() string {
	return i.generation.RagPrompt
}

// GetClient resolves a bedrock-runtime client for the item's region, profile
// and endpoint and binds it to the model. Every call resolves anew. Resolver
// errors are returned as is.
func (i *BedrockModelItem) GetClient(ctx context.Context) (providers.TextGenerator, error) {
	params := i.params.Clone()
	client, err := i.resolver.ResolveClient(ctx, providers.ClientRequest{
		ServiceName: providers.BedrockRuntimeService,
		Region:      string(params.Region),
		EndpointURL: params.EndpointURL,
		Profile:     params.Profile,
	})
	if err != nil {
		return nil, err
	}
	return providers.NewBedrockLLM(client, i.modelID, copyKwargs(i.modelKwargs)), nil
}

func (i *BedrockModelItem) Describe() ItemInfo {
	params := i.params.Clone()
	return ItemInfo{
		Name:        i.name,
		ModelID:     i.modelID,
		Provider:    i.provider.String(),
		Region:      string(params.Region),
		EndpointURL: params.EndpointURL,
		Profile:     params.Profile,
		ChatPrompt:  i.generation.ChatPrompt,
		RagPrompt:   i.generation.RagPrompt,
		ModelKwargs: copyKwargs(i.modelKwargs),
	}
}
