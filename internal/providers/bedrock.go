package providers

import (
	"context"
	"fmt"
	"maps"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"model_catalog/internal/models"
)

const jsonContentType = "application/json"

// BedrockLLM is a TextGenerator backed by Bedrock InvokeModel.
type BedrockLLM struct {
	client      BedrockInvoker
	modelID     string
	provider    models.ModelProvider
	modelKwargs map[string]any
}

// NewBedrockLLM binds client to modelID. modelKwargs is copied.
func NewBedrockLLM(client BedrockInvoker, modelID string, modelKwargs map[string]any) *BedrockLLM {
	return &BedrockLLM{
		client:      client,
		modelID:     modelID,
		provider:    models.ProviderFromModelID(modelID),
		modelKwargs: maps.Clone(modelKwargs),
	}
}

// ModelID returns the Bedrock model identifier.
func (l *BedrockLLM) ModelID() string {
	return l.modelID
}

// Provider returns the vendor the request/response format is chosen by.
func (l *BedrockLLM) Provider() models.ModelProvider {
	return l.provider
}

// ModelKwargs returns a copy of the generation parameters sent with every call.
func (l *BedrockLLM) ModelKwargs() map[string]any {
	return maps.Clone(l.modelKwargs)
}

// Invoke sends prompt to the model and returns the completion text.
func (l *BedrockLLM) Invoke(ctx context.Context, prompt string, params map[string]any) (string, error) {
	kwargs := maps.Clone(l.modelKwargs)
	if kwargs == nil {
		kwargs = make(map[string]any, len(params))
	}
	maps.Copy(kwargs, params)

	body, err := buildRequestBody(l.provider, prompt, kwargs)
	if err != nil {
		return "", fmt.Errorf("bedrock: failed to build request for %s: %w", l.modelID, err)
	}

	out, err := l.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(l.modelID),
		Body:        body,
		ContentType: aws.String(jsonContentType),
		Accept:      aws.String(jsonContentType),
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: invoke %s: %w", l.modelID, err)
	}

	text, err := parseResponseBody(l.provider, out.Body)
	if err != nil {
		return "", fmt.Errorf("bedrock: %s: %w", l.modelID, err)
	}
	return text, nil
}
