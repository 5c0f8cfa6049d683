package catalog

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrock"
	"github.com/aws/aws-sdk-go-v2/service/bedrock/types"

	"model_catalog/internal/models"
)

// FoundationModelLister is the part of the Bedrock control-plane client used
// for discovery.
type FoundationModelLister interface {
	ListFoundationModels(ctx context.Context, params *bedrock.ListFoundationModelsInput, optFns ...func(*bedrock.Options)) (*bedrock.ListFoundationModelsOutput, error)
}

// DiscoverySource configures catalog discovery for one region.
type DiscoverySource struct {
	Lister     FoundationModelLister
	Parameters *models.BedrockParameters
	LLMConfig  *models.LLMConfig
}

// Discover lists the on-demand text models available in the region of params
// and builds one item per model, all sharing params and llmConfig.
func (l *Loader) Discover(ctx context.Context, lister FoundationModelLister, params *models.BedrockParameters, llmConfig *models.LLMConfig) ([]ModelCatalogItem, error) {
	if lister == nil {
		return nil, errors.New("catalog: foundation model lister is required")
	}
	if params == nil {
		return nil, &models.ValidationError{Field: keyBedrock, Reason: "is required"}
	}

	out, err := lister.ListFoundationModels(ctx, &bedrock.ListFoundationModelsInput{
		ByOutputModality: types.ModelModalityText,
		ByInferenceType:  types.InferenceTypeOnDemand,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list foundation models: %w", err)
	}

	var (
		items []ModelCatalogItem
		errs  []error
	)
	for _, summary := range out.ModelSummaries {
		if !discoverable(summary) {
			continue
		}
		modelID := aws.ToString(summary.ModelId)
		item, err := NewBedrockModelItem(modelID, params, llmConfig, l.resolver, l.options(nil)...)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", modelID, err))
			continue
		}
		items = append(items, item)
	}

	l.logger.Debug("Discovered foundation models", "region", params.Region, "items", len(items))
	return items, errors.Join(errs...)
}

// discoverable keeps active text models that can be invoked on demand.
func discoverable(summary types.FoundationModelSummary) bool {
	if aws.ToString(summary.ModelId) == "" {
		return false
	}
	if !slices.Contains(summary.OutputModalities, types.ModelModalityText) {
		return false
	}
	if !slices.Contains(summary.InferenceTypesSupported, types.InferenceTypeOnDemand) {
		return false
	}
	if summary.ModelLifecycle != nil && summary.ModelLifecycle.Status != types.FoundationModelLifecycleStatusActive {
		return false
	}
	if models.ProviderFromModelID(aws.ToString(summary.ModelId)) == models.ProviderStability {
		return false
	}
	return true
}
