package models

import "strings"

// ModelProvider is the vendor tag derived from a Bedrock model identifier.
type ModelProvider string

const (
	ProviderAnthropic ModelProvider = "anthropic"
	ProviderAI21      ModelProvider = "ai21"
	ProviderAmazon    ModelProvider = "amazon"
	ProviderCohere    ModelProvider = "cohere"
	ProviderMeta      ModelProvider = "meta"
	ProviderMistral   ModelProvider = "mistral"
	ProviderStability ModelProvider = "stability"

	// ProviderUnknown covers every prefix outside the known set.
	ProviderUnknown ModelProvider = "unknown"
)

// modelIDSeparator splits the vendor prefix from the rest of a model ID,
// e.g. "anthropic.claude-v2".
const modelIDSeparator = "."

// ProviderFromModelID derives the provider from the prefix of modelID up to
// the first separator. Unrecognized prefixes map to ProviderUnknown.
func ProviderFromModelID(modelID string) ModelProvider {
	prefix, _, _ := strings.Cut(modelID, modelIDSeparator)
	switch p := ModelProvider(prefix); p {
	case ProviderAnthropic, ProviderAI21, ProviderAmazon, ProviderCohere,
		ProviderMeta, ProviderMistral, ProviderStability:
		return p
	default:
		return ProviderUnknown
	}
}

// String returns the provider tag.
func (p ModelProvider) String() string {
	return string(p)
}

// IsKnown reports whether p is one of the recognized vendors.
func (p ModelProvider) IsKnown() bool {
	return p != ProviderUnknown && ProviderFromModelID(string(p)) == p
}
