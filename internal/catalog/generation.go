package catalog

import (
	"slices"

	"model_catalog/internal/models"
)

// Prompt template identifiers used when a configuration names none.
const (
	DefaultChatPrompt = "prompts/default_chat.yaml"
	DefaultRagPrompt  = "prompts/default_rag.yaml"
)

// GenerationConfig is a resolved copy of models.LLMConfigParameters: prompt
// identifiers are always set, numeric fields stay optional.
type GenerationConfig struct {
	MaxTokenCount *int
	Temperature   *float64
	TopP          *float64
	StopSequence  []string
	ChatPrompt    string
	RagPrompt     string
}

// ResolveGenerationConfig fills in the default prompt identifiers. params is
// never modified and may be nil.
func ResolveGenerationConfig(params *models.LLMConfigParameters) GenerationConfig {
	cfg := GenerationConfig{
		ChatPrompt: DefaultChatPrompt,
		RagPrompt:  DefaultRagPrompt,
	}
	if params == nil {
		return cfg
	}

	p := params.Clone()
	cfg.MaxTokenCount = p.MaxTokenCount
	cfg.Temperature = p.Temperature
	cfg.TopP = p.TopP
	cfg.StopSequence = p.StopSequence
	if p.ChatPrompt != nil {
		cfg.ChatPrompt = *p.ChatPrompt
	}
	if p.RagPrompt != nil {
		cfg.RagPrompt = *p.RagPrompt
	}
	return cfg
}

// Parameters renders the resolved configuration back into parameters.
func (c GenerationConfig) Parameters() *models.LLMConfigParameters {
	p := &models.LLMConfigParameters{
		StopSequence: slices.Clone(c.StopSequence),
		ChatPrompt:   models.Ptr(c.ChatPrompt),
		RagPrompt:    models.Ptr(c.RagPrompt),
	}
	if c.MaxTokenCount != nil {
		p.MaxTokenCount = models.Ptr(*c.MaxTokenCount)
	}
	if c.Temperature != nil {
		p.Temperature = models.Ptr(*c.Temperature)
	}
	if c.TopP != nil {
		p.TopP = models.Ptr(*c.TopP)
	}
	return p
}

func (c GenerationConfig) clone() GenerationConfig {
	return ResolveGenerationConfig(c.Parameters())
}
