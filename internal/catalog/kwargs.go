package catalog

import (
	"slices"

	"model_catalog/internal/models"
)

const defaultMaxTokenCount = 512

var anthropicStopSequences = []string{"\n\nHuman:"}

// DefaultModelKwargs synthesizes the vendor-native generation parameters for
// provider from cfg. Providers without a dedicated arm use the amazon policy.
//
// By default a field counts as provided when it is set, so explicit zeros and
// empty lists are sent to the model as given: max_token_count 0 becomes a
// max-length of 0, and an empty stop_sequence replaces the vendor stop list
// (anthropic loses "\n\nHuman:"). With legacy set, zero values and empty
// lists are treated as absent and replaced by the defaults.
func DefaultModelKwargs(provider models.ModelProvider, cfg GenerationConfig, legacy bool) map[string]any {
	d := defaulter{cfg: cfg, legacy: legacy}

	switch provider {
	case models.ProviderAnthropic:
		return map[string]any{
			"max_tokens_to_sample": d.maxTokens(),
			"temperature":          d.temperature(0),
			"top_k":                250,
			"top_p":                d.topP(1),
			"stop_sequences":       d.stops(anthropicStopSequences),
		}
	case models.ProviderAI21:
		return map[string]any{
			"maxTokens":        d.maxTokens(),
			"temperature":      d.temperature(0),
			"topP":             d.topP(0.5),
			"stopSequences":    d.stops([]string{}),
			"countPenalty":     map[string]any{"scale": 0},
			"presencePenalty":  map[string]any{"scale": 0},
			"frequencyPenalty": map[string]any{"scale": 0},
		}
	default:
		return map[string]any{
			"maxTokenCount": d.maxTokens(),
			"stopSequences": d.stops([]string{}),
			"temperature":   d.temperature(0),
			"topP":          d.topP(0.9),
		}
	}
}

type defaulter struct {
	cfg    GenerationConfig
	legacy bool
}

func (d defaulter) maxTokens() int {
	v := d.cfg.MaxTokenCount
	if v == nil || (d.legacy && *v == 0) {
		return defaultMaxTokenCount
	}
	return *v
}

func (d defaulter) temperature(def float64) float64 {
	return d.float(d.cfg.Temperature, def)
}

func (d defaulter) topP(def float64) float64 {
	return d.float(d.cfg.TopP, def)
}

func (d defaulter) float(v *float64, def float64) float64 {
	if v == nil || (d.legacy && *v == 0) {
		return def
	}
	return *v
}

func (d defaulter) stops(def []string) []string {
	v := d.cfg.StopSequence
	if v == nil || (d.legacy && len(v) == 0) {
		return slices.Clone(def)
	}
	return slices.Clone(v)
}

// copyKwargs deep-copies the maps and slices of a kwargs map.
func copyKwargs(kwargs map[string]any) map[string]any {
	if kwargs == nil {
		return nil
	}
	out := make(map[string]any, len(kwargs))
	for k, v := range kwargs {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyKwargs(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	default:
		return v
	}
}
