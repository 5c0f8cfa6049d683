package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"model_catalog/internal/models"
)

// ErrUnsupportedProvider is returned for vendors that do not produce text.
var ErrUnsupportedProvider = errors.New("provider does not support text generation")

const (
	humanPrompt     = "\n\nHuman:"
	assistantPrompt = "\n\nAssistant:"
)

// buildRequestBody renders the vendor-native InvokeModel body.
func buildRequestBody(provider models.ModelProvider, prompt string, kwargs map[string]any) ([]byte, error) {
	body := make(map[string]any, len(kwargs)+1)

	switch provider {
	case models.ProviderAnthropic:
		for k, v := range kwargs {
			body[k] = v
		}
		body["prompt"] = humanAssistantPrompt(prompt)
	case models.ProviderAI21, models.ProviderCohere, models.ProviderMeta, models.ProviderMistral:
		for k, v := range kwargs {
			body[k] = v
		}
		body["prompt"] = prompt
	case models.ProviderAmazon, models.ProviderUnknown:
		body["inputText"] = prompt
		body["textGenerationConfig"] = kwargs
	default:
		// stability models generate images
		return nil, fmt.Errorf("%s: %w", provider, ErrUnsupportedProvider)
	}

	return json.Marshal(body)
}

// humanAssistantPrompt wraps a bare prompt into the Human/Assistant framing
// Anthropic text-completion models require.
func humanAssistantPrompt(prompt string) string {
	if strings.HasPrefix(prompt, humanPrompt) {
		if strings.Contains(prompt, assistantPrompt) {
			return prompt
		}
		return prompt + assistantPrompt
	}
	return humanPrompt + " " + prompt + assistantPrompt
}

type anthropicResponse struct {
	Completion string `json:"completion"`
}

type ai21Response struct {
	Completions []struct {
		Data struct {
			Text string `json:"text"`
		} `json:"data"`
	} `json:"completions"`
}

type amazonResponse struct {
	Results []struct {
		OutputText string `json:"outputText"`
	} `json:"results"`
}

type cohereResponse struct {
	Generations []struct {
		Text string `json:"text"`
	} `json:"generations"`
}

type metaResponse struct {
	Generation string `json:"generation"`
}

type mistralResponse struct {
	Outputs []struct {
		Text string `json:"text"`
	} `json:"outputs"`
}

// parseResponseBody extracts the completion text from a vendor-native body.
func parseResponseBody(provider models.ModelProvider, body []byte) (string, error) {
	switch provider {
	case models.ProviderAnthropic:
		var resp anthropicResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to decode anthropic response: %w", err)
		}
		return resp.Completion, nil
	case models.ProviderAI21:
		var resp ai21Response
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to decode ai21 response: %w", err)
		}
		if len(resp.Completions) == 0 {
			return "", errors.New("ai21 response has no completions")
		}
		return resp.Completions[0].Data.Text, nil
	case models.ProviderCohere:
		var resp cohereResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to decode cohere response: %w", err)
		}
		if len(resp.Generations) == 0 {
			return "", errors.New("cohere response has no generations")
		}
		return resp.Generations[0].Text, nil
	case models.ProviderMeta:
		var resp metaResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to decode meta response: %w", err)
		}
		return resp.Generation, nil
	case models.ProviderMistral:
		var resp mistralResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to decode mistral response: %w", err)
		}
		if len(resp.Outputs) == 0 {
			return "", errors.New("mistral response has no outputs")
		}
		return resp.Outputs[0].Text, nil
	case models.ProviderAmazon, models.ProviderUnknown:
		var resp amazonResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return "", fmt.Errorf("failed to decode amazon response: %w", err)
		}
		if len(resp.Results) == 0 {
			return "", errors.New("amazon response has no results")
		}
		return resp.Results[0].OutputText, nil
	default:
		return "", fmt.Errorf("%s: %w", provider, ErrUnsupportedProvider)
	}
}
