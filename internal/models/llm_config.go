package models

// LLMConfigType is the type tag of a generation configuration document.
const LLMConfigType = "LLMConfig"

// Keys of the generation configuration document.
const (
	keyMaxTokenCount = "max_token_count"
	keyTemperature   = "temperature"
	keyTopP          = "top_p"
	keyStopSequence  = "stop_sequence"
	keyChatPrompt    = "chat_prompt"
	keyRagPrompt     = "rag_prompt"
)

// LLMConfigParameters holds model-invocation tuning parameters and prompt
// template references. Every field is optional; nil means "not provided".
type LLMConfigParameters struct {
	MaxTokenCount *int
	Temperature   *float64
	TopP          *float64
	StopSequence  []string
	ChatPrompt    *string
	RagPrompt     *string
}

// ParseLLMConfigParameters builds LLMConfigParameters from a document. A nil
// document yields empty parameters.
func ParseLLMConfigParameters(document any) (*LLMConfigParameters, error) {
	if document == nil {
		return &LLMConfigParameters{}, nil
	}
	doc, err := asDocument("", document)
	if err != nil {
		return nil, err
	}

	params := &LLMConfigParameters{}
	if params.MaxTokenCount, err = fromOptionalInt(doc, keyMaxTokenCount); err != nil {
		return nil, err
	}
	if params.Temperature, err = fromOptionalFloat(doc, keyTemperature); err != nil {
		return nil, err
	}
	if params.TopP, err = fromOptionalFloat(doc, keyTopP); err != nil {
		return nil, err
	}
	if params.StopSequence, err = fromOptionalStrings(doc, keyStopSequence); err != nil {
		return nil, err
	}
	if params.ChatPrompt, err = fromOptionalString(doc, keyChatPrompt); err != nil {
		return nil, err
	}
	if params.RagPrompt, err = fromOptionalString(doc, keyRagPrompt); err != nil {
		return nil, err
	}
	return params, nil
}

// ToDict renders the parameters back into a document.
func (p *LLMConfigParameters) ToDict() Document {
	doc := Document{
		keyMaxTokenCount: nil,
		keyTemperature:   nil,
		keyTopP:          nil,
		keyStopSequence:  nil,
		keyChatPrompt:    optionalString(p.ChatPrompt),
		keyRagPrompt:     optionalString(p.RagPrompt),
	}
	if p.MaxTokenCount != nil {
		doc[keyMaxTokenCount] = *p.MaxTokenCount
	}
	if p.Temperature != nil {
		doc[keyTemperature] = *p.Temperature
	}
	if p.TopP != nil {
		doc[keyTopP] = *p.TopP
	}
	if p.StopSequence != nil {
		stops := make([]string, len(p.StopSequence))
		copy(stops, p.StopSequence)
		doc[keyStopSequence] = stops
	}
	return doc
}

// Clone returns a deep copy that shares no memory with p.
func (p *LLMConfigParameters) Clone() *LLMConfigParameters {
	clone := &LLMConfigParameters{}
	if p.MaxTokenCount != nil {
		v := *p.MaxTokenCount
		clone.MaxTokenCount = &v
	}
	if p.Temperature != nil {
		v := *p.Temperature
		clone.Temperature = &v
	}
	if p.TopP != nil {
		v := *p.TopP
		clone.TopP = &v
	}
	if p.StopSequence != nil {
		clone.StopSequence = make([]string, len(p.StopSequence))
		copy(clone.StopSequence, p.StopSequence)
	}
	if p.ChatPrompt != nil {
		v := *p.ChatPrompt
		clone.ChatPrompt = &v
	}
	if p.RagPrompt != nil {
		v := *p.RagPrompt
		clone.RagPrompt = &v
	}
	return clone
}

// LLMConfig is the typed generation configuration document:
// {"type": "LLMConfig", "parameters": {...}}.
type LLMConfig struct {
	Parameters *LLMConfigParameters
	Type       string
}

// NewLLMConfig wraps parameters into a typed document. Nil parameters become
// empty parameters.
func NewLLMConfig(parameters *LLMConfigParameters) *LLMConfig {
	if parameters == nil {
		parameters = &LLMConfigParameters{}
	}
	return &LLMConfig{Parameters: parameters, Type: LLMConfigType}
}

// ParseLLMConfig parses a typed generation configuration document. The type
// tag may be omitted.
func ParseLLMConfig(document any) (*LLMConfig, error) {
	doc, err := asDocument("", document)
	if err != nil {
		return nil, err
	}

	typ, err := fromOptionalString(doc, "type")
	if err != nil {
		return nil, err
	}
	if typ != nil && *typ != LLMConfigType {
		return nil, newValidationError("type", "expected %q, got %q", LLMConfigType, *typ)
	}

	parameters, err := ParseLLMConfigParameters(doc["parameters"])
	if err != nil {
		return nil, prefixed("parameters", err)
	}
	return NewLLMConfig(parameters), nil
}

// ToDict renders the typed document.
func (c *LLMConfig) ToDict() Document {
	return Document{
		"parameters": c.Parameters.ToDict(),
		"type":       c.Type,
	}
}

// Ptr returns a pointer to v. Handy for building optional fields.
func Ptr[T any](v T) *T {
	return &v
}
