package prompts

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptType is the only template type understood.
const PromptType = "prompt"

// ErrMissingVariable is returned by Format when a placeholder has no value.
var ErrMissingVariable = errors.New("missing prompt variable")

// PromptTemplate is a serialized prompt template:
//
//	_type: prompt
//	input_variables: [context, question]
//	template: "... {context} ... {question}"
//
// Placeholders are written {name}; {{ and }} produce literal braces.
type PromptTemplate struct {
	Type           string   `yaml:"_type" json:"_type"`
	InputVariables []string `yaml:"input_variables" json:"input_variables"`
	Template       string   `yaml:"template" json:"template"`
}

// ParseTemplate decodes a YAML (or JSON) template and checks that every
// placeholder is declared in input_variables.
func ParseTemplate(data []byte) (*PromptTemplate, error) {
	var t PromptTemplate
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode prompt template: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the type tag and the placeholders.
func (t *PromptTemplate) Validate() error {
	if t.Type == "" {
		t.Type = PromptType
	}
	if t.Type != PromptType {
		return fmt.Errorf("unsupported prompt template type %q", t.Type)
	}
	if t.Template == "" {
		return errors.New("prompt template is empty")
	}

	names, err := t.Placeholders()
	if err != nil {
		return err
	}
	for _, name := range names {
		if !slices.Contains(t.InputVariables, name) {
			return fmt.Errorf("placeholder {%s} is not declared in input_variables", name)
		}
	}
	return nil
}

// Placeholders returns the distinct placeholder names in order of appearance.
func (t *PromptTemplate) Placeholders() ([]string, error) {
	var names []string
	_, err := render(t.Template, func(name string) (string, error) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
		return "", nil
	})
	return names, err
}

// Format substitutes every placeholder with its value. Extra values are
// ignored.
func (t *PromptTemplate) Format(values map[string]string) (string, error) {
	return render(t.Template, func(name string) (string, error) {
		v, ok := values[name]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrMissingVariable, name)
		}
		return v, nil
	})
}

// Clone returns a copy sharing no memory with t.
func (t *PromptTemplate) Clone() *PromptTemplate {
	return &PromptTemplate{
		Type:           t.Type,
		InputVariables: slices.Clone(t.InputVariables),
		Template:       t.Template,
	}
}

func render(tmpl string, lookup func(name string) (string, error)) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		switch c := tmpl[i]; c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("unclosed '{' at offset %d", i)
			}
			name := strings.TrimSpace(tmpl[i+1 : i+1+end])
			if name == "" || strings.ContainsAny(name, "{") {
				return "", fmt.Errorf("invalid placeholder at offset %d", i)
			}
			value, err := lookup(name)
			if err != nil {
				return "", err
			}
			b.WriteString(value)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("single '}' at offset %d", i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
