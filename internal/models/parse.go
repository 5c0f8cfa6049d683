package models

import (
	"encoding/json"
	"math"
)

// Document is an untyped key/value configuration document as decoded from
// JSON or YAML.
type Document = map[string]any

func asDocument(field string, value any) (Document, error) {
	switch v := value.(type) {
	case map[string]any:
		return v, nil
	case JSONB:
		return map[string]any(v), nil
	case map[any]any:
		// yaml.v2 style maps
		doc := make(Document, len(v))
		for k, val := range v {
			key, ok := k.(string)
			if !ok {
				return nil, newValidationError(field, "non-string key %v", k)
			}
			doc[key] = val
		}
		return doc, nil
	case nil:
		return nil, newValidationError(field, "is required")
	default:
		return nil, newValidationError(field, "expected an object, got %T", value)
	}
}

func fromString(doc Document, key string) (string, error) {
	value, ok := doc[key]
	if !ok || value == nil {
		return "", newValidationError(key, "is required")
	}
	s, ok := value.(string)
	if !ok {
		return "", newValidationError(key, "expected a string, got %T", value)
	}
	return s, nil
}

func fromOptionalString(doc Document, key string) (*string, error) {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil, nil
	}
	s, ok := value.(string)
	if !ok {
		return nil, newValidationError(key, "expected a string, got %T", value)
	}
	return &s, nil
}

func fromOptionalFloat(doc Document, key string) (*float64, error) {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil, nil
	}
	f, ok := toFloat(value)
	if !ok {
		return nil, newValidationError(key, "expected a number, got %T", value)
	}
	return &f, nil
}

// fromOptionalInt accepts non-negative integers up to math.MaxInt32.
func fromOptionalInt(doc Document, key string) (*int, error) {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil, nil
	}
	f, ok := toFloat(value)
	if !ok {
		return nil, newValidationError(key, "expected an integer, got %T", value)
	}
	if f != math.Trunc(f) {
		return nil, newValidationError(key, "expected an integer, got %v", f)
	}
	if f < 0 || f > math.MaxInt32 {
		return nil, newValidationError(key, "must be between 0 and %d, got %v", math.MaxInt32, f)
	}
	i := int(f)
	return &i, nil
}

// fromOptionalStrings accepts a single string or a list of strings.
func fromOptionalStrings(doc Document, key string) ([]string, error) {
	value, ok := doc[key]
	if !ok || value == nil {
		return nil, nil
	}
	switch v := value.(type) {
	case string:
		return []string{v}, nil
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out, nil
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, newValidationError(key, "expected a list of strings, got element %T", item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, newValidationError(key, "expected a string or a list of strings, got %T", value)
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func optionalString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
