package catalog

import (
	"errors"
	"fmt"

	"model_catalog/internal/models"
)

// EntriesFromDocument converts a catalog document into storable entries.
// Each entry is validated the way LoadDocument would build it, and the
// document-level llm_config is copied into entries that carry none. Invalid
// entries are skipped and reported.
func (l *Loader) EntriesFromDocument(doc models.Document) ([]*models.CatalogEntry, error) {
	var (
		defaults    *models.LLMConfig
		defaultsDoc map[string]any
	)
	if raw, ok := doc[keyLLMConfig]; ok && raw != nil {
		var err error
		if defaults, err = parseLLMConfig(raw); err != nil {
			return nil, withField(keyLLMConfig, err)
		}
		defaultsDoc, _ = raw.(map[string]any)
	}

	rawEntries, ok := doc[keyModels].([]any)
	if !ok {
		if doc[keyModels] == nil {
			return nil, nil
		}
		return nil, &models.ValidationError{Field: keyModels, Reason: fmt.Sprintf("expected a list, got %T", doc[keyModels])}
	}

	var (
		entries []*models.CatalogEntry
		errs    []error
	)
	for idx, raw := range rawEntries {
		entryDoc, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, l.reject(idx, &models.ValidationError{Reason: fmt.Sprintf("expected an object, got %T", raw)}))
			continue
		}
		item, err := l.BuildItem(entryDoc, defaults)
		if err != nil {
			errs = append(errs, l.reject(idx, err))
			continue
		}

		entry := &models.CatalogEntry{
			Name:    item.Name(),
			ModelID: item.ModelID(),
			Enabled: true,
		}
		entry.Bedrock, _ = entryDoc[keyBedrock].(map[string]any)
		if llmConfig, ok := entryDoc[keyLLMConfig].(map[string]any); ok {
			entry.LLMConfig = llmConfig
		} else if defaultsDoc != nil {
			entry.LLMConfig = defaultsDoc
		}
		entry.ModelKwargs, _ = entryDoc[keyModelKwargs].(map[string]any)
		entries = append(entries, entry)
	}

	return entries, errors.Join(errs...)
}
