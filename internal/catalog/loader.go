package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"model_catalog/internal/models"
	"model_catalog/internal/providers"
	"model_catalog/internal/utils"
)

// Keys of a catalog document.
const (
	keyModels      = "models"
	keyModelID     = "model_id"
	keyBedrock     = "bedrock"
	keyLLMConfig   = "llm_config"
	keyModelKwargs = "model_kwargs"
)

// EntryLister lists persisted catalog entries.
type EntryLister interface {
	List(ctx context.Context, enabledOnly bool) ([]*models.CatalogEntry, error)
}

// Loader builds catalog items from configuration documents.
type Loader struct {
	resolver providers.ClientResolver
	legacy   bool
	logger   *utils.Logger
}

// NewLoader creates a loader whose items resolve clients with resolver.
// legacyFalsyDefaults is applied to every item it builds.
func NewLoader(resolver providers.ClientResolver, legacyFalsyDefaults bool) *Loader {
	return &Loader{
		resolver: resolver,
		legacy:   legacyFalsyDefaults,
		logger:   utils.NewLogger("catalog-loader"),
	}
}

func (l *Loader) options(kwargs map[string]any) []Option {
	opts := []Option{WithModelKwargs(kwargs)}
	if l.legacy {
		opts = append(opts, WithLegacyFalsyDefaults())
	}
	return opts
}

// BuildItem builds one item from a catalog entry document:
//
//	{model_id, bedrock, llm_config?, model_kwargs?}
//
// bedrock and llm_config may be given bare or wrapped in their typed
// {"type", "parameters"} form. defaults applies when the entry carries no
// llm_config and may be nil.
func (l *Loader) BuildItem(entry models.Document, defaults *models.LLMConfig) (*BedrockModelItem, error) {
	modelID, ok := entry[keyModelID].(string)
	if !ok || modelID == "" {
		return nil, &models.ValidationError{Field: keyModelID, Reason: "is required"}
	}

	params, err := parseBedrock(entry[keyBedrock])
	if err != nil {
		return nil, withField(keyBedrock, err)
	}

	llmConfig := defaults
	if raw, ok := entry[keyLLMConfig]; ok && raw != nil {
		if llmConfig, err = parseLLMConfig(raw); err != nil {
			return nil, withField(keyLLMConfig, err)
		}
	}

	var kwargs map[string]any
	if raw, ok := entry[keyModelKwargs]; ok && raw != nil {
		if kwargs, ok = raw.(map[string]any); !ok {
			return nil, &models.ValidationError{Field: keyModelKwargs, Reason: fmt.Sprintf("expected an object, got %T", raw)}
		}
	}

	return NewBedrockModelItem(modelID, params, llmConfig, l.resolver, l.options(kwargs)...)
}

// LoadDocument builds the items of a catalog document:
//
//	{llm_config?, models: [entry, ...]}
//
// A failing entry is skipped; the remaining ones are still returned along
// with the joined entry errors.
func (l *Loader) LoadDocument(doc models.Document) ([]ModelCatalogItem, error) {
	var defaults *models.LLMConfig
	if raw, ok := doc[keyLLMConfig]; ok && raw != nil {
		var err error
		if defaults, err = parseLLMConfig(raw); err != nil {
			return nil, withField(keyLLMConfig, err)
		}
	}

	rawEntries, ok := doc[keyModels].([]any)
	if !ok {
		if doc[keyModels] == nil {
			return nil, nil
		}
		return nil, &models.ValidationError{Field: keyModels, Reason: fmt.Sprintf("expected a list, got %T", doc[keyModels])}
	}

	var (
		items []ModelCatalogItem
		errs  []error
	)
	for idx, raw := range rawEntries {
		entry, ok := raw.(map[string]any)
		if !ok {
			errs = append(errs, l.reject(idx, &models.ValidationError{Reason: fmt.Sprintf("expected an object, got %T", raw)}))
			continue
		}
		item, err := l.BuildItem(entry, defaults)
		if err != nil {
			errs = append(errs, l.reject(idx, err))
			continue
		}
		l.logger.Debug("Registered catalog entry", "name", item.Name())
		items = append(items, item)
	}

	return items, errors.Join(errs...)
}

func (l *Loader) reject(idx int, err error) error {
	l.logger.Warn("Skipping catalog entry", "index", idx, "error", err)
	return fmt.Errorf("models[%d]: %w", idx, err)
}

// ReadDocument reads a YAML (or JSON) catalog document from path. An empty
// file yields a nil document.
func ReadDocument(path string) (models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var doc models.Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return doc, nil
}

// LoadFile builds the items of the catalog document at path.
func (l *Loader) LoadFile(path string) ([]ModelCatalogItem, error) {
	doc, err := ReadDocument(path)
	if err != nil || doc == nil {
		return nil, err
	}
	return l.LoadDocument(doc)
}

// LoadEntries builds the items of persisted entries. Disabled entries are
// skipped silently, failing ones are reported like LoadDocument does.
func (l *Loader) LoadEntries(entries []*models.CatalogEntry) ([]ModelCatalogItem, error) {
	var (
		items []ModelCatalogItem
		errs  []error
	)
	for _, entry := range entries {
		if !entry.Enabled {
			continue
		}
		item, err := l.BuildItem(entry.Document(), nil)
		if err != nil {
			l.logger.Warn("Skipping stored catalog entry", "id", entry.ID, "error", err)
			errs = append(errs, fmt.Errorf("entry %s: %w", entry.ID, err))
			continue
		}
		items = append(items, item)
	}
	return items, errors.Join(errs...)
}

// Sources lists where a full catalog load reads from. Zero-valued sources
// are skipped.
type Sources struct {
	File      string
	Entries   EntryLister
	Discovery *DiscoverySource
}

// LoadAll loads every configured source in order: file, stored entries,
// discovery. When two sources produce the same name, the first one wins
// and the later item is reported.
func (l *Loader) LoadAll(ctx context.Context, src Sources) ([]ModelCatalogItem, error) {
	var (
		items []ModelCatalogItem
		errs  []error
		seen  = make(map[string]bool)
	)
	collect := func(source string, loaded []ModelCatalogItem, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", source, err))
		}
		for _, item := range loaded {
			if seen[item.Name()] {
				errs = append(errs, fmt.Errorf("%s: %w: %s", source, ErrDuplicateItem, item.Name()))
				continue
			}
			seen[item.Name()] = true
			items = append(items, item)
		}
	}

	if src.File != "" {
		loaded, err := l.LoadFile(src.File)
		collect("file", loaded, err)
	}
	if src.Entries != nil {
		entries, err := src.Entries.List(ctx, true)
		if err != nil {
			collect("database", nil, err)
		} else {
			loaded, err := l.LoadEntries(entries)
			collect("database", loaded, err)
		}
	}
	if src.Discovery != nil {
		loaded, err := l.Discover(ctx, src.Discovery.Lister, src.Discovery.Parameters, src.Discovery.LLMConfig)
		collect("discovery", loaded, err)
	}

	l.logger.Info("Catalog loaded", "items", len(items), "errors", len(errs))
	return items, errors.Join(errs...)
}

func parseBedrock(raw any) (*models.BedrockParameters, error) {
	if doc, ok := raw.(map[string]any); ok {
		if _, typed := doc["parameters"]; typed {
			wrapped, err := models.ParseAmazonBedrock(doc)
			if err != nil {
				return nil, err
			}
			return wrapped.Parameters, nil
		}
	}
	return models.ParseBedrockParameters(raw)
}

func parseLLMConfig(raw any) (*models.LLMConfig, error) {
	if doc, ok := raw.(map[string]any); ok {
		if _, typed := doc["parameters"]; typed {
			return models.ParseLLMConfig(doc)
		}
	}
	params, err := models.ParseLLMConfigParameters(raw)
	if err != nil {
		return nil, err
	}
	return models.NewLLMConfig(params), nil
}

// withField re-roots a ValidationError under field.
func withField(field string, err error) error {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	if verr.Field == "" {
		return &models.ValidationError{Field: field, Reason: verr.Reason}
	}
	return &models.ValidationError{Field: field + "." + verr.Field, Reason: verr.Reason}
}
