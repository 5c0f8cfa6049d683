package prompts

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrTemplateNotFound is returned when no template exists for an identifier.
var ErrTemplateNotFound = errors.New("prompt template not found")

// Store resolves prompt identifiers such as "prompts/default_chat.yaml".
type Store interface {
	Get(ctx context.Context, id string) (*PromptTemplate, error)
}

// cleanID rejects identifiers escaping the store root.
func cleanID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrTemplateNotFound)
	}
	cleaned := path.Clean(strings.ReplaceAll(id, "\\", "/"))
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return cleaned, nil
}

// FileStore reads templates from a directory. Identifiers are paths
// relative to it.
type FileStore struct {
	root string
}

// NewFileStore creates a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

func (s *FileStore) Get(ctx context.Context, id string) (*PromptTemplate, error) {
	rel, err := cleanID(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(rel)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
		}
		return nil, fmt.Errorf("failed to read prompt template %s: %w", id, err)
	}
	return parseNamed(id, data)
}

//go:embed prompts/*.yaml
var builtin embed.FS

// BuiltinStore serves the default chat and RAG templates shipped with the
// binary.
type BuiltinStore struct{}

func (BuiltinStore) Get(ctx context.Context, id string) (*PromptTemplate, error) {
	rel, err := cleanID(id)
	if err != nil {
		return nil, err
	}
	data, err := builtin.ReadFile(rel)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return parseNamed(id, data)
}

// ChainStore asks each store in turn until one knows the identifier.
type ChainStore []Store

func (c ChainStore) Get(ctx context.Context, id string) (*PromptTemplate, error) {
	for _, store := range c {
		t, err := store.Get(ctx, id)
		if errors.Is(err, ErrTemplateNotFound) {
			continue
		}
		return t, err
	}
	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

func parseNamed(id string, data []byte) (*PromptTemplate, error) {
	t, err := ParseTemplate(data)
	if err != nil {
		return nil, fmt.Errorf("prompt template %s: %w", id, err)
	}
	return t, nil
}
