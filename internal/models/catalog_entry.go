package models

import (
	"time"

	"github.com/google/uuid"
)

// CatalogEntry is a persisted catalog entry (catalog_entries table). The
// bedrock, llm_config and model_kwargs columns hold the same documents a
// catalog file carries for one model.
type CatalogEntry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	ModelID     string    `db:"model_id" json:"model_id"`
	Bedrock     JSONB     `db:"bedrock" json:"bedrock"`
	LLMConfig   JSONB     `db:"llm_config" json:"llm_config,omitempty"`
	ModelKwargs JSONB     `db:"model_kwargs" json:"model_kwargs,omitempty"`
	Enabled     bool      `db:"enabled" json:"enabled"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Document renders the entry in catalog document form.
func (e *CatalogEntry) Document() Document {
	doc := Document{
		"name":     e.Name,
		"model_id": e.ModelID,
		"bedrock":  map[string]any(e.Bedrock),
	}
	if e.LLMConfig != nil {
		doc["llm_config"] = map[string]any(e.LLMConfig)
	}
	if len(e.ModelKwargs) > 0 {
		doc["model_kwargs"] = map[string]any(e.ModelKwargs)
	}
	return doc
}
