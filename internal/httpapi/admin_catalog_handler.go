package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"model_catalog/internal/catalog"
	"model_catalog/internal/middleware"
	"model_catalog/internal/models"
	"model_catalog/internal/storage"
	"model_catalog/internal/utils"
)

// CreateEntryRequest represents the request to store a new catalog entry.
// bedrock and llm_config accept the same documents as a catalog file.
type CreateEntryRequest struct {
	ModelID     string         `json:"model_id"`
	Bedrock     map[string]any `json:"bedrock"`
	LLMConfig   map[string]any `json:"llm_config,omitempty"`
	ModelKwargs map[string]any `json:"model_kwargs,omitempty"`
	Enabled     *bool          `json:"enabled,omitempty"`
}

// UpdateEntryRequest represents the request to toggle a stored entry
type UpdateEntryRequest struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// EntryResponse is a stored entry along with the item it produces
type EntryResponse struct {
	Entry *models.CatalogEntry `json:"entry"`
	Item  catalog.ItemInfo     `json:"item"`
}

// ReloadResponse is returned by POST /admin/catalog/reload
type ReloadResponse struct {
	Items              int      `json:"items"`
	PromptsInvalidated int      `json:"prompts_invalidated"`
	Errors             []string `json:"errors,omitempty"`
}

// handleListEntries handles GET /admin/catalog
func (d *Dependencies) handleListEntries(w http.ResponseWriter, r *http.Request) {
	if !d.requireEntries(w) {
		return
	}

	enabledOnly := r.URL.Query().Get("enabled") == "true"
	entries, err := d.Entries.List(r.Context(), enabledOnly)
	if err != nil {
		d.log().Error("Failed to list catalog entries", "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to list catalog entries")
		return
	}
	if entries == nil {
		entries = []*models.CatalogEntry{}
	}
	utils.RespondWithJSON(w, http.StatusOK, entries)
}

// handleCreateEntry handles POST /admin/catalog
func (d *Dependencies) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	if !d.requireEntries(w) {
		return
	}

	var req CreateEntryRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	doc := models.Document{"model_id": req.ModelID, "bedrock": req.Bedrock}
	if req.LLMConfig != nil {
		doc["llm_config"] = req.LLMConfig
	}
	if req.ModelKwargs != nil {
		doc["model_kwargs"] = req.ModelKwargs
	}

	item, err := d.Manager.Loader().BuildItem(doc, nil)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to validate catalog entry")
		return
	}

	entry := &models.CatalogEntry{
		Name:        item.Name(),
		ModelID:     req.ModelID,
		Bedrock:     models.JSONB(req.Bedrock),
		LLMConfig:   models.JSONB(req.LLMConfig),
		ModelKwargs: models.JSONB(req.ModelKwargs),
		Enabled:     req.Enabled == nil || *req.Enabled,
	}
	if err := d.Entries.Create(r.Context(), entry); err != nil {
		if errors.Is(err, storage.ErrCatalogEntryExists) {
			utils.RespondWithError(w, http.StatusConflict, "Catalog entry already exists")
			return
		}
		d.log().Error("Failed to create catalog entry", "name", entry.Name, "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create catalog entry")
		return
	}

	d.log().Info("Catalog entry created", "name", entry.Name, "by", adminSubject(r))
	d.reloadAfterChange(r)
	utils.RespondWithJSON(w, http.StatusCreated, EntryResponse{Entry: entry, Item: item.Describe()})
}

// handleUpdateEntry handles PATCH /admin/catalog/{id}
func (d *Dependencies) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	if !d.requireEntries(w) {
		return
	}
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	var req UpdateEntryRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	entry, err := d.Entries.GetByID(r.Context(), id)
	if err != nil {
		d.respondEntryError(w, err, "Failed to get catalog entry")
		return
	}
	if req.Enabled != nil {
		entry.Enabled = *req.Enabled
	}
	if err := d.Entries.Update(r.Context(), entry); err != nil {
		d.respondEntryError(w, err, "Failed to update catalog entry")
		return
	}

	d.log().Info("Catalog entry updated", "name", entry.Name, "enabled", entry.Enabled, "by", adminSubject(r))
	d.reloadAfterChange(r)
	utils.RespondWithJSON(w, http.StatusOK, entry)
}

// handleDeleteEntry handles DELETE /admin/catalog/{id}
func (d *Dependencies) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if !d.requireEntries(w) {
		return
	}
	id, ok := entryID(w, r)
	if !ok {
		return
	}

	if err := d.Entries.Delete(r.Context(), id); err != nil {
		d.respondEntryError(w, err, "Failed to delete catalog entry")
		return
	}

	d.log().Info("Catalog entry deleted", "id", id, "by", adminSubject(r))
	d.reloadAfterChange(r)
	w.WriteHeader(http.StatusNoContent)
}

// handleReload handles POST /admin/catalog/reload. Cached prompt templates of
// the served items are dropped so edited templates are picked up too.
func (d *Dependencies) handleReload(w http.ResponseWriter, r *http.Request) {
	n, err := d.Manager.Reload(r.Context())
	resp := ReloadResponse{Items: n}
	if err != nil {
		resp.Errors = splitErrors(err)
	}
	resp.PromptsInvalidated = d.invalidatePrompts(r.Context())
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

func (d *Dependencies) invalidatePrompts(ctx context.Context) int {
	if d.PromptCache == nil {
		return 0
	}
	seen := make(map[string]struct{})
	for _, item := range d.Manager.Catalog().List() {
		for _, id := range []string{item.ChatPromptIdentifier(), item.RagPromptIdentifier()} {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			if err := d.PromptCache.Invalidate(ctx, id); err != nil {
				d.log().Warn("Failed to invalidate cached prompt", "prompt", id, "error", err)
			}
		}
	}
	return len(seen)
}

func (d *Dependencies) requireEntries(w http.ResponseWriter) bool {
	if d.Entries == nil {
		utils.RespondWithError(w, http.StatusServiceUnavailable, "Catalog database is not configured")
		return false
	}
	return true
}

// reloadAfterChange refreshes the served catalog. The stored change already
// succeeded, so failures are only logged.
func (d *Dependencies) reloadAfterChange(r *http.Request) {
	if _, err := d.Manager.Reload(r.Context()); err != nil {
		d.log().Warn("Catalog reload after change reported errors", "error", err)
	}
}

func (d *Dependencies) respondEntryError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, storage.ErrCatalogEntryNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Catalog entry not found")
	case errors.Is(err, storage.ErrCatalogEntryExists):
		utils.RespondWithError(w, http.StatusConflict, "Catalog entry already exists")
	default:
		d.log().Error(msg, "error", err)
		utils.RespondWithError(w, http.StatusInternalServerError, msg)
	}
}

func entryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid entry ID")
		return uuid.Nil, false
	}
	return id, true
}

func adminSubject(r *http.Request) string {
	if claims, ok := middleware.GetAdminClaims(r.Context()); ok {
		return claims.Subject
	}
	return ""
}

// splitErrors returns one message per line of a joined error.
func splitErrors(err error) []string {
	return strings.Split(err.Error(), "\n")
}
