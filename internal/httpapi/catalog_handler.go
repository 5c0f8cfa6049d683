package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"model_catalog/internal/catalog"
	"model_catalog/internal/logging"
	"model_catalog/internal/models"
	"model_catalog/internal/prompts"
	"model_catalog/internal/utils"
)

// Prompt kinds accepted by the invoke and prompt endpoints
const (
	PromptKindChat = "chat"
	PromptKindRag  = "rag"
)

// ListItemsResponse is returned by GET /v1/catalog
type ListItemsResponse struct {
	Items []catalog.ItemInfo `json:"items"`
	Count int                `json:"count"`
}

// InvokeRequest runs one completion against a catalog item. Either Prompt or
// PromptKind must be set; with PromptKind the item's template is rendered
// from Variables.
type InvokeRequest struct {
	Name       string            `json:"name"`
	Prompt     string            `json:"prompt,omitempty"`
	PromptKind string            `json:"prompt_kind,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
	Parameters map[string]any    `json:"parameters,omitempty"`
}

// InvokeResponse is returned by POST /v1/catalog/invoke
type InvokeResponse struct {
	Name       string `json:"name"`
	ModelID    string `json:"model_id"`
	Prompt     string `json:"prompt"`
	Completion string `json:"completion"`
}

// handleListItems handles GET /v1/catalog
func (d *Dependencies) handleListItems(w http.ResponseWriter, r *http.Request) {
	items := d.Manager.Catalog().List()
	resp := ListItemsResponse{Items: make([]catalog.ItemInfo, 0, len(items)), Count: len(items)}
	for _, item := range items {
		resp.Items = append(resp.Items, item.Describe())
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// handleGetItem handles GET /v1/catalog/item?name=
func (d *Dependencies) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, ok := d.lookupItem(w, r.URL.Query().Get("name"))
	if !ok {
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, item.Describe())
}

// handleGetPrompt handles GET /v1/catalog/prompt?name=&kind=chat|rag
func (d *Dependencies) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	item, ok := d.lookupItem(w, r.URL.Query().Get("name"))
	if !ok {
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = PromptKindChat
	}
	tmpl, status, msg := d.promptTemplate(r.Context(), item, kind)
	if tmpl == nil {
		utils.RespondWithError(w, status, msg)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, tmpl)
}

// RegionsResponse is returned by GET /v1/catalog/regions
type RegionsResponse struct {
	Regions []models.AWSRegion `json:"regions"`
}

// handleListRegions handles GET /v1/catalog/regions
func (d *Dependencies) handleListRegions(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, RegionsResponse{Regions: models.Regions()})
}

// handleInvoke handles POST /v1/catalog/invoke
func (d *Dependencies) handleInvoke(w http.ResponseWriter, r *http.Request) {
	var req InvokeRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	switch {
	case req.Prompt == "" && req.PromptKind == "":
		utils.RespondWithError(w, http.StatusBadRequest, "Either prompt or prompt_kind is required")
		return
	case req.Prompt != "" && req.PromptKind != "":
		utils.RespondWithError(w, http.StatusBadRequest, "prompt and prompt_kind are mutually exclusive")
		return
	}

	item, ok := d.lookupItem(w, req.Name)
	if !ok {
		return
	}

	inv := logging.Invocation{Item: item.Name(), PromptKind: req.PromptKind}
	start := time.Now()
	defer func() {
		if d.Invocations != nil {
			inv.LatencyMs = time.Since(start).Milliseconds()
			d.Invocations.Record(inv)
		}
	}()
	fail := func(status int, msg string, err error) {
		inv.Status = status
		if err != nil {
			inv.Error = err.Error()
		}
		utils.RespondWithError(w, status, msg)
	}

	ctx := r.Context()
	prompt := req.Prompt
	if req.PromptKind != "" {
		tmpl, status, msg := d.promptTemplate(ctx, item, req.PromptKind)
		if tmpl == nil {
			fail(status, msg, nil)
			return
		}
		rendered, err := tmpl.Format(req.Variables)
		if err != nil {
			fail(http.StatusBadRequest, err.Error(), err)
			return
		}
		prompt = rendered
	}
	inv.PromptChars = len(prompt)

	client, err := item.GetClient(ctx)
	if err != nil {
		d.log().Error("Failed to resolve model client", "name", item.Name(), "error", err)
		fail(http.StatusBadGateway, "Failed to resolve model client", err)
		return
	}
	inv.ModelID = client.ModelID()

	if d.InvokeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.InvokeTimeout)
		defer cancel()
	}

	completion, err := client.Invoke(ctx, prompt, req.Parameters)
	if err != nil {
		d.log().Error("Model invocation failed", "name", item.Name(), "model_id", client.ModelID(), "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			fail(http.StatusGatewayTimeout, "Model invocation timed out", err)
			return
		}
		fail(http.StatusBadGateway, "Model invocation failed", err)
		return
	}

	inv.Status = http.StatusOK
	inv.CompletionChars = len(completion)
	utils.RespondWithJSON(w, http.StatusOK, InvokeResponse{
		Name:       item.Name(),
		ModelID:    client.ModelID(),
		Prompt:     prompt,
		Completion: completion,
	})
}

// lookupItem writes the error response itself when the item cannot be found.
func (d *Dependencies) lookupItem(w http.ResponseWriter, name string) (catalog.ModelCatalogItem, bool) {
	if name == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Item name is required")
		return nil, false
	}
	item, err := d.Manager.Catalog().Get(name)
	if err != nil {
		if errors.Is(err, catalog.ErrItemNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "Catalog item not found")
			return nil, false
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to look up catalog item")
		return nil, false
	}
	return item, true
}

// promptTemplate loads the item's template of the given kind. On failure the
// template is nil and status/msg describe the error response.
func (d *Dependencies) promptTemplate(ctx context.Context, item catalog.ModelCatalogItem, kind string) (*prompts.PromptTemplate, int, string) {
	var id string
	switch kind {
	case PromptKindChat:
		id = item.ChatPromptIdentifier()
	case PromptKindRag:
		id = item.RagPromptIdentifier()
	default:
		return nil, http.StatusBadRequest, "prompt kind must be chat or rag"
	}

	tmpl, err := d.Prompts.Get(ctx, id)
	if err != nil {
		d.log().Error("Failed to load prompt template", "name", item.Name(), "prompt", id, "error", err)
		if errors.Is(err, prompts.ErrTemplateNotFound) {
			return nil, http.StatusNotFound, "Prompt template not found"
		}
		return nil, http.StatusInternalServerError, "Failed to load prompt template"
	}
	return tmpl, http.StatusOK, ""
}
