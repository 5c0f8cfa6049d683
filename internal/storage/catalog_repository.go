package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"model_catalog/internal/models"
)

const catalogColumns = `id, name, model_id, bedrock, llm_config, model_kwargs, enabled, created_at, updated_at`

// uniqueViolation is the Postgres error code for unique constraint failures
const uniqueViolation = "23505"

// CatalogRepository handles catalog entry database operations
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// GetByName retrieves an entry by display name. Lookups are served from the
// entry cache when possible.
func (r *CatalogRepository) GetByName(ctx context.Context, name string) (*models.CatalogEntry, error) {
	if entry, ok := r.db.entryCache.Get(name); ok {
		return entry, nil
	}

	var entry models.CatalogEntry
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE name = $1`
	if err := r.db.conn.GetContext(ctx, &entry, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCatalogEntryNotFound
		}
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}

	r.db.entryCache.Set(name, &entry)
	return &entry, nil
}

// GetByID retrieves an entry by ID
func (r *CatalogRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogEntry, error) {
	var entry models.CatalogEntry
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries WHERE id = $1`
	if err := r.db.conn.GetContext(ctx, &entry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCatalogEntryNotFound
		}
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}
	return &entry, nil
}

// List returns the stored entries ordered by name
func (r *CatalogRepository) List(ctx context.Context, enabledOnly bool) ([]*models.CatalogEntry, error) {
	query := `SELECT ` + catalogColumns + ` FROM catalog_entries`
	if enabledOnly {
		query += ` WHERE enabled`
	}
	query += ` ORDER BY name`

	var entries []*models.CatalogEntry
	if err := r.db.conn.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	return entries, nil
}

// Create stores a new entry. A zero ID is replaced by a fresh UUID.
func (r *CatalogRepository) Create(ctx context.Context, entry *models.CatalogEntry) error {
	query := `
		INSERT INTO catalog_entries (id, name, model_id, bedrock, llm_config, model_kwargs, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	err := r.db.conn.QueryRowxContext(ctx, query,
		entry.ID, entry.Name, entry.ModelID, entry.Bedrock, entry.LLMConfig, entry.ModelKwargs, entry.Enabled,
	).Scan(&entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrCatalogEntryExists, entry.Name)
		}
		return fmt.Errorf("failed to create catalog entry: %w", err)
	}

	r.db.entryCache.Delete(entry.Name)
	return nil
}

// Upsert creates the entry or replaces the stored one with the same name
func (r *CatalogRepository) Upsert(ctx context.Context, entry *models.CatalogEntry) error {
	query := `
		INSERT INTO catalog_entries (id, name, model_id, bedrock, llm_config, model_kwargs, enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE
		SET model_id = EXCLUDED.model_id, bedrock = EXCLUDED.bedrock,
		    llm_config = EXCLUDED.llm_config, model_kwargs = EXCLUDED.model_kwargs,
		    enabled = EXCLUDED.enabled, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	err := r.db.conn.QueryRowxContext(ctx, query,
		entry.ID, entry.Name, entry.ModelID, entry.Bedrock, entry.LLMConfig, entry.ModelKwargs, entry.Enabled,
	).Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert catalog entry: %w", err)
	}

	r.db.entryCache.Delete(entry.Name)
	return nil
}

// Update updates an existing entry
func (r *CatalogRepository) Update(ctx context.Context, entry *models.CatalogEntry) error {
	previous, err := r.GetByID(ctx, entry.ID)
	if err != nil {
		return err
	}

	query := `
		UPDATE catalog_entries
		SET name = $2, model_id = $3, bedrock = $4, llm_config = $5,
		    model_kwargs = $6, enabled = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err = r.db.conn.QueryRowxContext(ctx, query,
		entry.ID, entry.Name, entry.ModelID, entry.Bedrock, entry.LLMConfig, entry.ModelKwargs, entry.Enabled,
	).Scan(&entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCatalogEntryNotFound
		}
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrCatalogEntryExists, entry.Name)
		}
		return fmt.Errorf("failed to update catalog entry: %w", err)
	}

	r.db.entryCache.Delete(previous.Name)
	r.db.entryCache.Delete(entry.Name)
	return nil
}

// Delete removes an entry
func (r *CatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var name string
	err := r.db.conn.GetContext(ctx, &name, `DELETE FROM catalog_entries WHERE id = $1 RETURNING name`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCatalogEntryNotFound
		}
		return fmt.Errorf("failed to delete catalog entry: %w", err)
	}

	r.db.entryCache.Delete(name)
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
