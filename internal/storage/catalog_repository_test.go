package storage

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model_catalog/internal/models"
)

// setupTestDB connects to DATABASE_TEST_URL or skips the test
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("DATABASE_TEST_URL")
	if dsn == "" {
		t.Skip("DATABASE_TEST_URL not set, skipping integration test")
	}

	cfg := DefaultDBConfig()
	cfg.DSN = dsn
	db, err := NewDB(cfg)
	if err != nil {
		t.Skipf("Postgres not available: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	require.NoError(t, db.Migrate(ctx))
	_, err = db.Conn().ExecContext(ctx, "DELETE FROM catalog_entries WHERE name LIKE 'test-%'")
	require.NoError(t, err)
	return db
}

func testEntry(name string) *models.CatalogEntry {
	return &models.CatalogEntry{
		Name:        name,
		ModelID:     "anthropic.claude-v2",
		Bedrock:     models.JSONB{"region": "us-east-1", "endpointURL": nil, "profile": nil},
		LLMConfig:   models.JSONB{"max_token_count": 1024},
		ModelKwargs: nil,
		Enabled:     true,
	}
}

func TestCatalogRepository_CRUD(t *testing.T) {
	db := setupTestDB(t)
	repo := db.NewCatalogRepository()
	ctx := context.Background()

	entry := testEntry("test-" + uuid.NewString())
	require.NoError(t, repo.Create(ctx, entry))
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	err := repo.Create(ctx, testEntry(entry.Name))
	assert.ErrorIs(t, err, ErrCatalogEntryExists)

	got, err := repo.GetByName(ctx, entry.Name)
	require.NoError(t, err)
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, "us-east-1", got.Bedrock["region"])
	assert.EqualValues(t, 1024, got.LLMConfig["max_token_count"])
	assert.Nil(t, got.ModelKwargs)
	assert.GreaterOrEqual(t, db.GetStats().EntryCacheStats.Size, 1)
	require.NoError(t, db.Ping(ctx))

	entry.Enabled = false
	require.NoError(t, repo.Update(ctx, entry))

	enabled, err := repo.List(ctx, true)
	require.NoError(t, err)
	for _, e := range enabled {
		assert.NotEqual(t, entry.ID, e.ID)
	}

	got, err = repo.GetByName(ctx, entry.Name)
	require.NoError(t, err)
	assert.False(t, got.Enabled, "update must invalidate the cache")

	require.NoError(t, repo.Delete(ctx, entry.ID))
	_, err = repo.GetByID(ctx, entry.ID)
	assert.ErrorIs(t, err, ErrCatalogEntryNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, entry.ID), ErrCatalogEntryNotFound)
}

func TestCatalogRepository_Upsert(t *testing.T) {
	db := setupTestDB(t)
	repo := db.NewCatalogRepository()
	ctx := context.Background()

	entry := testEntry("test-" + uuid.NewString())
	require.NoError(t, repo.Upsert(ctx, entry))
	firstID := entry.ID

	again := testEntry(entry.Name)
	again.ModelID = "anthropic.claude-v2:1"
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, firstID, again.ID)

	got, err := repo.GetByID(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "anthropic.claude-v2:1", got.ModelID)

	require.NoError(t, repo.Delete(ctx, firstID))
}
