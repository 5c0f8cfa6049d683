package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"model_catalog/internal/models"
)

type mutableEntries struct {
	entries []*models.CatalogEntry
	err     error
}

func (m *mutableEntries) List(ctx context.Context, enabledOnly bool) ([]*models.CatalogEntry, error) {
	return m.entries, m.err
}

func storedEntry(modelID string) *models.CatalogEntry {
	return &models.CatalogEntry{ID: uuid.New(), ModelID: modelID, Bedrock: models.JSONB{"region": "us-east-1"}, Enabled: true}
}

func TestManager_Reload(t *testing.T) {
	entries := &mutableEntries{entries: []*models.CatalogEntry{storedEntry("anthropic.claude-v2")}}
	c := New()
	m := NewManager(c, NewLoader(&recordingResolver{}, false), Sources{Entries: entries})

	n, err := m.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.Len())

	entries.entries = append(entries.entries, storedEntry("ai21.j2-ultra"))
	n, err = m.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	at, lastErr := m.LastReload()
	assert.False(t, at.IsZero())
	assert.NoError(t, lastErr)
}

func TestManager_ReloadKeepsCatalogWhenSourcesFail(t *testing.T) {
	entries := &mutableEntries{entries: []*models.CatalogEntry{storedEntry("anthropic.claude-v2")}}
	c := New()
	m := NewManager(c, NewLoader(&recordingResolver{}, false), Sources{Entries: entries})

	_, err := m.Reload(context.Background())
	require.NoError(t, err)

	entries.err = errors.New("database is down")
	n, err := m.Reload(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.Len())
}

func TestManager_ReloadWithPartialFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
models:
  - model_id: meta.llama2-13b-chat-v1
    bedrock: {region: us-east-1}
  - model_id: meta.llama2-70b-chat-v1
    bedrock: {}
`), 0o600))

	c := New()
	m := NewManager(c, NewLoader(&recordingResolver{}, false), Sources{File: path})

	n, err := m.Reload(context.Background())
	assert.ErrorIs(t, err, models.ErrValidation)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, c.Len())
}

func TestManager_Run(t *testing.T) {
	entries := &mutableEntries{entries: []*models.CatalogEntry{storedEntry("anthropic.claude-v2")}}
	c := New()
	m := NewManager(c, NewLoader(&recordingResolver{}, false), Sources{Entries: entries})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return c.Len() == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
