package catalog

import (
	"context"
	"sync"
	"time"

	"model_catalog/internal/utils"
)

// Manager keeps a Catalog in sync with its sources.
type Manager struct {
	catalog *Catalog
	loader  *Loader
	sources Sources
	logger  *utils.Logger

	reloadMu   sync.Mutex
	lastReload time.Time
	lastErr    error
}

// NewManager creates a manager serving c from src.
func NewManager(c *Catalog, loader *Loader, src Sources) *Manager {
	return &Manager{
		catalog: c,
		loader:  loader,
		sources: src,
		logger:  utils.NewLogger("catalog-manager"),
	}
}

func (m *Manager) Catalog() *Catalog {
	return m.catalog
}

func (m *Manager) Loader() *Loader {
	return m.loader
}

// Reload loads every source and swaps the catalog content. Entry and
// source failures are returned alongside the number of items now served.
// When nothing at all could be loaded the previous content is kept.
func (m *Manager) Reload(ctx context.Context) (int, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()

	items, err := m.loader.LoadAll(ctx, m.sources)
	m.lastReload = time.Now()
	m.lastErr = err

	if len(items) == 0 && err != nil {
		m.logger.Error("Catalog reload produced no items, keeping previous catalog", "error", err)
		return m.catalog.Len(), err
	}
	if replaceErr := m.catalog.Replace(items); replaceErr != nil {
		return m.catalog.Len(), replaceErr
	}
	if err != nil {
		m.logger.Warn("Catalog reloaded with errors", "items", len(items), "error", err)
	}
	return len(items), err
}

// LastReload reports when Reload last ran and what it returned.
func (m *Manager) LastReload() (time.Time, error) {
	m.reloadMu.Lock()
	defer m.reloadMu.Unlock()
	return m.lastReload, m.lastErr
}

// Run reloads the catalog every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := m.Reload(ctx); err != nil {
				m.logger.Warn("Periodic catalog reload failed", "error", err)
			}
		}
	}
}
