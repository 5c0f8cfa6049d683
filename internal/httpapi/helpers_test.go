package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"model_catalog/internal/auth"
	"model_catalog/internal/catalog"
	"model_catalog/internal/config"
	"model_catalog/internal/models"
	"model_catalog/internal/prompts"
	"model_catalog/internal/providers"
	"model_catalog/internal/storage"
)

var testSecret = []byte("test-secret")

// memoryEntryStore is an in-memory EntryStore.
type memoryEntryStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*models.CatalogEntry
	listErr error
}

func newMemoryEntryStore(entries ...*models.CatalogEntry) *memoryEntryStore {
	s := &memoryEntryStore{entries: make(map[uuid.UUID]*models.CatalogEntry)}
	for _, e := range entries {
		if e.ID == uuid.Nil {
			e.ID = uuid.New()
		}
		s.entries[e.ID] = e
	}
	return s
}

func (s *memoryEntryStore) List(ctx context.Context, enabledOnly bool) ([]*models.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []*models.CatalogEntry
	for _, e := range s.entries {
		if enabledOnly && !e.Enabled {
			continue
		}
		clone := *e
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memoryEntryStore) GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, storage.ErrCatalogEntryNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *memoryEntryStore) Create(ctx context.Context, entry *models.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.Name == entry.Name {
			return storage.ErrCatalogEntryExists
		}
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	clone := *entry
	s.entries[entry.ID] = &clone
	return nil
}

func (s *memoryEntryStore) Update(ctx context.Context, entry *models.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return storage.ErrCatalogEntryNotFound
	}
	entry.UpdatedAt = time.Now()
	clone := *entry
	s.entries[entry.ID] = &clone
	return nil
}

func (s *memoryEntryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return storage.ErrCatalogEntryNotFound
	}
	delete(s.entries, id)
	return nil
}

// fakeInvoker answers every InvokeModel call with body, or err when set.
type fakeInvoker struct {
	mu     sync.Mutex
	body   string
	err    error
	inputs []*bedrockruntime.InvokeModelInput
}

func (f *fakeInvoker) InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &bedrockruntime.InvokeModelOutput{Body: []byte(f.body)}, nil
}

func (f *fakeInvoker) lastBody(t *testing.T) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.inputs)
	var body map[string]any
	require.NoError(t, json.Unmarshal(f.inputs[len(f.inputs)-1].Body, &body))
	return body
}

func resolverFor(invoker providers.BedrockInvoker) providers.ClientResolver {
	return providers.ClientResolverFunc(func(ctx context.Context, req providers.ClientRequest) (providers.BedrockInvoker, error) {
		return invoker, nil
	})
}

func failingResolver() providers.ClientResolver {
	return providers.ClientResolverFunc(func(ctx context.Context, req providers.ClientRequest) (providers.BedrockInvoker, error) {
		return nil, errors.New("no credentials")
	})
}

func titanEntry() *models.CatalogEntry {
	return &models.CatalogEntry{
		Name:    catalog.DisplayName("amazon.titan-text-express-v1", models.RegionUSEast1),
		ModelID: "amazon.titan-text-express-v1",
		Bedrock: models.JSONB{"region": "us-east-1"},
		Enabled: true,
	}
}

func claudeEntry() *models.CatalogEntry {
	return &models.CatalogEntry{
		Name:      catalog.DisplayName("anthropic.claude-v2", models.RegionUSWest2),
		ModelID:   "anthropic.claude-v2",
		Bedrock:   models.JSONB{"region": "us-west-2"},
		LLMConfig: models.JSONB{"temperature": 0.2},
		Enabled:   true,
	}
}

type testServer struct {
	mux     *http.ServeMux
	deps    *Dependencies
	entries *memoryEntryStore
}

func newTestServer(t *testing.T, resolver providers.ClientResolver, entries *memoryEntryStore) *testServer {
	t.Helper()

	manager := catalog.NewManager(catalog.New(), catalog.NewLoader(resolver, false), catalog.Sources{Entries: entries})
	_, err := manager.Reload(context.Background())
	require.NoError(t, err)

	deps := &Dependencies{
		Manager:       manager,
		Prompts:       prompts.BuiltinStore{},
		Entries:       entries,
		HealthChecks:  make(map[string]HealthChecker),
		InvokeTimeout: time.Second,
	}
	mux := http.NewServeMux()
	registerRoutes(mux, deps, &config.Config{JWTSecret: testSecret})

	return &testServer{mux: mux, deps: deps, entries: entries}
}

func (s *testServer) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func tokenFor(t *testing.T, roles ...auth.Role) string {
	t.Helper()
	token, _, err := auth.GenerateAdminJWT(testSecret, "alice", roles, time.Hour)
	require.NoError(t, err)
	return token
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }
