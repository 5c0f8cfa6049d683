package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"model_catalog/internal/auth"
	"model_catalog/internal/catalog"
	"model_catalog/internal/config"
	"model_catalog/internal/logging"
	"model_catalog/internal/middleware"
	"model_catalog/internal/models"
	"model_catalog/internal/prompts"
	"model_catalog/internal/providers"
	"model_catalog/internal/storage"
	"model_catalog/internal/utils"
)

// EntryStore persists catalog entries for the admin API.
type EntryStore interface {
	List(ctx context.Context, enabledOnly bool) ([]*models.CatalogEntry, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogEntry, error)
	Create(ctx context.Context, entry *models.CatalogEntry) error
	Update(ctx context.Context, entry *models.CatalogEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InvocationRecorder receives one record per invoke request that reached a
// catalog item.
type InvocationRecorder interface {
	Record(inv logging.Invocation)
}

// PromptCache is the caching layer in front of the prompt stores.
type PromptCache interface {
	Invalidate(ctx context.Context, id string) error
	Stats() storage.CacheStats
}

// HealthChecker is a backend reported by /health.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Dependencies aggregates all services the HTTP layer needs.
type Dependencies struct {
	Manager *catalog.Manager
	Prompts prompts.Store
	// PromptCache is nil when prompts are served uncached
	PromptCache PromptCache
	// Entries is nil when no database is configured
	Entries EntryStore
	// Invocations is nil when the invocation log is disabled
	Invocations   InvocationRecorder
	HealthChecks  map[string]HealthChecker
	InvokeTimeout time.Duration

	db            *storage.DB
	redis         *storage.RedisClient
	invocationLog *logging.InvocationLog
	logger        *utils.Logger
}

// NewRouter creates an HTTP router with all dependencies wired up and the
// catalog loaded.
func NewRouter(ctx context.Context, cfg *config.Config) (*http.ServeMux, *Dependencies, error) {
	logger := defaultLogger
	deps := &Dependencies{
		HealthChecks:  make(map[string]HealthChecker),
		InvokeTimeout: cfg.Catalog.InvokeTimeout,
		logger:        logger,
	}

	static := awsCredentials(cfg.AWS)
	loader := catalog.NewLoader(providers.NewAWSClientResolver(static), cfg.Catalog.LegacyFalsyDefaults)
	sources := catalog.Sources{File: cfg.Catalog.File}

	if cfg.Database.Enabled() {
		db, err := storage.NewDB(storage.DBConfig{
			DSN:             cfg.Database.URL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
			EntryCacheSize:  cfg.Database.EntryCacheSize,
			EntryCacheTTL:   cfg.Database.EntryCacheTTL,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		deps.db = db
		if err := db.Migrate(ctx); err != nil {
			deps.Close()
			return nil, nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		repo := db.NewCatalogRepository()
		deps.Entries = repo
		deps.HealthChecks["database"] = db
		sources.Entries = repo
	}

	var remote *prompts.RedisCache
	if cfg.Redis.Enabled() {
		redisClient, err := storage.NewRedisClient(storage.RedisConfig{
			Address:      cfg.Redis.Address,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			deps.Close()
			return nil, nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		deps.redis = redisClient
		deps.HealthChecks["redis"] = redisClient
		remote = prompts.NewRedisCache(redisClient.Client(), cfg.Prompts.CacheTTL)
	}

	promptStore, err := newPromptStore(ctx, cfg.Prompts, static, remote)
	if err != nil {
		deps.Close()
		return nil, nil, err
	}
	deps.Prompts = promptStore
	deps.PromptCache = promptStore

	if cfg.Catalog.DiscoveryEnabled {
		endpoint := optionalString(cfg.Catalog.DiscoveryEndpoint)
		profile := optionalString(cfg.Catalog.DiscoveryProfile)
		client, err := providers.NewFoundationModelClient(ctx, string(cfg.Catalog.DiscoveryRegion), endpoint, profile, static)
		if err != nil {
			deps.Close()
			return nil, nil, fmt.Errorf("failed to initialize model discovery: %w", err)
		}
		sources.Discovery = &catalog.DiscoverySource{
			Lister: client,
			Parameters: &models.BedrockParameters{
				Region:      cfg.Catalog.DiscoveryRegion,
				EndpointURL: endpoint,
				Profile:     profile,
			},
		}
	}

	if cfg.InvocationLog.Enabled() {
		invocationLog, err := logging.NewInvocationLog(logging.InvocationLogConfig{
			FileTemplate:  cfg.InvocationLog.FileTemplate,
			MaxSize:       cfg.InvocationLog.MaxSize,
			MaxFiles:      cfg.InvocationLog.MaxFiles,
			BufferSize:    cfg.InvocationLog.BufferSize,
			FlushInterval: cfg.InvocationLog.FlushInterval,
		})
		if err != nil {
			deps.Close()
			return nil, nil, fmt.Errorf("failed to initialize invocation log: %w", err)
		}
		deps.invocationLog = invocationLog
		deps.Invocations = invocationLog
	}

	deps.Manager = catalog.NewManager(catalog.New(), loader, sources)
	if n, err := deps.Manager.Reload(ctx); err != nil {
		if n == 0 {
			deps.Close()
			return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		logger.Warn("Catalog loaded partially", "items", n, "error", err)
	}

	mux := http.NewServeMux()
	registerRoutes(mux, deps, cfg)

	return mux, deps, nil
}

// newPromptStore chains S3 (when configured), the prompts directory and the
// built-in templates behind the template caches.
func newPromptStore(ctx context.Context, cfg config.PromptsConfig, static *providers.StaticCredentials, remote *prompts.RedisCache) (*prompts.CachedStore, error) {
	var chain prompts.ChainStore
	if cfg.S3Bucket != "" {
		s3Store, err := prompts.NewS3Store(ctx, prompts.S3Config{
			Bucket:      cfg.S3Bucket,
			Prefix:      cfg.S3Prefix,
			Region:      cfg.S3Region,
			Endpoint:    cfg.S3Endpoint,
			Credentials: static,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 prompt store: %w", err)
		}
		chain = append(chain, s3Store)
	}
	chain = append(chain, prompts.NewFileStore(cfg.Dir), prompts.BuiltinStore{})

	local := storage.NewLRUCache[*prompts.PromptTemplate](cfg.CacheSize, cfg.CacheTTL)
	return prompts.NewCachedStore(chain, local, remote), nil
}

func awsCredentials(cfg config.AWSConfig) *providers.StaticCredentials {
	if cfg.AccessKeyID == "" {
		return nil
	}
	return &providers.StaticCredentials{
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		SessionToken:    cfg.SessionToken,
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Close flushes the invocation log and releases the database and Redis
// connections.
func (d *Dependencies) Close() error {
	if d.invocationLog != nil {
		d.invocationLog.Shutdown()
	}

	var errs []error
	if d.db != nil {
		errs = append(errs, d.db.Close())
	}
	if d.redis != nil {
		errs = append(errs, d.redis.Close())
	}
	return errors.Join(errs...)
}

var defaultLogger = utils.NewLogger("httpapi")

// log never writes to d, handlers call it concurrently.
func (d *Dependencies) log() *utils.Logger {
	if d.logger == nil {
		return defaultLogger
	}
	return d.logger
}

func registerRoutes(mux *http.ServeMux, deps *Dependencies, cfg *config.Config) {
	// Health check endpoint - public
	mux.HandleFunc("GET /health", deps.handleHealth)

	// Catalog endpoints - public
	mux.HandleFunc("GET /v1/catalog", deps.handleListItems)
	mux.HandleFunc("GET /v1/catalog/item", deps.handleGetItem)
	mux.HandleFunc("GET /v1/catalog/prompt", deps.handleGetPrompt)
	mux.HandleFunc("GET /v1/catalog/regions", deps.handleListRegions)
	mux.HandleFunc("POST /v1/catalog/invoke", deps.handleInvoke)

	// Admin endpoints - viewers may read stored entries, admins may change them
	viewer := middleware.AdminJWTMiddleware(cfg.JWTSecret, auth.RoleViewer)
	admin := middleware.AdminJWTMiddleware(cfg.JWTSecret, auth.RoleAdmin)
	mux.Handle("GET /admin/catalog", viewer(http.HandlerFunc(deps.handleListEntries)))
	mux.Handle("POST /admin/catalog", admin(http.HandlerFunc(deps.handleCreateEntry)))
	mux.Handle("PATCH /admin/catalog/{id}", admin(http.HandlerFunc(deps.handleUpdateEntry)))
	mux.Handle("DELETE /admin/catalog/{id}", admin(http.HandlerFunc(deps.handleDeleteEntry)))
	mux.Handle("POST /admin/catalog/reload", admin(http.HandlerFunc(deps.handleReload)))
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status          string              `json:"status"`
	Items           int                 `json:"items"`
	LastReload      *time.Time          `json:"last_reload,omitempty"`
	LastReloadError string              `json:"last_reload_error,omitempty"`
	PromptCache     *storage.CacheStats `json:"prompt_cache,omitempty"`
	Checks          map[string]string   `json:"checks,omitempty"`
}

func (d *Dependencies) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{Status: "ok", Items: d.Manager.Catalog().Len()}
	if d.PromptCache != nil {
		stats := d.PromptCache.Stats()
		resp.PromptCache = &stats
	}
	if at, err := d.Manager.LastReload(); !at.IsZero() {
		resp.LastReload = &at
		if err != nil {
			resp.LastReloadError = err.Error()
		}
	}
	code := http.StatusOK
	for name, checker := range d.HealthChecks {
		if resp.Checks == nil {
			resp.Checks = make(map[string]string, len(d.HealthChecks))
		}
		if err := checker.Ping(ctx); err != nil {
			d.log().Warn("Health check failed", "backend", name, "error", err)
			resp.Checks[name] = "unavailable"
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}

	utils.RespondWithJSON(w, code, resp)
}
