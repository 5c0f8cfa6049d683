package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"model_catalog/internal/models"
	"model_catalog/internal/utils"
)

// Config holds configuration for the catalog service.
type Config struct {
	HTTPPort  string
	JWTSecret []byte
	LogLevel  utils.LogLevel
	Catalog   CatalogConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Prompts   PromptsConfig
	AWS       AWSConfig

	InvocationLog InvocationLogConfig
}

// CatalogConfig controls where catalog items come from
type CatalogConfig struct {
	File                string // YAML catalog document, optional
	LegacyFalsyDefaults bool   // treat zero generation values as unset
	DiscoveryEnabled    bool
	DiscoveryRegion     models.AWSRegion
	DiscoveryEndpoint   string
	DiscoveryProfile    string
	ReloadInterval      time.Duration // 0 disables periodic reloads
	InvokeTimeout       time.Duration
}

// DatabaseConfig holds database connection settings. An empty URL disables
// the stored catalog.
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	EntryCacheSize  int
	EntryCacheTTL   time.Duration
}

// Enabled reports whether a database is configured
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// RedisConfig holds Redis connection settings. An empty address disables
// the shared prompt cache.
type RedisConfig struct {
	Address      string
	Password     string
	DB           int
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Enabled reports whether Redis is configured
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

// PromptsConfig holds prompt template store settings
type PromptsConfig struct {
	Dir        string
	S3Bucket   string // when set, templates are read from S3 before Dir
	S3Prefix   string
	S3Region   string
	S3Endpoint string
	CacheSize  int
	CacheTTL   time.Duration
}

// InvocationLogConfig holds settings for the JSONL invocation log. An empty
// template disables it.
type InvocationLogConfig struct {
	FileTemplate  string // e.g. "/var/log/catalog/invocations-%s.jsonl"
	MaxSize       int64
	MaxFiles      int
	BufferSize    int
	FlushInterval time.Duration
}

// Enabled reports whether the invocation log is configured
func (c InvocationLogConfig) Enabled() bool {
	return c.FileTemplate != ""
}

// AWSConfig holds optional static credentials. When unset the default
// credential chain is used.
type AWSConfig struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

func getEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	intVal, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return intVal
}

func getEnvBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	boolVal, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return boolVal
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvString(key string, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func logLevel() utils.LogLevel {
	if getEnvBool("LOCAL", false) {
		return utils.Debug
	}
	level, _ := utils.ParseLogLevel(getEnvString("LOG_LEVEL", "warn"))
	return level
}

// Load reads configuration from the environment, after loading the .env
// file named by DOTENV_PATH (default ".env") when it exists. Variables
// already set in the environment win over the file.
func Load() (*Config, error) {
	if err := loadDotEnv(getEnvString("DOTENV_PATH", ".env")); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		HTTPPort:  getEnvString("HTTP_PORT", "8080"),
		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		LogLevel:  logLevel(),
		Catalog: CatalogConfig{
			File:                getEnvString("CATALOG_FILE", ""),
			LegacyFalsyDefaults: getEnvBool("CATALOG_LEGACY_FALSY_DEFAULTS", false),
			DiscoveryEnabled:    getEnvBool("CATALOG_DISCOVERY_ENABLED", false),
			DiscoveryRegion:     models.AWSRegion(getEnvString("CATALOG_DISCOVERY_REGION", string(models.RegionUSEast1))),
			DiscoveryEndpoint:   getEnvString("CATALOG_DISCOVERY_ENDPOINT", ""),
			DiscoveryProfile:    getEnvString("CATALOG_DISCOVERY_PROFILE", ""),
			ReloadInterval:      getEnvDuration("CATALOG_RELOAD_INTERVAL", 0),
			InvokeTimeout:       getEnvDuration("CATALOG_INVOKE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 1*time.Minute),
			EntryCacheSize:  getEnvInt("DB_ENTRY_CACHE_SIZE", 256),
			EntryCacheTTL:   getEnvDuration("DB_ENTRY_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Address:      os.Getenv("REDIS_ADDRESS"),
			Password:     getEnvString("REDIS_PASSWORD", ""),
			DB:           getEnvInt("REDIS_DB", 0),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Prompts: PromptsConfig{
			Dir:        getEnvString("PROMPTS_DIR", "."),
			S3Bucket:   getEnvString("PROMPTS_S3_BUCKET", ""),
			S3Prefix:   getEnvString("PROMPTS_S3_PREFIX", ""),
			S3Region:   getEnvString("PROMPTS_S3_REGION", "us-east-1"),
			S3Endpoint: getEnvString("PROMPTS_S3_ENDPOINT", ""),
			CacheSize:  getEnvInt("PROMPTS_CACHE_SIZE", 128),
			CacheTTL:   getEnvDuration("PROMPTS_CACHE_TTL", 10*time.Minute),
		},
		AWS: AWSConfig{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		},
		InvocationLog: InvocationLogConfig{
			FileTemplate:  getEnvString("INVOCATION_LOG_TEMPLATE", ""),
			MaxSize:       int64(getEnvInt("INVOCATION_LOG_MAX_SIZE", 10*1024*1024)),
			MaxFiles:      getEnvInt("INVOCATION_LOG_MAX_FILES", 5),
			BufferSize:    getEnvInt("INVOCATION_LOG_BUFFER_SIZE", 1000),
			FlushInterval: getEnvDuration("INVOCATION_LOG_FLUSH_INTERVAL", 5*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Catalog.DiscoveryEnabled && !c.Catalog.DiscoveryRegion.IsValid() {
		errs = append(errs, fmt.Errorf("CATALOG_DISCOVERY_REGION %q is not a known AWS region", c.Catalog.DiscoveryRegion))
	}
	if c.Catalog.File == "" && !c.Database.Enabled() && !c.Catalog.DiscoveryEnabled {
		errs = append(errs, errors.New("no catalog source: set CATALOG_FILE, DATABASE_URL or CATALOG_DISCOVERY_ENABLED"))
	}
	if c.Prompts.CacheSize < 1 {
		errs = append(errs, errors.New("PROMPTS_CACHE_SIZE must be positive"))
	}
	if c.InvocationLog.Enabled() && strings.Count(c.InvocationLog.FileTemplate, "%s") != 1 {
		errs = append(errs, errors.New("INVOCATION_LOG_TEMPLATE must contain exactly one %s"))
	}
	if strings.TrimSpace(c.HTTPPort) == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}

	return errors.Join(errs...)
}
