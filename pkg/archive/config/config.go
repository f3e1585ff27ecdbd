package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/archivehub/archive-hub/pkg/archive"
	repomemory "github.com/archivehub/archive-hub/pkg/archive/repo/memory"
	repopg "github.com/archivehub/archive-hub/pkg/archive/repo/postgres"
	reposqlite "github.com/archivehub/archive-hub/pkg/archive/repo/sqlite"
	fsstorage "github.com/archivehub/archive-hub/pkg/archive/storage/fs"
	memorystorage "github.com/archivehub/archive-hub/pkg/archive/storage/memory"
	s3storage "github.com/archivehub/archive-hub/pkg/archive/storage/s3"
)

// ServerConfig represents server configuration for the archive service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// Database configuration
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseType string `env:"DATABASE_TYPE" env-default:"memory"` // "memory", "postgres", "sqlite"
	SqlitePath   string `env:"SQLITE_PATH" env-default:"./data/archive.db"`

	// Storage configuration
	StorageType        string `env:"STORAGE_TYPE" env-default:"memory"` // "memory", "fs", "s3"
	FSBaseDir          string `env:"FS_BASE_DIR" env-default:"./data/blobs"`
	FSURLPrefix        string `env:"FS_URL_PREFIX" env-default:"/api/v1/uploads"`
	S3Region           string `env:"S3_REGION" env-default:"us-east-1"`
	S3Bucket           string `env:"S3_BUCKET"`
	S3AccessKeyID      string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey  string `env:"S3_SECRET_ACCESS_KEY"`
	S3Endpoint         string `env:"S3_ENDPOINT"`
	S3UsePathStyle     bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	S3PresignDuration  int    `env:"S3_PRESIGN_DURATION" env-default:"3600"`
	S3CreateBucket     bool   `env:"S3_CREATE_BUCKET" env-default:"false"`

	// Identity
	JWTSecret string `env:"JWT_SECRET" env-default:"dev-secret"`

	// Content defaults and fetch behavior
	DefaultLanguage  string `env:"DEFAULT_LANGUAGE" env-default:"ukr"`
	DefaultCategory  string `env:"DEFAULT_CATEGORY" env-default:"Unsorted"`
	FetchTimeoutSecs int    `env:"FETCH_TIMEOUT_SECS" env-default:"15"`

	// CORS
	AllowedOrigins string `env:"ALLOWED_ORIGINS" env-default:"*"`
}

// Load reads the server configuration from environment variables.
func Load() (*ServerConfig, error) {
	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	// Auto-detect postgres from the connection URL
	if strings.HasPrefix(cfg.DatabaseURL, "postgres://") || strings.HasPrefix(cfg.DatabaseURL, "postgresql://") {
		cfg.DatabaseType = "postgres"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory", "sqlite":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when using postgres")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}

	switch c.StorageType {
	case "memory", "fs":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when using s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}

	return nil
}

// Origins returns the parsed CORS origin list.
func (c *ServerConfig) Origins() []string {
	parts := strings.Split(c.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// BuildService creates a Service and its BlobStore from the configuration.
// The blob store is returned separately so the upload handler can reach it.
func (c *ServerConfig) BuildService() (archive.Service, archive.BlobStore, error) {
	repo, err := c.buildRepository()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildBlobStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build blob store: %w", err)
	}

	defaults := archive.DefaultDefaults()
	defaults.Language = c.DefaultLanguage
	defaults.Category = c.DefaultCategory

	svc, err := archive.New(
		archive.WithRepository(repo),
		archive.WithBlobStore(store),
		archive.WithFetcher(archive.NewHTTPFetcher(time.Duration(c.FetchTimeoutSecs)*time.Second)),
		archive.WithDefaults(defaults),
	)
	if err != nil {
		return nil, nil, err
	}
	return svc, store, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository() (archive.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return repomemory.New(), nil
	case "sqlite":
		return reposqlite.Open(c.SqlitePath)
	case "postgres":
		pool, err := pgxpool.New(context.Background(), c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		return repopg.NewWithPool(pool), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// buildBlobStore creates a BlobStore based on the configuration
func (c *ServerConfig) buildBlobStore() (archive.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.FSBaseDir,
			URLPrefix: c.FSURLPrefix,
		})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3Region,
			Bucket:                 c.S3Bucket,
			AccessKeyID:            c.S3AccessKeyID,
			SecretAccessKey:        c.S3SecretAccessKey,
			Endpoint:               c.S3Endpoint,
			UsePathStyle:           c.S3UsePathStyle,
			PresignDuration:        c.S3PresignDuration,
			CreateBucketIfNotExist: c.S3CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", c.StorageType)
	}
}

// PingPostgres verifies connectivity to Postgres before the server starts.
func PingPostgres(databaseURL string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	pool, err := pgxpool.New(context.Background(), databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
