package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-dri/pkg/dri"
	"github.com/tendant/simple-dri/pkg/dri/convert"
	"github.com/tendant/simple-dri/pkg/dri/fedora"
	"github.com/tendant/simple-dri/pkg/dri/repo/memory"
	repomongo "github.com/tendant/simple-dri/pkg/dri/repo/mongo"
	repopg "github.com/tendant/simple-dri/pkg/dri/repo/postgres"
	fsstorage "github.com/tendant/simple-dri/pkg/dri/storage/fs"
	memorystorage "github.com/tendant/simple-dri/pkg/dri/storage/memory"
	s3storage "github.com/tendant/simple-dri/pkg/dri/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:            "8080",
		Environment:     "development",
		DatabaseType:    "memory",
		DatabaseName:    "dri",
		UploadDirectory: "./uploads",
		StorageType:     "fs",
		S3: S3Config{
			Region: "us-east-1",
		},
		Fedora: FedoraConfig{
			Timeout: 30 * time.Second,
		},
		RecordTypes:        []string{"collection", "series", "item"},
		EnableEventLogging: true,
	}
}

// ServerConfig represents configuration for the repository service
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing

	// Database configuration
	DatabaseType string // "memory", "mongo", "postgres"
	DatabaseURL  string
	DatabaseName string // Mongo database name (default: dri)
	DBSchema     string // Postgres schema for search_path, empty keeps the server default

	// Upload storage configuration
	UploadDirectory string // root for the fs backend
	StorageType     string // "fs", "s3", "memory"
	S3              S3Config

	// Archive configuration; publication is disabled when Fedora.URL is empty
	Fedora FedoraConfig

	// Allowed record types; empty disables type validation
	RecordTypes []string

	// SHA-256 hex digest of the API key; empty disables key checks
	APIKeySHA256 string

	EnableEventLogging bool
}

// S3Config holds the S3 upload backend settings
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
	CreateBucket    bool
}

// FedoraConfig holds the archival repository settings
type FedoraConfig struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DatabaseType {
	case "memory":
	case "mongo":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using mongo")
		}
		if c.DatabaseName == "" {
			return errors.New("database_name is required when using mongo")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	default:
		return fmt.Errorf("database_type must be 'memory', 'mongo' or 'postgres', got %q", c.DatabaseType)
	}

	switch c.StorageType {
	case "memory":
	case "fs":
		if c.UploadDirectory == "" {
			return errors.New("upload_directory is required for fs storage")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("storage_type must be 'fs', 's3' or 'memory', got %q", c.StorageType)
	}

	if c.Fedora.URL != "" && c.Fedora.Timeout <= 0 {
		return errors.New("fedora timeout must be positive")
	}

	return nil
}

// CloseFunc releases the connections opened by BuildService.
type CloseFunc func(ctx context.Context) error

// BuildService creates a Service instance from the server configuration
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (dri.Service, CloseFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}

	options := []dri.Option{
		dri.WithConverter(convert.New()),
		dri.WithLogger(logger),
		dri.WithRecordTypes(c.RecordTypes...),
	}

	repo, closeRepo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}
	options = append(options, dri.WithRepository(repo))

	store, err := c.buildBlobStore(ctx)
	if err != nil {
		_ = closeRepo(ctx)
		return nil, nil, fmt.Errorf("failed to build storage backend %s: %w", c.StorageType, err)
	}
	options = append(options, dri.WithBlobStore(store))

	if c.Fedora.URL != "" {
		archive, err := fedora.New(fedora.Config{
			BaseURL:  c.Fedora.URL,
			Username: c.Fedora.Username,
			Password: c.Fedora.Password,
			Timeout:  c.Fedora.Timeout,
		}, fedora.WithLogger(logger))
		if err != nil {
			_ = closeRepo(ctx)
			return nil, nil, err
		}
		options = append(options, dri.WithArchive(archive))
	}

	if c.EnableEventLogging {
		options = append(options, dri.WithEventSink(dri.NewLogEventSink(logger)))
	}

	svc, err := dri.New(options...)
	if err != nil {
		_ = closeRepo(ctx)
		return nil, nil, err
	}
	return svc, closeRepo, nil
}

func noClose(context.Context) error { return nil }

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (dri.Repository, CloseFunc, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), noClose, nil

	case "mongo":
		client, err := repomongo.Connect(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		db := client.Database(c.DatabaseName)
		if err := repomongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, err
		}
		return repomongo.New(db), client.Disconnect, nil

	case "postgres":
		pool, err := NewPostgresPool(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, nil, err
		}
		if err := repopg.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repopg.NewWithPool(pool), func(context.Context) error {
			pool.Close()
			return nil
		}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// NewPostgresPool opens a pool and sets search_path on each connection when
// schema is not empty.
func NewPostgresPool(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schema}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// buildBlobStore creates the upload BlobStore based on the configuration
func (c *ServerConfig) buildBlobStore(ctx context.Context) (dri.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: c.UploadDirectory})

	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.StorageType)
	}
}
