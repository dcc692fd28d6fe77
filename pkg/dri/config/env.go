package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig mirrors the environment variables understood by WithEnv. Fields
// carry no defaults so unset variables leave earlier options in place.
type envConfig struct {
	Port        string `env:"PORT"`
	Environment string `env:"ENVIRONMENT"`

	DatabaseType string `env:"DATABASE_TYPE"`
	DatabaseURL  string `env:"DATABASE_URL"`
	DatabaseName string `env:"DATABASE_NAME"`
	DBSchema     string `env:"DB_SCHEMA"`

	UploadDirectory string `env:"UPLOAD_DIRECTORY"`
	StorageType     string `env:"STORAGE_TYPE"`

	S3Bucket          string `env:"AWS_S3_BUCKET"`
	S3Region          string `env:"AWS_REGION"`
	S3AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint        string `env:"AWS_S3_ENDPOINT"`
	S3UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE"`
	S3CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET"`

	FedoraURL      string        `env:"FEDORA_URL"`
	FedoraUsername string        `env:"FEDORA_USERNAME"`
	FedoraPassword string        `env:"FEDORA_PASSWORD"`
	FedoraTimeout  time.Duration `env:"FEDORA_TIMEOUT"`

	RecordTypes  []string `env:"RECORD_TYPES" env-separator:","`
	APIKeySHA256 string   `env:"API_KEY_SHA256"`
}

// WithEnv applies environment variable overrides.
//
// Database:
//
//	DATABASE_URL  - "mongodb://...", "postgres://..." or empty for memory.
//	                DATABASE_TYPE is inferred from the scheme when not set.
//	DATABASE_NAME - Mongo database name
//	DB_SCHEMA     - Postgres search_path
//
// Uploads:
//
//	UPLOAD_DIRECTORY - fs backend root
//	STORAGE_TYPE     - "fs", "s3" or "memory"
//	AWS_S3_BUCKET, AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY,
//	AWS_S3_ENDPOINT, AWS_S3_USE_PATH_STYLE, AWS_S3_CREATE_BUCKET
//
// Archive:
//
//	FEDORA_URL, FEDORA_USERNAME, FEDORA_PASSWORD, FEDORA_TIMEOUT (e.g. "30s")
//
// Records:
//
//	RECORD_TYPES   - comma separated list, e.g. "collection,series,item"
//	API_KEY_SHA256 - hex digest of the accepted API key
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}

		setString(&c.Port, env.Port)
		setString(&c.Environment, env.Environment)

		if err := applyDatabaseEnv(env, c); err != nil {
			return err
		}

		setString(&c.UploadDirectory, env.UploadDirectory)
		setString(&c.StorageType, env.StorageType)
		setString(&c.S3.Bucket, env.S3Bucket)
		setString(&c.S3.Region, env.S3Region)
		setString(&c.S3.AccessKeyID, env.S3AccessKeyID)
		setString(&c.S3.SecretAccessKey, env.S3SecretAccessKey)
		setString(&c.S3.Endpoint, env.S3Endpoint)
		if env.S3UsePathStyle {
			c.S3.UsePathStyle = true
		}
		if env.S3CreateBucket {
			c.S3.CreateBucket = true
		}

		setString(&c.Fedora.URL, env.FedoraURL)
		setString(&c.Fedora.Username, env.FedoraUsername)
		setString(&c.Fedora.Password, env.FedoraPassword)
		if env.FedoraTimeout > 0 {
			c.Fedora.Timeout = env.FedoraTimeout
		}

		if types := cleanList(env.RecordTypes); len(types) > 0 {
			c.RecordTypes = types
		}
		setString(&c.APIKeySHA256, env.APIKeySHA256)

		return nil
	}
}

// applyDatabaseEnv applies database configuration from environment
func applyDatabaseEnv(env envConfig, c *ServerConfig) error {
	setString(&c.DatabaseName, env.DatabaseName)
	setString(&c.DBSchema, env.DBSchema)

	if env.DatabaseURL != "" && env.DatabaseURL != "memory" {
		c.DatabaseURL = env.DatabaseURL
	}

	if env.DatabaseType != "" {
		c.DatabaseType = env.DatabaseType
		return nil
	}
	if env.DatabaseURL == "" {
		return nil
	}

	switch {
	case env.DatabaseURL == "memory":
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
	case strings.HasPrefix(env.DatabaseURL, "mongodb://"), strings.HasPrefix(env.DatabaseURL, "mongodb+srv://"):
		c.DatabaseType = "mongo"
	case strings.HasPrefix(env.DatabaseURL, "postgresql://"), strings.HasPrefix(env.DatabaseURL, "postgres://"):
		c.DatabaseType = "postgres"
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'mongodb://...' or 'postgresql://...')", env.DatabaseURL)
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
