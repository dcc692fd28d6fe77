package config

import (
	"fmt"
	"time"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case "memory":
		case "mongo", "postgres":
			if url == "" {
				return fmt.Errorf("database URL is required for %s", dbType)
			}
		default:
			return fmt.Errorf("database type must be 'memory', 'mongo' or 'postgres', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseName sets the Mongo database name
func WithDatabaseName(name string) Option {
	return func(c *ServerConfig) error {
		if name == "" {
			return fmt.Errorf("database name cannot be empty")
		}
		c.DatabaseName = name
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithFilesystemStorage stores uploads below dir
func WithFilesystemStorage(dir string) Option {
	return func(c *ServerConfig) error {
		if dir == "" {
			return fmt.Errorf("upload directory cannot be empty")
		}
		c.StorageType = "fs"
		c.UploadDirectory = dir
		return nil
	}
}

// WithS3Storage stores uploads in an S3 bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("S3 bucket cannot be empty")
		}
		if region == "" {
			region = "us-east-1"
		}
		c.StorageType = "s3"
		c.S3.Bucket = bucket
		c.S3.Region = region
		return nil
	}
}

// WithS3Credentials sets AWS credentials for S3 storage
func WithS3Credentials(accessKeyID, secretAccessKey string) Option {
	return func(c *ServerConfig) error {
		c.S3.AccessKeyID = accessKeyID
		c.S3.SecretAccessKey = secretAccessKey
		return nil
	}
}

// WithS3Endpoint sets a custom S3 endpoint (for MinIO, LocalStack, etc.)
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		c.S3.Endpoint = endpoint
		c.S3.UsePathStyle = usePathStyle
		return nil
	}
}

// WithMemoryStorage keeps uploads in memory (for testing)
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.StorageType = "memory"
		return nil
	}
}

// WithFedora enables publication to the archive at url
func WithFedora(url, username, password string, timeout time.Duration) Option {
	return func(c *ServerConfig) error {
		if url == "" {
			return fmt.Errorf("fedora URL cannot be empty")
		}
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.Fedora = FedoraConfig{
			URL:      url,
			Username: username,
			Password: password,
			Timeout:  timeout,
		}
		return nil
	}
}

// WithRecordTypes replaces the allowed record types
func WithRecordTypes(types ...string) Option {
	return func(c *ServerConfig) error {
		c.RecordTypes = cleanList(types)
		return nil
	}
}

// WithAPIKeySHA256 sets the accepted API key digest
func WithAPIKeySHA256(digest string) Option {
	return func(c *ServerConfig) error {
		c.APIKeySHA256 = digest
		return nil
	}
}

// WithEventLogging enables or disables event logging
func WithEventLogging(enabled bool) Option {
	return func(c *ServerConfig) error {
		c.EnableEventLogging = enabled
		return nil
	}
}
