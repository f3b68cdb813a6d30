// Package minio provides a MinIO/S3-compatible implementation of the
// core.Backend interface.
package minio

import (
	"github.com/minio/minio-go/v7"

	"github.com/jmgilman/objfs/errors"
)

// Config holds MinIO backend configuration.
type Config struct {
	// Endpoint is the MinIO server address (e.g., "localhost:9000")
	Endpoint string

	// Bucket is the S3 bucket holding all objects
	Bucket string

	// AccessKey is the access key ID for authentication
	AccessKey string

	// SecretKey is the secret access key for authentication
	SecretKey string

	// UseSSL enables HTTPS connections
	UseSSL bool

	// Region is the bucket region. Setting it avoids a location lookup
	// before presigning URLs.
	Region string

	// Client is an optional pre-configured MinIO client
	// If provided, Endpoint/AccessKey/SecretKey are ignored
	Client *minio.Client
}

// validate checks if the configuration is valid.
// Either Client OR (Endpoint + Bucket + AccessKey + SecretKey) must be provided.
func (c *Config) validate() error {
	// Check if bucket is provided (required in all cases)
	if c.Bucket == "" {
		return invalid("bucket", "bucket is required")
	}

	// If Client is provided, we're done (other fields are ignored)
	if c.Client != nil {
		return nil
	}

	// Otherwise, check required connection fields
	if c.Endpoint == "" {
		return invalid("endpoint", "endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return invalid("access_key", "access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return invalid("secret_key", "secret key is required when client is not provided")
	}

	return nil
}

func invalid(field, msg string) error {
	return errors.WithContext(errors.New(errors.CodeInvalidConfig, msg), "field", field)
}
