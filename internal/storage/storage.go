// Package storage provides object storage for sweep report archives.
//
// This package defines a Storage interface with implementations for:
// - LocalStorage: File system storage for development
// - R2Storage: Cloudflare R2 (S3-compatible) storage for production
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// Interface Definition
// =============================================================================

// Storage defines the interface for object storage operations.
//
// All methods are context-aware for timeout and cancellation support.
type Storage interface {
	// Put stores data at the specified key with the given options.
	// Returns ErrKeyExists if the key already exists and opts.Overwrite is false.
	Put(ctx context.Context, key string, data io.Reader, opts PutOptions) error

	// Get retrieves the data at the specified key. The caller must close the
	// reader. Returns ErrNotFound if the key doesn't exist.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)

	// Delete removes the object at the specified key.
	// This operation is idempotent - no error is returned if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)
}

// =============================================================================
// Data Types
// =============================================================================

// PutOptions configures how an object is stored.
type PutOptions struct {
	// ContentType specifies the MIME type of the object.
	// If empty, it is derived from the key's extension.
	ContentType string

	// MaxSize specifies the maximum allowed size in bytes.
	// A value of 0 means no limit.
	MaxSize int64

	// Overwrite allows replacing an existing object at the same key.
	Overwrite bool
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	ETag         string // empty for local storage
}

// =============================================================================
// Configuration Types
// =============================================================================

// LocalConfig holds configuration for local filesystem storage.
type LocalConfig struct {
	// BasePath is the root directory where objects are stored.
	// Example: "./storage" or "/var/lib/chatquota/archive"
	BasePath string
}

// R2Config holds configuration for Cloudflare R2 storage.
type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string

	// Endpoint overrides the account endpoint, e.g. for an S3-compatible
	// server in development.
	Endpoint string

	// Region is required by the AWS SDK. R2 accepts "auto".
	Region string
}

// =============================================================================
// Provider Constants
// =============================================================================

const (
	// ProviderLocal identifies the local filesystem storage provider.
	ProviderLocal = "local"

	// ProviderR2 identifies the Cloudflare R2 storage provider.
	ProviderR2 = "r2"

	// ProviderNone disables report archiving.
	ProviderNone = "none"
)

// =============================================================================
// Key Generation Helpers
// =============================================================================

// SweepReportKey generates the archive key for a sweep run's report.
// Format: sweeps/{jobType}/{yyyy}/{mm}/{runID}.json
//
// Example: "sweeps/subscription_renewal/2024/03/987fcdeb-51a2-43f1-b9c4-12345678abcd.json"
func SweepReportKey(jobType string, startedAt time.Time, runID uuid.UUID) string {
	t := startedAt.UTC()
	return fmt.Sprintf("sweeps/%s/%04d/%02d/%s.json", jobType, t.Year(), int(t.Month()), runID)
}

// Open returns the Storage for provider, or nil for ProviderNone.
func Open(provider string, local LocalConfig, r2 R2Config, logger *slog.Logger) (Storage, error) {
	switch provider {
	case ProviderLocal:
		st, err := NewLocalStorage(local, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	case ProviderR2:
		st, err := NewR2Storage(r2, logger)
		if err != nil {
			return nil, err
		}
		return st, nil
	case ProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", provider)
	}
}
