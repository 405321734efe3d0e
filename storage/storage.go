// Package storage saves uploaded PDFs on local disk or in a cloud bucket.
// Paths are slash separated keys relative to the storage root.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/types"
	"google.golang.org/api/option"
)

type Storage interface {
	// SaveFile writes r under path and returns the key it was stored as.
	SaveFile(ctx context.Context, path string, r io.Reader) (string, error)
	GetFile(ctx context.Context, path string) (io.ReadCloser, error)
	// DeleteFile reports whether a file was removed.
	DeleteFile(ctx context.Context, path string) (bool, error)
	// ListFiles returns the keys of every file below directory.
	ListFiles(ctx context.Context, directory string) ([]string, error)
	GetFileMetadata(ctx context.Context, path string) (*types.FileMetadata, error)
}

// New builds the backend selected by cfg.Type.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case config.StorageTypeLocal, "":
		return NewLocalStorage(cfg.LocalPath)
	case config.StorageTypeGCP:
		var opts []option.ClientOption
		if cfg.GCPCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCPCredentialsFile))
		}
		return NewGCPStorage(ctx, cfg.Bucket, opts...)
	case config.StorageTypeAWS:
		return NewAWSStorage(ctx, cfg.Bucket, cfg.AWSRegion)
	case config.StorageTypeAzure:
		return NewAzureStorage(cfg.AzureConnectionString, cfg.Bucket)
	}
	return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
}
