package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"github.com/tieubaoca/pdfqa-be/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type GCPStorage struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
}

func NewGCPStorage(ctx context.Context, bucketName string, opts ...option.ClientOption) (*GCPStorage, error) {
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCPStorage{
		client: client,
		bucket: client.Bucket(bucketName),
	}, nil
}

func (s *GCPStorage) SaveFile(ctx context.Context, path string, r io.Reader) (string, error) {
	w := s.bucket.Object(path).NewWriter(ctx)
	w.ContentType = "application/pdf"
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return path, nil
}

func (s *GCPStorage) GetFile(ctx context.Context, path string) (io.ReadCloser, error) {
	r, err := s.bucket.Object(path).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}
	return r, err
}

func (s *GCPStorage) DeleteFile(ctx context.Context, path string) (bool, error) {
	err := s.bucket.Object(path).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *GCPStorage) ListFiles(ctx context.Context, directory string) ([]string, error) {
	it := s.bucket.Objects(ctx, &gcs.Query{Prefix: directory})
	var files []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		files = append(files, attrs.Name)
	}
	return files, nil
}

func (s *GCPStorage) GetFileMetadata(ctx context.Context, path string) (*types.FileMetadata, error) {
	attrs, err := s.bucket.Object(path).Attrs(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
	}
	if err != nil {
		return nil, err
	}
	return &types.FileMetadata{
		Path:       path,
		Size:       attrs.Size,
		CreatedAt:  attrs.Created,
		ModifiedAt: attrs.Updated,
	}, nil
}

func (s *GCPStorage) Close() error {
	return s.client.Close()
}
