package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/tieubaoca/pdfqa-be/types"
)

type AzureStorage struct {
	client    *azblob.Client
	container string
}

func NewAzureStorage(connectionString, container string) (*AzureStorage, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure blob client: %w", err)
	}
	return &AzureStorage{
		client:    client,
		container: container,
	}, nil
}

func (s *AzureStorage) SaveFile(ctx context.Context, path string, r io.Reader) (string, error) {
	if _, err := s.client.UploadStream(ctx, s.container, path, r, nil); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return path, nil
}

func (s *AzureStorage) GetFile(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := s.client.DownloadStream(ctx, s.container, path, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
		}
		return nil, err
	}
	return resp.Body, nil
}

func (s *AzureStorage) DeleteFile(ctx context.Context, path string) (bool, error) {
	if _, err := s.client.DeleteBlob(ctx, s.container, path, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *AzureStorage) ListFiles(ctx context.Context, directory string) ([]string, error) {
	pager := s.client.NewListBlobsFlatPager(s.container, &azblob.ListBlobsFlatOptions{
		Prefix: &directory,
	})
	var files []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list blobs: %w", err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				files = append(files, *item.Name)
			}
		}
	}
	return files, nil
}

func (s *AzureStorage) GetFileMetadata(ctx context.Context, path string) (*types.FileMetadata, error) {
	blobClient := s.client.ServiceClient().NewContainerClient(s.container).NewBlobClient(path)
	props, err := blobClient.GetProperties(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
		}
		return nil, err
	}
	meta := &types.FileMetadata{Path: path}
	if props.ContentLength != nil {
		meta.Size = *props.ContentLength
	}
	meta.CreatedAt = derefTime(props.CreationTime)
	meta.ModifiedAt = derefTime(props.LastModified)
	return meta, nil
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
