package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/tieubaoca/pdfqa-be/types"
)

type AWSStorage struct {
	client *s3.Client
	bucket string
}

// NewAWSStorage uses the default credential chain. An empty region falls
// back to the shared config / AWS_REGION.
func NewAWSStorage(ctx context.Context, bucket, region string) (*AWSStorage, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &AWSStorage{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
	}, nil
}

func (s *AWSStorage) SaveFile(ctx context.Context, path string, r io.Reader) (string, error) {
	// Request signing needs a seekable body.
	body, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("failed to read upload: %w", err)
		}
		body = bytes.NewReader(data)
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        body,
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return path, nil
}

func (s *AWSStorage) GetFile(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
		}
		return nil, err
	}
	return out.Body, nil
}

// DeleteFile checks the key with HeadObject first since DeleteObject
// succeeds for absent keys.
func (s *AWSStorage) DeleteFile(ctx context.Context, path string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *AWSStorage) ListFiles(ctx context.Context, directory string) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(directory),
	})
	var files []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", err)
		}
		for _, obj := range page.Contents {
			files = append(files, aws.ToString(obj.Key))
		}
	}
	return files, nil
}

func (s *AWSStorage) GetFileMetadata(ctx context.Context, path string) (*types.FileMetadata, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: %s", types.ErrNotFound, path)
		}
		return nil, err
	}
	modified := aws.ToTime(out.LastModified)
	return &types.FileMetadata{
		Path:       path,
		Size:       aws.ToInt64(out.ContentLength),
		CreatedAt:  modified,
		ModifiedAt: modified,
	}, nil
}
