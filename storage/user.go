package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/tieubaoca/pdfqa-be/types"
)

// UserStorage confines a Storage to the users/{uid}/ prefix. Keys passed in
// and returned are relative to that prefix.
type UserStorage struct {
	store Storage
	root  string
}

func NewUserStorage(store Storage, uid string) (*UserStorage, error) {
	if uid == "" || strings.ContainsAny(uid, `/\`) || strings.Contains(uid, "..") {
		return nil, fmt.Errorf("%w: user id %q", types.ErrInvalidPath, uid)
	}
	return &UserStorage{
		store: store,
		root:  "users/" + uid + "/",
	}, nil
}

func (u *UserStorage) key(name string) (string, error) {
	if name == "" || strings.Contains(name, "..") || strings.HasPrefix(name, "/") ||
		strings.HasSuffix(name, "/") || strings.Contains(name, `\`) {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidPath, name)
	}
	cleaned := path.Clean(name)
	if cleaned == "." {
		return "", fmt.Errorf("%w: %s", types.ErrInvalidPath, name)
	}
	return u.root + cleaned, nil
}

func (u *UserStorage) SaveFile(ctx context.Context, name string, r io.Reader) (string, error) {
	key, err := u.key(name)
	if err != nil {
		return "", err
	}
	if _, err := u.store.SaveFile(ctx, key, r); err != nil {
		return "", err
	}
	return strings.TrimPrefix(key, u.root), nil
}

func (u *UserStorage) GetFile(ctx context.Context, name string) (io.ReadCloser, error) {
	key, err := u.key(name)
	if err != nil {
		return nil, err
	}
	return u.store.GetFile(ctx, key)
}

func (u *UserStorage) DeleteFile(ctx context.Context, name string) (bool, error) {
	key, err := u.key(name)
	if err != nil {
		return false, err
	}
	return u.store.DeleteFile(ctx, key)
}

// ListFiles lists every file the user owns. The directory argument is
// relative to the user root, "" lists everything.
func (u *UserStorage) ListFiles(ctx context.Context, directory string) ([]string, error) {
	prefix := u.root
	if directory != "" {
		key, err := u.key(strings.TrimSuffix(directory, "/"))
		if err != nil {
			return nil, err
		}
		prefix = strings.TrimSuffix(key, "/") + "/"
	}
	keys, err := u.store.ListFiles(ctx, prefix)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(keys))
	for _, k := range keys {
		// Bucket listings are plain prefix matches.
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		files = append(files, strings.TrimPrefix(k, u.root))
	}
	return files, nil
}

func (u *UserStorage) GetFileMetadata(ctx context.Context, name string) (*types.FileMetadata, error) {
	key, err := u.key(name)
	if err != nil {
		return nil, err
	}
	meta, err := u.store.GetFileMetadata(ctx, key)
	if err != nil {
		return nil, err
	}
	meta.Path = strings.TrimPrefix(key, u.root)
	return meta, nil
}
