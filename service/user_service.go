package service

import (
	"context"
	"fmt"

	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/repository"
	"github.com/tieubaoca/pdfqa-be/storage"
	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

type UserService interface {
	ListFiles(ctx context.Context, uid string) ([]string, error)
	GetFileMetadata(ctx context.Context, uid, path string) (*types.FileMetadata, error)
	// ClearData removes every file, vector and history entry of uid. It
	// keeps going after a failure and returns all errors combined.
	ClearData(ctx context.Context, uid string) (*types.ClearDataResult, error)
}

type userService struct {
	storage  storage.Storage
	vectorDB database.VectorDatabase
	history  repository.HistoryRepo
}

func NewUserService(store storage.Storage, vectorDB database.VectorDatabase, history repository.HistoryRepo) UserService {
	if history == nil {
		history = repository.NewNoopHistoryRepo()
	}
	return &userService{
		storage:  store,
		vectorDB: vectorDB,
		history:  history,
	}
}

func (s *userService) ListFiles(ctx context.Context, uid string) ([]string, error) {
	userStore, err := storage.NewUserStorage(s.storage, uid)
	if err != nil {
		return nil, err
	}
	files, err := userStore.ListFiles(ctx, "")
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []string{}
	}
	return files, nil
}

func (s *userService) GetFileMetadata(ctx context.Context, uid, path string) (*types.FileMetadata, error) {
	userStore, err := storage.NewUserStorage(s.storage, uid)
	if err != nil {
		return nil, err
	}
	return userStore.GetFileMetadata(ctx, path)
}

func (s *userService) ClearData(ctx context.Context, uid string) (*types.ClearDataResult, error) {
	userStore, err := storage.NewUserStorage(s.storage, uid)
	if err != nil {
		return nil, err
	}
	result := &types.ClearDataResult{}
	var errs error

	files, err := userStore.ListFiles(ctx, "")
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to list files: %w", err))
	}
	for _, f := range files {
		deleted, err := userStore.DeleteFile(ctx, f)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to delete %s: %w", f, err))
			continue
		}
		if deleted {
			result.FilesDeleted++
		}
	}

	if err := s.vectorDB.DeleteUser(ctx, uid); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to delete vectors: %w", err))
	} else {
		result.VectorsCleared = true
	}

	if err := s.history.Clear(ctx, uid); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("failed to clear history: %w", err))
	} else {
		result.HistoryCleared = true
	}

	zap.L().Info("cleared user data",
		zap.String("uid", uid),
		zap.Int("files_deleted", result.FilesDeleted),
		zap.Bool("vectors_cleared", result.VectorsCleared),
		zap.Bool("history_cleared", result.HistoryCleared),
		zap.Error(errs),
	)
	return result, errs
}
