package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/storage"
	"github.com/tieubaoca/pdfqa-be/types"
	"github.com/tieubaoca/pdfqa-be/utils"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

var pdfMagic = []byte("%PDF-")

// DocumentService owns the save, index and delete lifecycle of a user's
// PDFs. A document id is the file name the upload was stored under.
type DocumentService struct {
	storage  storage.Storage
	vectorDB database.VectorDatabase
	ai       AIService
	pdf      PDFProcessor
	config   types.DocumentServiceConfig
	now      func() time.Time
}

func NewDocumentService(
	store storage.Storage,
	vectorDB database.VectorDatabase,
	ai AIService,
	pdf PDFProcessor,
	config types.DocumentServiceConfig,
) *DocumentService {
	if config.EmbedBatchSize <= 0 {
		config.EmbedBatchSize = DefaultDocumentServiceConfig.EmbedBatchSize
	}
	if config.EmbedWorkers <= 0 {
		config.EmbedWorkers = 1
	}
	return &DocumentService{
		storage:  store,
		vectorDB: vectorDB,
		ai:       ai,
		pdf:      pdf,
		config:   config,
		now:      time.Now,
	}
}

// Upload validates, stores and indexes a PDF for uid. When progress is not
// nil it receives a processing status per embedded batch and a final
// completed status, and is closed before Upload returns.
func (s *DocumentService) Upload(
	ctx context.Context,
	uid, filename string,
	r io.Reader,
	size int64,
	progress chan<- types.ProcessingDocumentStatus,
) (*types.UploadResult, error) {
	if progress != nil {
		defer close(progress)
	}

	if !utils.IsPDF(filename) {
		return nil, fmt.Errorf("%w: only .pdf files are accepted", types.ErrInvalidFile)
	}
	maxSize := s.config.MaxUploadSize
	if maxSize > 0 && size > maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", types.ErrFileTooLarge, size, maxSize)
	}
	data, err := readLimited(r, maxSize)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return nil, fmt.Errorf("%w: not a PDF document", types.ErrInvalidFile)
	}

	userStore, err := storage.NewUserStorage(s.storage, uid)
	if err != nil {
		return nil, err
	}
	documentID, err := userStore.SaveFile(ctx, utils.TimestampedFileName(filename, s.now()), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	log := zap.L().With(zap.String("uid", uid), zap.String("document_id", documentID))
	log.Info("saved upload", zap.Int("bytes", len(data)))

	result, err := s.index(ctx, uid, documentID, filename, userStore, progress)
	if err != nil {
		// Cleanup must run even when the request was cancelled.
		cleanupCtx := context.WithoutCancel(ctx)
		cleanupErr := s.vectorDB.DeleteDocument(cleanupCtx, uid, documentID)
		if _, delErr := userStore.DeleteFile(cleanupCtx, documentID); delErr != nil {
			cleanupErr = multierr.Append(cleanupErr, delErr)
		}
		if cleanupErr != nil {
			log.Error("failed to clean up after indexing error", zap.Error(cleanupErr))
		}
		return nil, err
	}

	result.Stored = true
	if !s.config.KeepFiles {
		if _, err := userStore.DeleteFile(ctx, documentID); err != nil {
			log.Warn("failed to remove indexed file", zap.Error(err))
		} else {
			result.Stored = false
		}
	}
	log.Info("indexed document", zap.Int("pages", result.Pages), zap.Int("chunks", result.Chunks))
	sendProgress(ctx, progress, types.ProcessingDocumentStatus{
		Status:          StatusCompleted,
		Message:         "Done processing PDF",
		Progress:        1,
		TotalChunks:     result.Chunks,
		ProcessedChunks: result.Chunks,
	})
	return result, nil
}

// index reads the stored file back, extracts, embeds and upserts it.
func (s *DocumentService) index(
	ctx context.Context,
	uid, documentID, originalName string,
	userStore *storage.UserStorage,
	progress chan<- types.ProcessingDocumentStatus,
) (*types.UploadResult, error) {
	rc, err := userStore.GetFile(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}

	pages, err := s.pdf.ExtractPages(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	chunks := s.pdf.Chunk(pages, types.DocumentMetadata{
		Title:      originalName,
		Source:     documentID,
		TotalPages: pages[len(pages)-1].Number,
	})
	if len(chunks) == 0 {
		return nil, types.ErrEmptyDocument
	}

	total := len(chunks)
	batchSize := s.config.EmbedBatchSize
	createdAt := s.now().Unix()

	var mu sync.Mutex
	processed := 0
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.EmbedWorkers)
	for start := 0; start < total; start += batchSize {
		batch := chunks[start:min(start+batchSize, total)]
		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Content
			}
			vectors, err := s.ai.Embed(gctx, texts)
			if err != nil {
				return fmt.Errorf("failed to embed chunks: %w", err)
			}
			if len(vectors) != len(batch) {
				return fmt.Errorf("expected %d embeddings, got %d", len(batch), len(vectors))
			}
			records := make([]types.Chunk, len(batch))
			for i, c := range batch {
				records[i] = types.Chunk{
					ID:         database.ChunkID(uid, documentID, c.Index),
					UserID:     uid,
					DocumentID: documentID,
					Page:       c.Page,
					Index:      c.Index,
					Content:    c.Content,
					Embedding:  vectors[i],
					CreatedAt:  createdAt,
				}
			}
			if err := s.vectorDB.UpsertChunks(gctx, uid, records); err != nil {
				return fmt.Errorf("failed to store vectors: %w", err)
			}

			mu.Lock()
			defer mu.Unlock()
			processed += len(batch)
			sendProgress(gctx, progress, types.ProcessingDocumentStatus{
				Status:          StatusProcessing,
				Message:         "Processing document",
				Progress:        float64(processed) / float64(total),
				TotalChunks:     total,
				ProcessedChunks: processed,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &types.UploadResult{
		DocumentID:   documentID,
		OriginalName: originalName,
		Pages:        len(pages),
		Chunks:       total,
	}, nil
}

// Delete removes a document's vectors and its stored file. A missing file
// is only an error when uploads are meant to be kept.
func (s *DocumentService) Delete(ctx context.Context, uid, documentID string) error {
	userStore, err := storage.NewUserStorage(s.storage, uid)
	if err != nil {
		return err
	}
	if err := s.vectorDB.DeleteDocument(ctx, uid, documentID); err != nil {
		return fmt.Errorf("failed to delete vectors: %w", err)
	}
	deleted, err := userStore.DeleteFile(ctx, documentID)
	if err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	if !deleted && s.config.KeepFiles {
		return fmt.Errorf("%w: %s", types.ErrNotFound, documentID)
	}
	zap.L().Info("deleted document", zap.String("uid", uid), zap.String("document_id", documentID), zap.Bool("file_deleted", deleted))
	return nil
}

// Open returns the stored PDF of a document.
func (s *DocumentService) Open(ctx context.Context, uid, documentID string) (io.ReadCloser, error) {
	userStore, err := storage.NewUserStorage(s.storage, uid)
	if err != nil {
		return nil, err
	}
	return userStore.GetFile(ctx, documentID)
}

func readLimited(r io.Reader, maxSize int64) ([]byte, error) {
	if maxSize <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%w: exceeds limit of %d bytes", types.ErrFileTooLarge, maxSize)
	}
	return data, nil
}

func sendProgress(ctx context.Context, progress chan<- types.ProcessingDocumentStatus, status types.ProcessingDocumentStatus) {
	if progress == nil {
		return
	}
	select {
	case progress <- status:
	case <-ctx.Done():
	}
}
