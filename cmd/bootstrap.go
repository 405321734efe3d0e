/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/tieubaoca/pdfqa-be/auth"
	"github.com/tieubaoca/pdfqa-be/config"
	"github.com/tieubaoca/pdfqa-be/database"
	"github.com/tieubaoca/pdfqa-be/logger"
	"github.com/tieubaoca/pdfqa-be/repository"
	"github.com/tieubaoca/pdfqa-be/service"
	"github.com/tieubaoca/pdfqa-be/storage"
	"github.com/tieubaoca/pdfqa-be/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// app holds every long lived dependency shared by the commands.
type app struct {
	cfg       *config.Config
	storage   storage.Storage
	vectorDB  database.VectorDatabase
	history   repository.HistoryRepo
	ai        service.AIService
	documents *service.DocumentService
	qa        *service.QAService
	users     service.UserService

	closers []func() error
}

// loadConfig reads the config and installs the global logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if _, err := logger.New(cfg.Debug); err != nil {
		return nil, err
	}
	return cfg, nil
}

// withApp loads the config, builds the dependencies, runs fn and releases
// everything afterwards, also when fn fails.
func withApp(ctx context.Context, fn func(*app) error) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer zap.L().Sync()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			zap.L().Warn("failed to release dependencies", zap.Error(closeErr))
		}
	}()
	return fn(a)
}

func newApp(ctx context.Context, cfg *config.Config) (a *app, err error) {
	a = &app{cfg: cfg}
	defer func() {
		if err != nil {
			a.Close()
			a = nil
		}
	}()

	if a.storage, err = storage.New(ctx, cfg.Storage); err != nil {
		return a, fmt.Errorf("failed to init storage: %w", err)
	}
	a.addCloser(a.storage)

	if a.vectorDB, err = database.NewVectorDatabase(ctx, cfg.VectorStore); err != nil {
		return a, fmt.Errorf("failed to init vector store: %w", err)
	}
	a.addCloser(a.vectorDB)

	if a.history, err = a.newHistoryRepo(ctx); err != nil {
		return a, fmt.Errorf("failed to init history: %w", err)
	}

	if a.ai, err = service.NewAIService(cfg); err != nil {
		return a, fmt.Errorf("failed to init model provider: %w", err)
	}
	a.addCloser(a.ai)

	docCfg := types.DocumentServiceConfig{
		MaxChunkSize:   cfg.Chunking.MaxChunkSize,
		OverlapSize:    cfg.Chunking.OverlapSize,
		MaxUploadSize:  cfg.Upload.MaxSize,
		EmbedBatchSize: cfg.Chunking.EmbedBatchSize,
		EmbedWorkers:   cfg.Chunking.EmbedConcurrency,
		KeepFiles:      cfg.Upload.KeepFiles,
	}
	a.documents = service.NewDocumentService(a.storage, a.vectorDB, a.ai, service.NewPDFService(docCfg), docCfg)
	a.qa = service.NewQAService(a.ai, a.vectorDB, a.history, cfg.Retrieval.TopK, cfg.History.Limit)
	a.users = service.NewUserService(a.storage, a.vectorDB, a.history)

	models := cfg.Models.Active(cfg.ModelProvider)
	zap.L().Info("initialised dependencies",
		zap.String("storage", string(cfg.Storage.Type)),
		zap.String("vector_store", string(cfg.VectorStore.Type)),
		zap.String("history", string(cfg.History.Type)),
		zap.String("model_provider", string(cfg.ModelProvider)),
		zap.String("llm_model", models.LLM),
		zap.String("embeddings_model", models.Embeddings),
	)
	return a, nil
}

func (a *app) newHistoryRepo(ctx context.Context) (repository.HistoryRepo, error) {
	cfg := a.cfg.History
	switch cfg.Type {
	case config.HistorySQLite:
		db, err := database.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		return repository.NewSQLiteHistoryRepo(db)
	case config.HistoryMongo:
		client, err := database.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			return client.Disconnect(context.Background())
		})
		return repository.NewMongoHistoryRepo(client.Database(cfg.MongoDatabase)), nil
	case config.HistoryFirebase:
		fbApp, err := auth.NewFirebaseApp(ctx, a.cfg.Auth)
		if err != nil {
			return nil, err
		}
		client, err := fbApp.Database(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create firebase database client: %w", err)
		}
		return repository.NewFirebaseHistoryRepo(client, cfg.MessagesPath), nil
	}
	return repository.NewNoopHistoryRepo(), nil
}

func (a *app) addCloser(v interface{}) {
	if c, ok := v.(io.Closer); ok {
		a.closers = append(a.closers, c.Close)
	}
}

// Close releases dependencies in reverse order of creation.
func (a *app) Close() error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, a.closers[i]())
	}
	a.closers = nil
	return errs
}
