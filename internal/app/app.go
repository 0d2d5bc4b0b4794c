package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docqa/internal/common"
	"github.com/ternarybob/docqa/internal/interfaces"
	"github.com/ternarybob/docqa/internal/services/chat"
	"github.com/ternarybob/docqa/internal/services/chunker"
	"github.com/ternarybob/docqa/internal/services/documents"
	"github.com/ternarybob/docqa/internal/services/embeddings"
	"github.com/ternarybob/docqa/internal/services/export"
	"github.com/ternarybob/docqa/internal/services/extract"
	"github.com/ternarybob/docqa/internal/services/llm"
	"github.com/ternarybob/docqa/internal/services/retrieval"
	"github.com/ternarybob/docqa/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Pipeline
	Extractor        *extract.Service
	Chunker          *chunker.Chunker
	EmbeddingService *embeddings.Service
	RetrievalIndex   interfaces.RetrievalIndex
	Generator        *llm.Generator

	// Owner-scoped services
	DocumentService interfaces.DocumentService
	ChatService     interfaces.ChatService
	ExportService   *export.Service

	providerErr error
}

// New validates the configuration and initializes the application with all
// dependencies. Missing provider credentials do not fail startup; commands
// that call a provider check RequireProviders first.
func New(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := app.initServices(ctx); err != nil {
		_ = app.StorageManager.Close()
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	logger.Debug().
		Str("generation_provider", string(cfg.Generation.Provider)).
		Bool("providers_ready", app.providerErr == nil).
		Msg("Application initialization complete")

	return app, nil
}

// initDatabase initializes the storage layer (Badger)
func (a *App) initDatabase() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

// initServices builds the pipeline and the owner-scoped services
func (a *App) initServices(ctx context.Context) error {
	var err error

	a.Chunker, err = chunker.New(
		chunker.WithChunkSize(a.Config.Pipeline.ChunkSize),
		chunker.WithOverlap(a.Config.Pipeline.ChunkOverlap),
	)
	if err != nil {
		return err
	}

	a.Extractor = extract.NewService(a.Logger)

	embeddingProvider, generationProvider := a.initProviders(ctx)

	a.EmbeddingService, err = embeddings.NewService(embeddingProvider, embeddings.OptionsFromConfig(a.Config), a.Logger)
	if err != nil {
		return err
	}

	a.RetrievalIndex = retrieval.NewLinearIndex(a.StorageManager.DocumentStorage(), a.Logger)
	a.Generator = llm.NewGeneratorFromConfig(generationProvider, a.Config, a.Logger)

	a.DocumentService = documents.NewService(
		a.StorageManager.DocumentStorage(),
		a.Extractor,
		a.Chunker,
		a.EmbeddingService,
		a.Config.Limits.MaxUploadBytes,
		a.Logger,
	)

	a.ChatService = chat.NewService(
		a.StorageManager.ChatStorage(),
		a.EmbeddingService,
		a.RetrievalIndex,
		a.Generator,
		chat.OptionsFromConfig(a.Config),
		a.Logger,
	)

	a.ExportService = export.NewService(a.Config.Export.FontSize, a.Logger)

	return nil
}

// initProviders creates the embedding and generation providers. A
// configuration error installs unavailable providers and is kept for
// RequireProviders; the listing and export commands work without keys.
func (a *App) initProviders(ctx context.Context) (interfaces.EmbeddingProvider, interfaces.GenerationProvider) {
	factory := llm.NewProviderFactory(a.Config, a.Logger)

	embeddingProvider, err := factory.NewEmbeddingProvider(ctx)
	if err != nil {
		a.recordProviderError(err)
		embeddingProvider = &llm.UnavailableProvider{Err: err}
	}

	generationProvider, err := factory.NewGenerationProvider(ctx)
	if err != nil {
		a.recordProviderError(err)
		generationProvider = &llm.UnavailableProvider{Err: err}
	}

	return embeddingProvider, generationProvider
}

func (a *App) recordProviderError(err error) {
	a.Logger.Debug().Err(err).Msg("Provider not configured")
	if a.providerErr == nil {
		a.providerErr = err
	}
}

// RequireProviders returns the provider configuration error, if any
func (a *App) RequireProviders() error {
	if a.providerErr == nil {
		return nil
	}
	var cfgErr *common.ConfigurationError
	if errors.As(a.providerErr, &cfgErr) {
		return cfgErr
	}
	return fmt.Errorf("%w: %v", common.ErrConfiguration, a.providerErr)
}

// Close releases the storage handles
func (a *App) Close() error {
	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
		a.Logger.Debug().Msg("Storage closed")
	}
	return nil
}
