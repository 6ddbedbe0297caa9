// Package container wires the application: configuration, logger, store,
// classifier, parsers and the ingestion service. Commands and the HTTP API
// obtain their dependencies from here.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fjacquet/statement-ledger/internal/archive"
	"fjacquet/statement-ledger/internal/categorizer"
	"fjacquet/statement-ledger/internal/config"
	"fjacquet/statement-ledger/internal/factory"
	"fjacquet/statement-ledger/internal/ingest"
	"fjacquet/statement-ledger/internal/logging"
	"fjacquet/statement-ledger/internal/pdfparser"
	"fjacquet/statement-ledger/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation: fields are private and only
// reachable through getters.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       store.Store
	aiClient    categorizer.AIClient
	categorizer *categorizer.Categorizer
	parsers     *factory.Factory
	ingest      *ingest.Service
	archive     *archive.Archive
}

// Option overrides a dependency NewContainer would otherwise build.
type Option func(*options)

type options struct {
	logger       logging.Logger
	aiClient     categorizer.AIClient
	pdfExtractor pdfparser.PDFExtractor
	pdfOptions   []pdfparser.Option
	sleep        categorizer.SleepFunc
}

// WithLogger replaces the configured logger.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithAIClient uses client instead of the configured provider, even when AI
// is disabled in the configuration.
func WithAIClient(client categorizer.AIClient) Option {
	return func(o *options) { o.aiClient = client }
}

// WithPDFExtractor replaces pdftotext, and optionally the page counter.
func WithPDFExtractor(extractor pdfparser.PDFExtractor, opts ...pdfparser.Option) Option {
	return func(o *options) {
		o.pdfExtractor = extractor
		o.pdfOptions = opts
	}
}

// WithRetrySleep replaces the sleep used between AI retries.
func WithRetrySleep(sleep categorizer.SleepFunc) Option {
	return func(o *options) { o.sleep = sleep }
}

// NewContainer creates and wires all application dependencies. The store is
// opened and seeded before it returns; call Close when done.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = config.NewLogger(cfg)
	}

	st, err := store.Open(ctx, store.Config{
		Driver: cfg.Store.Driver,
		Path:   cfg.Store.Path,
		DSN:    cfg.Store.DSN,
	}, logger)
	if err != nil {
		return nil, err
	}

	seed, err := loadSeed(cfg.Rules.SeedFile)
	if err == nil {
		_, err = store.ApplySeed(ctx, st, seed, logger)
	}
	if err != nil {
		return nil, errors.Join(err, st.Close())
	}

	aiClient := o.aiClient
	if aiClient == nil && cfg.AI.Enabled {
		aiClient, err = newAIClient(ctx, cfg.AI)
		if err != nil {
			return nil, errors.Join(err, st.Close())
		}
		aiClient = categorizer.NewRateLimitedClient(aiClient, cfg.AI.RequestsPerMinute)
	}
	if aiClient != nil {
		logger.Info("AI categorization enabled",
			logging.Field{Key: logging.FieldProvider, Value: cfg.AI.Provider})
	} else {
		logger.Info("AI categorization disabled")
	}

	retry := categorizer.RetryPolicy{
		MaxAttempts: cfg.AI.MaxAttempts,
		BaseDelay:   cfg.AI.BaseDelay(),
		Sleep:       o.sleep,
	}
	cat := categorizer.NewCategorizer(st, aiClient, categorizer.Options{
		Retry:            retry,
		Timeout:          cfg.AI.Timeout(),
		FallbackCategory: cfg.AI.FallbackCategory,
	}, logger)

	extractor := o.pdfExtractor
	if extractor == nil {
		extractor = pdfparser.NewPdftotextExtractor()
	}
	parsers := factory.New(logger, extractor, o.pdfOptions...)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "store_driver", Value: cfg.Store.Driver},
		logging.Field{Key: "strategies", Value: cat.Strategies()})

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       st,
		aiClient:    aiClient,
		categorizer: cat,
		parsers:     parsers,
		ingest:      ingest.NewService(parsers, st, cat, logger),
		archive:     archive.New(cfg.Data.Directory, logger),
	}, nil
}

func loadSeed(seedFile string) (store.Seed, error) {
	if seedFile == "" {
		return store.DefaultSeed(), nil
	}
	path, err := store.FindSeedFile(seedFile)
	if err != nil {
		return store.Seed{}, fmt.Errorf("seed file %s: %w", seedFile, err)
	}
	return store.LoadSeed(path)
}

func newAIClient(ctx context.Context, cfg config.AIConfig) (categorizer.AIClient, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		return categorizer.NewGeminiClient(ctx, cfg.APIKey, cfg.ModelName())
	case config.ProviderAnthropic:
		return categorizer.NewAnthropicClient(cfg.APIKey, cfg.ModelName())
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.Provider)
	}
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the ledger store.
func (c *Container) GetStore() store.Store {
	return c.store
}

// GetAIClient returns the AI client, or nil when AI is disabled.
func (c *Container) GetAIClient() categorizer.AIClient {
	return c.aiClient
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetParsers returns the parser factory.
func (c *Container) GetParsers() *factory.Factory {
	return c.parsers
}

// GetIngestService returns the ingestion and correction service.
func (c *Container) GetIngestService() *ingest.Service {
	return c.ingest
}

// GetArchive returns the document archive.
func (c *Container) GetArchive() *archive.Archive {
	return c.archive
}

// Close releases the store and the AI client.
func (c *Container) Close() error {
	var errs []error
	if closer, ok := c.aiClient.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, c.store.Close())
	c.logger.Debug("Container closed")
	return errors.Join(errs...)
}
