// Package container provides dependency injection for the rabbit application.
// It centralizes the creation and wiring of all application dependencies.
package container

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"fjacquet/rabbit/internal/categorizer"
	"fjacquet/rabbit/internal/classifier"
	"fjacquet/rabbit/internal/cleaner"
	"fjacquet/rabbit/internal/config"
	"fjacquet/rabbit/internal/destination"
	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/mailer"
	"fjacquet/rabbit/internal/models"
	"fjacquet/rabbit/internal/processor"
	"fjacquet/rabbit/internal/report"
	"fjacquet/rabbit/internal/store"
)

// Container holds all application dependencies. It is immutable after creation.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	store       *store.SQLStore
	completer   classifier.Completer
	categorizer *categorizer.Categorizer
	gcs         *destination.GCSSink
	storage     *destination.Router
	mailer      *mailer.SMTPMailer
	processor   *processor.Processor
	reports     *report.ReportGenerator
}

// NewContainer opens the store, imports the bootstrap profiles on first use and
// wires the engine. A classifier without an API key is disabled, not fatal.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	logger := config.NewLogger(cfg)

	sqlStore, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if cfg.Database.BootstrapDir != "" {
		if _, err := sqlStore.Bootstrap(ctx, cfg.Database.BootstrapDir); err != nil {
			_ = sqlStore.Close()
			return nil, fmt.Errorf("failed to bootstrap profiles: %w", err)
		}
	}

	completer, err := classifier.New(ctx, cfg.Classifier.Provider, cfg.Classifier.Model, cfg.Classifier.APIKey)
	switch {
	case errors.Is(err, classifier.ErrNoAPIKey):
		logger.Warn("Classifier API key not set, classifier fallback disabled",
			logging.Field{Key: logging.FieldProvider, Value: cfg.Classifier.Provider})
		completer = nil
	case err != nil:
		_ = sqlStore.Close()
		return nil, fmt.Errorf("failed to create classifier: %w", err)
	}

	fallback := categorizer.NewFallback(completer, categorizer.FallbackOptions{
		RequestsPerMinute: cfg.Classifier.RequestsPerMinute,
		Timeout:           time.Duration(cfg.Classifier.TimeoutSeconds) * time.Second,
		SingleUseCategory: cfg.Classifier.SingleUseCategory,
	}, logger)
	cat := categorizer.NewCategorizer(sqlStore, fallback, logger)

	gcs := destination.NewGCSSink()
	storage := destination.NewRouter(gcs)

	logger.Info("Container initialized successfully",
		logging.Field{Key: "classifier_enabled", Value: fallback.Enabled()},
		logging.Field{Key: "mail_configured", Value: cfg.SMTP.Complete()})

	return &Container{
		logger:      logger,
		config:      cfg,
		store:       sqlStore,
		completer:   completer,
		categorizer: cat,
		gcs:         gcs,
		storage:     storage,
		mailer:      mailer.NewSMTPMailer(cfg.SMTP, logger),
		processor:   processor.NewProcessor(cat, sqlStore, storage, logger),
		reports:     report.NewReportGenerator(logger),
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the profile store.
func (c *Container) GetStore() *store.SQLStore {
	return c.store
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetCompleter returns the classifier transport, or nil when disabled.
func (c *Container) GetCompleter() classifier.Completer {
	return c.completer
}

// GetStorage returns the local/GCS router.
func (c *Container) GetStorage() *destination.Router {
	return c.storage
}

// GetMailer returns the SMTP mailer.
func (c *Container) GetMailer() *mailer.SMTPMailer {
	return c.mailer
}

// GetProcessor returns the file-to-file processor.
func (c *Container) GetProcessor() *processor.Processor {
	return c.processor
}

// GetReportGenerator returns the spend summary renderer.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	return c.reports
}

// NewQueue creates a background job queue sized from the configuration.
func (c *Container) NewQueue(onDone func(processor.JobResult)) *processor.Queue {
	return processor.NewQueue(c.processor, c.mailer, c.storage, processor.QueueOptions{
		Concurrency: c.config.Worker.Concurrency,
		Size:        c.config.Worker.QueueSize,
		Subject:     c.config.SMTP.Subject,
		OnDone:      onDone,
	}, c.logger)
}

// StatementOptions returns the cleaner options from the configuration.
func (c *Container) StatementOptions() cleaner.Options {
	sign, ok := models.ParseSignConvention(c.config.Statement.SignConvention)
	if !ok {
		sign = models.SignAuto
	}
	return cleaner.Options{
		DescriptionColumn: c.config.Statement.DescriptionColumn,
		AmountColumn:      c.config.Statement.AmountColumn,
		SignConvention:    sign,
	}
}

// Close releases the store, the storage client and the classifier.
func (c *Container) Close() error {
	var errs []error
	if closer, ok := c.completer.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, c.gcs.Close(), c.store.Close())
	c.logger.Debug("Container closed")
	return errors.Join(errs...)
}
