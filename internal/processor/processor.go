// Package processor turns one statement file into a categorized CSV.
//
// A run reads the statement, checks the profile and the column schema, cleans
// and categorizes the rows, and only then writes the output. Fatal errors
// therefore never leave a partial output behind.
package processor

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fjacquet/rabbit/internal/categorizer"
	"fjacquet/rabbit/internal/cleaner"
	"fjacquet/rabbit/internal/common"
	"fjacquet/rabbit/internal/destination"
	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/models"
	"fjacquet/rabbit/internal/report"
)

// Engine categorizes cleaned rows for a profile.
type Engine interface {
	CheckProfile(ctx context.Context, profile string) error
	RunWithStats(ctx context.Context, rows []models.CleanedTransaction, profile string) ([]models.CategorizedTransaction, categorizer.RunStats, error)
}

// CategoryLister provides the budgets used by the spend summary.
type CategoryLister interface {
	ListCategories(ctx context.Context, profile string) ([]models.Category, error)
}

// Request describes one file-to-file run.
type Request struct {
	Input   string
	Output  string
	Profile string
	Options cleaner.Options
}

// Result is the outcome of a successful run.
type Result struct {
	// Destination identifies where the CSV was written.
	Destination  string
	CSV          []byte
	Transactions []models.CategorizedTransaction
	Stats        categorizer.RunStats
	Summary      report.Summary
}

// Processor runs requests. Runs for the same profile are serialized.
type Processor struct {
	engine     Engine
	categories CategoryLister
	storage    destination.Sink
	logger     logging.Logger

	locks sync.Map
}

// NewProcessor creates a processor. storage reads inputs and writes outputs.
func NewProcessor(engine Engine, categories CategoryLister, storage destination.Sink, logger logging.Logger) *Processor {
	return &Processor{
		engine:     engine,
		categories: categories,
		storage:    storage,
		logger:     logging.OrDefault(logger),
	}
}

// Process runs req and returns the output destination.
func (p *Processor) Process(ctx context.Context, req Request) (string, error) {
	res, err := p.Run(ctx, req)
	if err != nil {
		return "", err
	}
	return res.Destination, nil
}

// Run runs req and returns the categorized rows with their summary.
func (p *Processor) Run(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Input) == "" || strings.TrimSpace(req.Output) == "" {
		return nil, fmt.Errorf("input and output locations are required")
	}

	unlock := p.lockProfile(req.Profile)
	defer unlock()

	logger := p.logger.WithFields(
		logging.Field{Key: logging.FieldProfile, Value: req.Profile},
		logging.Field{Key: logging.FieldInputFile, Value: req.Input},
	)
	start := time.Now()

	stmt, err := p.readStatement(ctx, req.Input)
	if err != nil {
		return nil, err
	}
	if err := p.engine.CheckProfile(ctx, req.Profile); err != nil {
		return nil, err
	}
	if err := cleaner.ValidateSchema(stmt, req.Options); err != nil {
		return nil, err
	}

	rows, err := cleaner.Clean(stmt, req.Options)
	if err != nil {
		return nil, err
	}
	logger.Debug("Statement cleaned",
		logging.Field{Key: logging.FieldTotal, Value: len(stmt.Rows)},
		logging.Field{Key: logging.FieldCount, Value: len(rows)})

	categorized, stats, err := p.engine.RunWithStats(ctx, rows, req.Profile)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := common.WriteCategorizedCSV(&buf, categorized); err != nil {
		return nil, fmt.Errorf("failed to render output CSV: %w", err)
	}

	dest, err := p.storage.Put(ctx, req.Output, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to write output %s: %w", req.Output, err)
	}

	categories, err := p.categories.ListCategories(ctx, req.Profile)
	if err != nil {
		// the CSV is already written; the summary just loses its budgets
		logger.WithError(err).Warn("Failed to load budgets for summary")
		categories = nil
	}

	logger.Info("Statement processed",
		logging.Field{Key: logging.FieldOutputFile, Value: dest},
		logging.Field{Key: logging.FieldCount, Value: len(categorized)},
		logging.Field{Key: logging.FieldDuration, Value: time.Since(start).String()})

	return &Result{
		Destination:  dest,
		CSV:          buf.Bytes(),
		Transactions: categorized,
		Stats:        stats,
		Summary:      report.Summarize(req.Profile, categories, categorized),
	}, nil
}

func (p *Processor) readStatement(ctx context.Context, input string) (*cleaner.Statement, error) {
	data, err := p.storage.Get(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement %s: %w", input, err)
	}
	stmt, err := cleaner.ReadStatement(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse statement %s: %w", input, err)
	}
	stmt.Source = input
	return stmt, nil
}

// lockProfile takes the per-profile lock. Names are compared case-insensitively
// like the store does.
func (p *Processor) lockProfile(profile string) func() {
	key := strings.ToLower(strings.TrimSpace(profile))
	v, _ := p.locks.LoadOrStore(key, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
