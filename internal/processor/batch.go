package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/rabbit/internal/cleaner"
	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/models"
)

// BatchResult is the outcome of one file of a directory run.
type BatchResult struct {
	Input  string
	Output string
	Err    error
}

// OutputName maps a statement file name to its categorized counterpart.
func OutputName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_categorized.csv"
}

// ProcessDirectory runs every .csv file of inputDir, in name order, writing the
// results to outputDir. A failing file is logged and skipped.
func (p *Processor) ProcessDirectory(ctx context.Context, inputDir, outputDir, profile string, opts cleaner.Options) ([]BatchResult, error) {
	entries, err := os.ReadDir(inputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory %s: %w", inputDir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(inputDir, e.Name()))
	}
	sort.Strings(files)

	if err := os.MkdirAll(outputDir, models.PermissionDirectory); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	results := make([]BatchResult, 0, len(files))
	failed := 0
	for _, file := range files {
		output := filepath.Join(outputDir, OutputName(file))
		dest, err := p.Process(ctx, Request{Input: file, Output: output, Profile: profile, Options: opts})
		if err != nil {
			failed++
			p.logger.WithError(err).Error("Failed to process statement",
				logging.Field{Key: logging.FieldInputFile, Value: file})
			results = append(results, BatchResult{Input: file, Output: output, Err: err})
			continue
		}
		results = append(results, BatchResult{Input: file, Output: dest})
	}

	p.logger.Info("Directory processed",
		logging.Field{Key: logging.FieldTotal, Value: len(files)},
		logging.Field{Key: logging.FieldCount, Value: len(files) - failed})
	return results, nil
}
