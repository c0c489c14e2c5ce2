package categorizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fjacquet/rabbit/internal/classifier"
	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/models"
	"fjacquet/rabbit/internal/processerror"

	"golang.org/x/time/rate"
)

const systemInstruction = "You are a helpful assistant that categorizes credit card transactions. " +
	"Answer with a single category name."

// FallbackOptions tunes the classifier fallback.
type FallbackOptions struct {
	// RequestsPerMinute caps calls reaching the transport. Zero disables the throttle.
	RequestsPerMinute int
	// Timeout bounds one transport call. Zero means no timeout.
	Timeout time.Duration
	// SingleUseCategory is the category the model is told to use at most once, such as rent.
	SingleUseCategory string
}

// DefaultFallbackOptions returns one call per second and a 30 second timeout.
func DefaultFallbackOptions() FallbackOptions {
	return FallbackOptions{
		RequestsPerMinute: 60,
		Timeout:           30 * time.Second,
		SingleUseCategory: "Rent",
	}
}

// Fallback asks an external model to pick a category. It never fails:
// anything going wrong degrades to Uncategorized.
type Fallback struct {
	completer classifier.Completer
	limiter   *rate.Limiter
	opts      FallbackOptions
	logger    logging.Logger
}

// Verdict is the detailed outcome of one Classify call.
type Verdict struct {
	Category string
	// Called reports whether the transport was reached.
	Called bool
	Err    error
}

// NewFallback creates a fallback over completer, which may be nil to disable it.
func NewFallback(completer classifier.Completer, opts FallbackOptions, logger logging.Logger) *Fallback {
	f := &Fallback{
		completer: completer,
		opts:      opts,
		logger:    logging.OrDefault(logger),
	}
	if opts.RequestsPerMinute > 0 {
		f.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}
	return f
}

// Enabled reports whether a transport is configured.
func (f *Fallback) Enabled() bool {
	return f != nil && f.completer != nil
}

// Classify returns one of categories, or Uncategorized.
func (f *Fallback) Classify(ctx context.Context, description string, categories []string) string {
	return f.Evaluate(ctx, description, categories).Category
}

// Evaluate classifies description and reports whether the transport was called.
// Errors are logged as ClassifierError and returned in the verdict, never raised.
func (f *Fallback) Evaluate(ctx context.Context, description string, categories []string) Verdict {
	if !f.Enabled() || len(categories) == 0 {
		return Verdict{Category: models.CategoryUncategorized}
	}

	response, called, err := f.call(ctx, description, categories)
	if err != nil {
		classErr := &processerror.ClassifierError{
			Description: description,
			Provider:    f.completer.Name(),
			Err:         err,
		}
		f.logger.WithError(classErr).Warn("Classifier fallback failed",
			logging.Field{Key: logging.FieldProvider, Value: f.completer.Name()},
			logging.Field{Key: logging.FieldDescription, Value: description})
		return Verdict{Category: models.CategoryUncategorized, Called: called, Err: classErr}
	}

	category := ParseResponse(response, categories)
	f.logger.Debug("Classifier answered",
		logging.Field{Key: logging.FieldProvider, Value: f.completer.Name()},
		logging.Field{Key: logging.FieldDescription, Value: description},
		logging.Field{Key: logging.FieldCategory, Value: category})
	return Verdict{Category: category, Called: true}
}

// call waits for the throttle, then reaches the transport.
func (f *Fallback) call(ctx context.Context, description string, categories []string) (string, bool, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return "", false, fmt.Errorf("throttle: %w", err)
		}
	}
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	response, err := f.completer.Complete(ctx, systemInstruction, BuildPrompt(description, categories, f.opts.SingleUseCategory))
	if err != nil {
		return "", true, err
	}
	if strings.TrimSpace(response) == "" {
		return "", true, classifier.ErrEmptyResponse
	}
	return response, true, nil
}

// BuildPrompt asks for exactly one of categories, with Uncategorized as the way out.
// The single-use hint is only given when that category is offered.
func BuildPrompt(description string, categories []string, singleUse string) string {
	var sb strings.Builder
	sb.WriteString("Which category from this list best fits the transaction?\n")
	if singleUse != "" {
		for _, c := range categories {
			if strings.EqualFold(c, singleUse) {
				fmt.Fprintf(&sb, "There should only be one transaction categorized into the '%s' category.\n", c)
				break
			}
		}
	}
	fmt.Fprintf(&sb, "If the transaction does not fit any of the categories, answer '%s'.\n", models.CategoryUncategorized)
	fmt.Fprintf(&sb, "Transaction: '%s'\n", description)

	quoted := make([]string, len(categories))
	for i, c := range categories {
		quoted[i] = "'" + c + "'"
	}
	fmt.Fprintf(&sb, "Categories: [%s]\n", strings.Join(quoted, ", "))
	sb.WriteString("Answer with the category name only.")
	return sb.String()
}

// ParseResponse takes the first line of the model answer and returns the first
// category, in list order, whose name it contains ignoring case.
func ParseResponse(response string, categories []string) string {
	line := strings.TrimSpace(response)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.ToLower(line)

	for _, c := range categories {
		if c == "" {
			continue
		}
		if strings.Contains(line, strings.ToLower(c)) {
			return c
		}
	}
	return models.CategoryUncategorized
}
