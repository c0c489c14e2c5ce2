package processor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fjacquet/rabbit/internal/destination"
	"fjacquet/rabbit/internal/logging"
	"fjacquet/rabbit/internal/mailer"
	"fjacquet/rabbit/internal/report"

	"github.com/google/uuid"
)

var (
	// ErrQueueFull is returned by Submit when no slot is free.
	ErrQueueFull = errors.New("job queue is full")
	// ErrQueueClosed is returned by Submit after Close.
	ErrQueueClosed = errors.New("job queue is closed")
)

// DefaultEmailBody opens every report email.
const DefaultEmailBody = "Please find your categorized transactions report attached."

// Job is a queued run whose result is emailed to Recipient.
type Job struct {
	ID        string
	Request   Request
	Recipient string
	// Cleanup removes the input and output once the job is done, sent or not.
	Cleanup bool
}

// JobResult reports how a job ended.
type JobResult struct {
	Job         Job
	Destination string
	Err         error
}

// QueueOptions tunes a Queue.
type QueueOptions struct {
	Concurrency int
	Size        int
	Subject     string
	// OnDone is called from a worker after each job.
	OnDone func(JobResult)
}

// Queue runs jobs in the background on a fixed pool of workers.
type Queue struct {
	processor *Processor
	mailer    mailer.Mailer
	reports   *report.ReportGenerator
	storage   destination.Sink
	opts      QueueOptions
	logger    logging.Logger

	jobs    chan Job
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	started bool
}

// NewQueue creates a queue. Call Start before submitting jobs.
func NewQueue(p *Processor, m mailer.Mailer, storage destination.Sink, opts QueueOptions, logger logging.Logger) *Queue {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Size < 1 {
		opts.Size = 1
	}
	logger = logging.OrDefault(logger)
	return &Queue{
		processor: p,
		mailer:    m,
		reports:   report.NewReportGenerator(logger),
		storage:   storage,
		opts:      opts,
		logger:    logger,
		jobs:      make(chan Job, opts.Size),
	}
}

// Start launches the workers. They stop once Close has drained the queue.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true
	for i := 0; i < q.opts.Concurrency; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for job := range q.jobs {
				q.finish(q.run(ctx, job))
			}
		}()
	}
}

// Submit enqueues a job without blocking and returns its ID.
func (q *Queue) Submit(req Request, recipient string, cleanup bool) (string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return "", ErrQueueClosed
	}

	job := Job{ID: uuid.NewString(), Request: req, Recipient: recipient, Cleanup: cleanup}
	select {
	case q.jobs <- job:
		q.logger.Info("Job queued",
			logging.Field{Key: logging.FieldJobID, Value: job.ID},
			logging.Field{Key: logging.FieldProfile, Value: req.Profile})
		return job.ID, nil
	default:
		return "", ErrQueueFull
	}
}

// Close stops accepting jobs and waits for the queued ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) run(ctx context.Context, job Job) JobResult {
	logger := q.logger.WithFields(
		logging.Field{Key: logging.FieldJobID, Value: job.ID},
		logging.Field{Key: logging.FieldProfile, Value: job.Request.Profile},
	)
	if job.Cleanup {
		defer q.cleanup(ctx, job, logger)
	}

	res, err := q.processor.Run(ctx, job.Request)
	if err != nil {
		logger.WithError(err).Error("Job failed")
		return JobResult{Job: job, Err: err}
	}

	if job.Recipient != "" {
		if err := q.email(ctx, job, res); err != nil {
			logger.WithError(err).Error("Failed to email report")
			return JobResult{Job: job, Destination: res.Destination, Err: err}
		}
	}
	logger.Info("Job completed", logging.Field{Key: logging.FieldOutputFile, Value: res.Destination})
	return JobResult{Job: job, Destination: res.Destination}
}

func (q *Queue) email(ctx context.Context, job Job, res *Result) error {
	summary, err := q.reports.GenerateReport(res.Summary, report.FormatText)
	if err != nil {
		return err
	}
	return q.mailer.Send(ctx, mailer.Message{
		To:             job.Recipient,
		Subject:        q.opts.Subject,
		Body:           fmt.Sprintf("%s\n\n%s", DefaultEmailBody, summary),
		AttachmentName: mailer.DefaultAttachmentName,
		Attachment:     res.CSV,
	})
}

func (q *Queue) cleanup(ctx context.Context, job Job, logger logging.Logger) {
	for _, location := range []string{job.Request.Input, job.Request.Output} {
		if err := q.storage.Remove(ctx, location); err != nil {
			logger.WithError(err).Warn("Failed to remove job file",
				logging.Field{Key: logging.FieldInputFile, Value: location})
		}
	}
}

func (q *Queue) finish(res JobResult) {
	if q.opts.OnDone != nil {
		q.opts.OnDone(res)
	}
}
