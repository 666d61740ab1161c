package storage

import (
	"context"
	"errors"
)

// ErrWriterClosed is returned for writes submitted after Close.
var ErrWriterClosed = errors.New("storage writer closed")

type writeJob struct {
	ctx   context.Context
	fn    func(ctx context.Context) error
	reply chan error
}

// Writer serializes all database writes through a single worker goroutine.
// SQLite has limited write concurrency, so funneling writes through one
// logical writer avoids SQLITE_BUSY under concurrent requests. Reads bypass
// the writer entirely. Semantics stay request/response: Do blocks until the
// write lands or the caller's context is cancelled.
type Writer struct {
	jobs chan writeJob
	quit chan struct{}
}

// NewWriter starts the write worker.
func NewWriter() *Writer {
	w := &Writer{
		jobs: make(chan writeJob),
		quit: make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *Writer) loop() {
	for {
		select {
		case job := <-w.jobs:
			// The job runs even if the submitting caller gave up waiting;
			// a write that was accepted is never half-abandoned.
			job.reply <- job.fn(job.ctx)
		case <-w.quit:
			return
		}
	}
}

// Do submits a write and waits for its result.
func (w *Writer) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	job := writeJob{
		ctx:   ctx,
		fn:    fn,
		reply: make(chan error, 1),
	}

	select {
	case w.jobs <- job:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.quit:
		return ErrWriterClosed
	}

	select {
	case err := <-job.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker. In-flight jobs complete; later submissions fail
// with ErrWriterClosed.
func (w *Writer) Close() {
	close(w.quit)
}
