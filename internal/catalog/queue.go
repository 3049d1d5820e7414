// Proscenium - Media Discovery Catalog Cache Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/proscenium

package catalog

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/ratelimit"

	"github.com/tomtom215/proscenium/internal/metrics"
)

// ErrQueueClosed is returned for tasks submitted after the queue's context
// was canceled.
var ErrQueueClosed = errors.New("catalog request queue closed")

// RequestQueue serializes upstream catalog API calls through a single
// in-flight worker paced at a fixed rate. The content API is informally
// rate-limited, so every caller needing catalog access shares one queue,
// passed in as a constructor dependency rather than a package-level global.
type RequestQueue struct {
	tasks   chan queueTask
	limiter ratelimit.Limiter
	done    chan struct{}
}

type queueTask struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

// NewRequestQueue starts the worker goroutine. requestsPerSecond sets the
// fixed inter-task delay (10/s ⇒ one task every 100ms); queueSize bounds the
// number of waiting tasks. The worker exits when ctx is canceled.
func NewRequestQueue(ctx context.Context, requestsPerSecond, queueSize int) *RequestQueue {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 10
	}
	if queueSize <= 0 {
		queueSize = 64
	}

	q := &RequestQueue{
		tasks:   make(chan queueTask, queueSize),
		limiter: ratelimit.New(requestsPerSecond),
		done:    make(chan struct{}),
	}
	go q.worker(ctx)
	return q
}

// worker runs tasks strictly one at a time, taking a rate token before each.
func (q *RequestQueue) worker(ctx context.Context) {
	defer close(q.done)

	for {
		select {
		case <-ctx.Done():
			// Drain waiters so nothing blocks forever on a dead queue.
			for {
				select {
				case task := <-q.tasks:
					task.result <- ErrQueueClosed
				default:
					return
				}
			}
		case task := <-q.tasks:
			q.limiter.Take()
			metrics.CatalogQueueDepth.Set(float64(len(q.tasks)))

			// The submitter may have given up while the task was queued.
			if err := task.ctx.Err(); err != nil {
				task.result <- err
				continue
			}
			task.result <- task.fn()
		}
	}
}

// Do submits fn and blocks until the worker has run it or ctx is canceled.
func (q *RequestQueue) Do(ctx context.Context, fn func() error) error {
	task := queueTask{
		ctx:    ctx,
		fn:     fn,
		result: make(chan error, 1),
	}

	select {
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return fmt.Errorf("enqueue catalog request: %w", ctx.Err())
	case q.tasks <- task:
	}

	select {
	case err := <-task.result:
		return err
	case <-q.done:
		// The enqueue can race the worker's exit: a buffered send may win
		// the select above even though the drain already finished, parking
		// the task in a dead queue. Prefer a completed result if the worker
		// got to the task before exiting.
		select {
		case err := <-task.result:
			return err
		default:
			return ErrQueueClosed
		}
	case <-ctx.Done():
		// Worker will still run or discard the task; the caller stops waiting.
		return ctx.Err()
	}
}
