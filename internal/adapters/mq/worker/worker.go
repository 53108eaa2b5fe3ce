// Package worker sends queued invitation deliveries through a mail sender.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/okian/santa/internal/adapters/mq/queue"
	"github.com/okian/santa/internal/domain/model"
	"github.com/okian/santa/pkg/logger"
	"github.com/okian/santa/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount    = 1
	defaultSendTimeout    = 30 * time.Second
	workerShutdownTimeout = 5 * time.Second
)

// Delivery abstracts what workers read off the queue.
type Delivery = queue.Delivery

// Sender delivers one message and returns the message id.
type Sender interface {
	Send(ctx context.Context, from, to, subject, body string) (string, error)
}

// Recorder receives the outcome of every delivery a worker attempts.
type Recorder interface {
	Record(ctx context.Context, o model.Outcome)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, o model.Outcome)

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, o model.Outcome) { f(ctx, o) } //nolint:gocritic // hugeParam: outcome is a value record

// Queue defines how workers receive deliveries.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Delivery
}

// Worker processes deliveries.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker after the delivery in hand.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for sending deliveries.
type InMemoryWorker struct {
	queue    Queue
	sender   Sender
	recorder Recorder
	name     string
	timeout  time.Duration

	shutdown chan struct{}
	stopOnce sync.Once
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker.
func NewInMemoryWorker(q Queue, sender Sender, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		sender:   sender,
		recorder: recorder,
		name:     "worker",
		timeout:  defaultSendTimeout,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	deliveries := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			w.recorder.Record(ctx, w.process(ctx, d))
		}
	}
}

// Shutdown stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process sends one delivery under its own deadline.
func (w *InMemoryWorker) process(ctx context.Context, d Delivery) model.Outcome { //nolint:gocritic // hugeParam: Delivery is passed by value for channel semantics
	out := model.Outcome{Index: d.Index, Assignment: d.Assignment}

	sendCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	id, err := w.sender.Send(sendCtx, d.From, d.To, d.Subject, d.Body)
	metrics.RecordInvitationLatency(float64(time.Since(start).Microseconds()) / 1000)

	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "send_error")
		w.logger.Error(ctx, "delivery failed",
			logger.Int("index", d.Index),
			logger.String("to", d.To),
			logger.Error(err),
		)
		out.Status = model.StatusFailed
		out.Err = fmt.Errorf("send to %s: %w", d.To, err)
		return out
	}

	w.logger.Debug(ctx, "delivery sent",
		logger.Int("index", d.Index),
		logger.String("to", d.To),
		logger.String("message_id", id),
	)
	out.Status = model.StatusSent
	out.MessageID = id
	return out
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	logger logger.Logger
}

// NewPool creates a worker pool. Options apply to every worker.
func NewPool(workerCount int, q Queue, sender Sender, recorder Recorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(q, sender, recorder, workerOpts...)
	}

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	metrics.UpdateWorkerActiveCount(len(p.workers))
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has exited or ctx is done.
func (p *Pool) Wait(ctx context.Context) error {
	defer metrics.UpdateWorkerActiveCount(0)
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Shutdown closes the queue if still open and stops every worker after the
// delivery it holds.
func (p *Pool) Shutdown(ctx context.Context) error {
	type closer interface {
		Close() error
		IsClosed() bool
	}
	if c, ok := p.queue.(closer); ok && !c.IsClosed() {
		if err := c.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, workerShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)

	return nil
}
