package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/lectorncf/lector-ncf/internal/entity"
	"github.com/lectorncf/lector-ncf/internal/pipeline"
)

// Queue fans inbound messages out to a fixed pool of pipeline workers so the
// webhook handler can acknowledge the provider immediately.
type Queue struct {
	proc    *pipeline.Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan entity.InboundMessage
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*Queue)

func WithWorkers(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan entity.InboundMessage, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(proc *pipeline.Processor, logger *slog.Logger, opts ...Option) *Queue {
	q := &Queue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan entity.InboundMessage, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for msg := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					res := q.proc.ProcessImage(ctx, msg)
					cancel()

					if res.Error != "" {
						q.logger.Error("processing failed", "worker_id", workerID, "message_id", msg.MessageID, "error", res.Error)
					} else {
						q.logger.Info("processed message successfully", "worker_id", workerID, "message_id", msg.MessageID)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *Queue) Enqueue(_ context.Context, msg entity.InboundMessage) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "message_id", msg.MessageID)
		return nil
	}
	select {
	case q.ch <- msg:
		q.logger.Info("queued message for processing", "message_id", msg.MessageID, "from", msg.From)
	default:
		q.logger.Warn("queue full, applying backpressure", "message_id", msg.MessageID)
		q.ch <- msg
	}
	return nil
}

func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
