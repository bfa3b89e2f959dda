// Package searchlog records executed searches without delaying them.
package searchlog

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mdsearch/internal/domain/search/logentry"
	"github.com/kailas-cloud/mdsearch/internal/metrics"
)

// Config controls delivery of log entries.
type Config struct {
	Enabled bool
	// Async queues entries for background workers instead of writing inline.
	Async     bool
	QueueSize int
	Workers   int
	// Retries is the number of extra attempts after a failed write.
	Retries int
	Backoff time.Duration
}

// Logger hands search log entries to a sink. In async mode Submit never
// blocks: entries that do not fit the queue are dropped.
type Logger struct {
	sink   Sink
	cfg    Config
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error

	ctx    context.Context
	queue  chan logentry.Entry
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// Option configures a Logger.
type Option func(*Logger)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(lg *Logger) { lg.logger = l }
}

// New creates a search logger. Call Start before submitting in async mode.
func New(sink Sink, cfg Config, opts ...Option) *Logger {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	l := &Logger{
		sink:   sink,
		cfg:    cfg,
		logger: zap.NewNop(),
		sleep:  sleepCtx,
		ctx:    context.Background(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if cfg.Enabled && cfg.Async {
		l.queue = make(chan logentry.Entry, cfg.QueueSize)
	}
	return l
}

// Start launches the delivery workers. Writes keep the values of ctx but
// are not canceled with it; Close drains the queue.
func (l *Logger) Start(ctx context.Context) {
	l.ctx = context.WithoutCancel(ctx)
	if l.queue == nil {
		return
	}
	for range l.cfg.Workers {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			for e := range l.queue {
				l.deliver(e)
			}
		}()
	}
}

// Submit records e. It is a no-op when logging is disabled.
func (l *Logger) Submit(e logentry.Entry) {
	if !l.cfg.Enabled {
		return
	}
	if l.queue == nil {
		l.deliver(e)
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		metrics.SearchLogEventsTotal.WithLabelValues("dropped").Inc()
		return
	}
	select {
	case l.queue <- e:
	default:
		metrics.SearchLogEventsTotal.WithLabelValues("dropped").Inc()
		l.logger.Debug("search log queue full, entry dropped", zap.String("id", e.ID))
	}
}

// Close stops accepting entries and waits for queued ones to be delivered.
func (l *Logger) Close() {
	if l.queue == nil {
		return
	}
	l.mu.Lock()
	if !l.closed {
		l.closed = true
		close(l.queue)
	}
	l.mu.Unlock()
	l.wg.Wait()
}

// deliver writes e, retrying with linear backoff. Entries still failing
// after the last attempt are dropped.
func (l *Logger) deliver(e logentry.Entry) {
	var err error
	for attempt := 0; attempt <= l.cfg.Retries; attempt++ {
		if attempt > 0 {
			metrics.SearchLogEventsTotal.WithLabelValues("retried").Inc()
			if err := l.sleep(l.ctx, time.Duration(attempt)*l.cfg.Backoff); err != nil {
				break
			}
		}
		if err = l.sink.Write(l.ctx, e); err == nil {
			metrics.SearchLogEventsTotal.WithLabelValues("written").Inc()
			return
		}
	}
	metrics.SearchLogEventsTotal.WithLabelValues("failed").Inc()
	l.logger.Warn("search log entry dropped", zap.String("id", e.ID), zap.Error(err))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
