package review

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"sace/internal/logging"
	"sace/internal/retry"
)

const (
	DefaultInterval  = 10 * time.Second
	breakerThreshold = 3
)

// Poller calls a refresh function on a fixed interval until stopped.
type Poller struct {
	interval time.Duration
	refresh  func(ctx context.Context) error
	breaker  *retry.CircuitBreaker
	logger   *logging.Logger
	onError  func(error)

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

type PollerOption func(*Poller)

func WithPollerLogger(logger *logging.Logger) PollerOption {
	return func(p *Poller) {
		p.logger = logger
	}
}

// WithErrorHandler is called with every failed refresh.
func WithErrorHandler(fn func(error)) PollerOption {
	return func(p *Poller) {
		p.onError = fn
	}
}

func WithBreaker(cb *retry.CircuitBreaker) PollerOption {
	return func(p *Poller) {
		p.breaker = cb
	}
}

func NewPoller(interval time.Duration, refresh func(ctx context.Context) error, opts ...PollerOption) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	p := &Poller{
		interval: interval,
		refresh:  refresh,
		breaker:  retry.NewCircuitBreaker(breakerThreshold, 3*interval),
		logger:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// AutoRefresh polls w.Refresh every interval.
func (w *Workflow) AutoRefresh(interval time.Duration, opts ...PollerOption) *Poller {
	opts = append([]PollerOption{WithPollerLogger(w.logger)}, opts...)
	return NewPoller(interval, w.Refresh, opts...)
}

// Start launches the polling goroutine. It is a no-op if the poller is
// already running or has been stopped.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil || p.stopped {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug(ctx, "poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	err := p.breaker.Execute(func() error {
		return p.refresh(ctx)
	})
	if err == nil || ctx.Err() != nil {
		return
	}
	if errors.Is(err, retry.ErrCircuitOpen) {
		p.logger.Debug(ctx, "backend unavailable, skipping refresh")
	} else {
		p.logger.Warn(ctx, "periodic refresh failed", zap.Error(err))
	}
	if p.onError != nil {
		p.onError(err)
	}
}

// Stop cancels polling and waits for the goroutine to exit. No refresh runs
// after Stop returns. Safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	p.stopped = true
	cancel, done := p.cancel, p.done
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
