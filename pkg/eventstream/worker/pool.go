// Package worker provides an asynchronous worker pool that publishes turn
// events using the provided eventstream.Publisher.
//
// The pool decouples event publishing from the chat loop so that a slow or
// unreachable broker never delays a conversation turn.
package worker

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/pilotlight/pkg/eventstream"
)

var (
	defaultNumWorkers     uint = 1
	defaultJobQueueSize   uint = 256
	defaultPublishTimeout      = 10 * time.Second
)

// ErrPoolClosed is returned when an event is submitted after Close.
var ErrPoolClosed = errors.New("worker pool closed")

// Config is the configuration options for the worker pool.
type Config struct {
	// Publisher receives every queued event.
	Publisher eventstream.Publisher

	// NumWorkers is the number of background workers in the pool. A single
	// worker (the default) keeps events in append order.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// PublishTimeout bounds each publish call (defaults to 10s).
	PublishTimeout time.Duration

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool publishes events asynchronously. It implements eventstream.Publisher,
// so it can wrap any publisher transparently.
type Pool struct {
	config *Config
	queue  chan *eventstream.TurnAppendedEvent
	wg     sync.WaitGroup
	logger *zap.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c == nil || c.Publisher == nil {
		return nil, errors.New("worker pool requires a publisher")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.PublishTimeout == 0 {
		c.PublishTimeout = defaultPublishTimeout
	}

	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	wp := &Pool{
		config: c,
		queue:  make(chan *eventstream.TurnAppendedEvent, c.QueueSize),
		logger: c.Logger,
	}

	wp.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go wp.worker(i)
	}

	return wp, nil
}

// PublishTurn queues the event without blocking. A full queue drops the event
// and is not reported as an error.
func (p *Pool) PublishTurn(_ context.Context, event *eventstream.TurnAppendedEvent) error {
	if event == nil {
		return eventstream.ErrNilTurnEvent
	}

	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return ErrPoolClosed
	}

	p.Enqueue(event)
	return nil
}

// Enqueue submits an event for publishing by the worker pool.
// Returns true if enqueued, false if the queue is full, resulting in the event being dropped
func (p *Pool) Enqueue(event *eventstream.TurnAppendedEvent) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.queue <- event:
		p.logger.Debug("event queued",
			zap.String("event_id", event.EventID),
			zap.String("conversation", event.Conversation),
		)
		return true
	default:
		p.logger.Error("event not queued, queue full, event dropped",
			zap.String("event_id", event.EventID),
			zap.String("conversation", event.Conversation),
		)
		return false
	}
}

// Close stops accepting events, waits for queued events to drain, then
// closes the wrapped publisher. It is safe to call more than once.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
	return p.config.Publisher.Close()
}

// worker is the inner worker thread that continuously pulls events off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("event worker started", zap.Uint("worker_id", id))

	for event := range p.queue {
		p.publish(event)
	}

	p.logger.Debug("event worker stopped", zap.Uint("worker_id", id))
}

func (p *Pool) publish(event *eventstream.TurnAppendedEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.PublishTimeout)
	defer cancel()

	if err := p.config.Publisher.PublishTurn(ctx, event); err != nil {
		p.logger.Warn("publishing turn event failed",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
		return
	}

	p.logger.Debug("turn event published",
		zap.String("event_id", event.EventID),
		zap.String("role", event.Turn.Role.String()),
	)
}
