// Package nats publishes turn events to a NATS subject.
package nats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/papercomputeco/pilotlight/pkg/eventstream"
)

// Config configures the NATS publisher.
type Config struct {
	// URL is the NATS server URL, e.g. nats://localhost:4222.
	URL string

	// Subject receives every event.
	Subject string

	// Token is an optional auth token.
	Token string

	Logger *zap.Logger
}

type conn interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

// Publisher publishes events as JSON payloads.
type Publisher struct {
	conn    conn
	subject string
}

// NewPublisher connects to NATS. The connection retries in the background, so
// a server that is not up yet does not fail construction.
func NewPublisher(c Config) (*Publisher, error) {
	if c.Subject == "" {
		return nil, errors.New("nats publisher requires a subject")
	}
	if c.URL == "" {
		c.URL = nats.DefaultURL
	}

	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := []nats.Option{
		nats.Name("pilotlight"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if c.Token != "" {
		opts = append(opts, nats.Token(c.Token))
	}

	nc, err := nats.Connect(c.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return newPublisher(nc, c.Subject), nil
}

func newPublisher(c conn, subject string) *Publisher {
	return &Publisher{conn: c, subject: subject}
}

// PublishTurn publishes the event and waits for the server to acknowledge the
// flush, bounded by ctx.
func (p *Publisher) PublishTurn(ctx context.Context, event *eventstream.TurnAppendedEvent) error {
	payload, err := eventstream.Encode(event)
	if err != nil {
		return err
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		return fmt.Errorf("nats publish %s: %w", p.subject, err)
	}

	if _, ok := ctx.Deadline(); ok {
		if err := p.conn.FlushWithContext(ctx); err != nil {
			return fmt.Errorf("nats flush: %w", err)
		}
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() error {
	return p.conn.Drain()
}
