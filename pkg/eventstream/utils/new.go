// Package eventstreamutils builds the configured turn event publisher.
package eventstreamutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/pilotlight/pkg/eventstream"
	"github.com/papercomputeco/pilotlight/pkg/eventstream/kafka"
	"github.com/papercomputeco/pilotlight/pkg/eventstream/nats"
	"github.com/papercomputeco/pilotlight/pkg/eventstream/nop"
	"github.com/papercomputeco/pilotlight/pkg/eventstream/worker"
)

type NewPublisherOpts struct {
	ProviderType string
	Target       string
	Topic        string
	Logger       *zap.Logger
}

// NewPublisher returns the publisher for o.ProviderType. Broker-backed
// publishers are wrapped in a worker pool so publishing never blocks a turn.
func NewPublisher(o *NewPublisherOpts) (eventstream.Publisher, error) {
	var (
		pub eventstream.Publisher
		err error
	)

	switch o.ProviderType {
	case "", "nop", "none":
		return nop.NewPublisher(), nil
	case "kafka":
		pub, err = kafka.NewPublisher(kafka.Config{
			Brokers: o.Target,
			Topic:   o.Topic,
		})
	case "nats":
		pub, err = nats.NewPublisher(nats.Config{
			URL:     o.Target,
			Subject: o.Topic,
			Logger:  o.Logger,
		})
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", o.ProviderType)
	}
	if err != nil {
		return nil, err
	}

	return worker.NewPool(&worker.Config{
		Publisher: pub,
		Logger:    o.Logger,
	})
}
