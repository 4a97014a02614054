package worker

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/goleak"

	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/eventstream"
)

type recordingPublisher struct {
	mu      sync.Mutex
	events  []*eventstream.TurnAppendedEvent
	block   chan struct{}
	failing bool
	closed  int
}

func (r *recordingPublisher) PublishTurn(_ context.Context, event *eventstream.TurnAppendedEvent) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("broker unavailable")
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return nil
}

func (r *recordingPublisher) contents() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Turn.Content
	}
	return out
}

func newEvent(content string) *eventstream.TurnAppendedEvent {
	return eventstream.NewTurnAppendedEvent("history", eventstream.EventSource{}, chat.NewTurn(chat.RoleUser, content))
}

var _ = Describe("Worker Pool", func() {
	var (
		pub *recordingPublisher
		ctx context.Context
	)

	BeforeEach(func() {
		pub = &recordingPublisher{}
		ctx = context.Background()
	})

	It("requires a publisher", func() {
		_, err := NewPool(&Config{})
		Expect(err).To(HaveOccurred())
	})

	It("publishes queued events in order and drains on Close", func() {
		wp, err := NewPool(&Config{Publisher: pub})
		Expect(err).NotTo(HaveOccurred())

		for _, c := range []string{"one", "two", "three"} {
			Expect(wp.PublishTurn(ctx, newEvent(c))).To(Succeed())
		}
		Expect(wp.Close()).To(Succeed())

		Expect(pub.contents()).To(Equal([]string{"one", "two", "three"}))
		Expect(pub.closed).To(Equal(1))
	})

	It("drops events when the queue is full", func() {
		pub.block = make(chan struct{})
		wp, err := NewPool(&Config{Publisher: pub, QueueSize: 1})
		Expect(err).NotTo(HaveOccurred())

		// the worker takes the first event and blocks; the second fills the queue
		Expect(wp.Enqueue(newEvent("first"))).To(BeTrue())
		Eventually(func() int { return len(wp.queue) }).Should(BeZero())
		Expect(wp.Enqueue(newEvent("second"))).To(BeTrue())
		Expect(wp.Enqueue(newEvent("third"))).To(BeFalse())

		close(pub.block)
		Expect(wp.Close()).To(Succeed())
		Expect(pub.contents()).To(Equal([]string{"first", "second"}))
	})

	It("keeps going when publishing fails", func() {
		pub.failing = true
		wp, err := NewPool(&Config{Publisher: pub})
		Expect(err).NotTo(HaveOccurred())

		Expect(wp.PublishTurn(ctx, newEvent("lost"))).To(Succeed())
		Expect(wp.Close()).To(Succeed())
		Expect(pub.contents()).To(BeEmpty())
	})

	It("rejects nil events and events after Close", func() {
		wp, err := NewPool(&Config{Publisher: pub})
		Expect(err).NotTo(HaveOccurred())

		Expect(wp.PublishTurn(ctx, nil)).To(MatchError(eventstream.ErrNilTurnEvent))

		Expect(wp.Close()).To(Succeed())
		Expect(wp.Close()).To(Succeed())
		Expect(pub.closed).To(Equal(1))

		Expect(wp.PublishTurn(ctx, newEvent("late"))).To(MatchError(ErrPoolClosed))
		Expect(wp.Enqueue(newEvent("late"))).To(BeFalse())
	})

	It("stops its workers on Close", func() {
		ignore := goleak.IgnoreCurrent()

		wp, err := NewPool(&Config{Publisher: pub, NumWorkers: 4})
		Expect(err).NotTo(HaveOccurred())
		Expect(wp.PublishTurn(ctx, newEvent("one"))).To(Succeed())
		Expect(wp.Close()).To(Succeed())

		Expect(goleak.Find(ignore)).To(Succeed())
	})
})
