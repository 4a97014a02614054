package nats_test

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/eventstream"
	"github.com/papercomputeco/pilotlight/pkg/eventstream/nats"
)

var _ = Describe("Publisher", func() {
	var (
		conn *nats.RecordingConn
		p    *nats.Publisher
	)

	BeforeEach(func() {
		conn = &nats.RecordingConn{}
		p = nats.NewPublisherWithConn(conn, "pilotlight.turns")
	})

	It("requires a subject", func() {
		_, err := nats.NewPublisher(nats.Config{URL: "nats://127.0.0.1:4222"})
		Expect(err).To(MatchError(ContainSubstring("subject")))
	})

	It("publishes the event as JSON on the subject", func() {
		event := eventstream.NewTurnAppendedEvent("history", eventstream.EventSource{}, chat.NewTurn(chat.RoleAssistant, "ok [B]"))
		Expect(p.PublishTurn(context.Background(), event)).To(Succeed())

		Expect(conn.Subjects).To(Equal([]string{"pilotlight.turns"}))
		var decoded map[string]any
		Expect(json.Unmarshal(conn.Payloads[0], &decoded)).To(Succeed())
		Expect(decoded).To(HaveKeyWithValue("event_type", eventstream.EventTypeTurnAppended))
		Expect(conn.Flushed).To(BeZero())
	})

	It("flushes when the context carries a deadline", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		event := eventstream.NewTurnAppendedEvent("history", eventstream.EventSource{}, chat.NewTurn(chat.RoleUser, "hi"))
		Expect(p.PublishTurn(ctx, event)).To(Succeed())
		Expect(conn.Flushed).To(Equal(1))
	})

	It("rejects nil events and wraps publish errors", func() {
		Expect(p.PublishTurn(context.Background(), nil)).To(MatchError(eventstream.ErrNilTurnEvent))

		conn.Err = errors.New("connection closed")
		event := eventstream.NewTurnAppendedEvent("history", eventstream.EventSource{}, chat.NewTurn(chat.RoleUser, "hi"))
		Expect(p.PublishTurn(context.Background(), event)).To(MatchError(ContainSubstring("connection closed")))
	})

	It("drains on close", func() {
		Expect(p.Close()).To(Succeed())
		Expect(conn.Drained).To(BeTrue())
	})
})
