package eventstreamutils_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/eventstream/nop"
	eventstreamutils "github.com/papercomputeco/pilotlight/pkg/eventstream/utils"
	"github.com/papercomputeco/pilotlight/pkg/eventstream/worker"
)

var _ = Describe("NewPublisher", func() {
	It("returns the nop publisher by default", func() {
		pub, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{})
		Expect(err).NotTo(HaveOccurred())
		Expect(pub).To(BeAssignableToTypeOf(&nop.Publisher{}))
	})

	It("wraps kafka in a worker pool", func() {
		pub, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
			ProviderType: "kafka",
			Target:       "localhost:9092",
			Topic:        "pilotlight.turns",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(pub).To(BeAssignableToTypeOf(&worker.Pool{}))
		Expect(pub.Close()).To(Succeed())
	})

	It("passes through configuration errors", func() {
		_, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{ProviderType: "kafka"})
		Expect(err).To(HaveOccurred())
	})

	It("rejects unknown providers", func() {
		_, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{ProviderType: "carrier-pigeon"})
		Expect(err).To(MatchError(ContainSubstring("unsupported events provider")))
	})
})
