package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/storage"
	"github.com/papercomputeco/pilotlight/pkg/storage/inmemory"
	"github.com/papercomputeco/pilotlight/pkg/storage/storagetest"
)

var _ = Describe("Driver", func() {
	storagetest.DriverBehaviors(func() storage.Driver {
		return inmemory.NewDriver()
	})

	It("does not share turns with the caller", func() {
		d := inmemory.NewDriver()
		turns := storagetest.SampleTurns()
		Expect(d.Save(context.Background(), "c", turns)).To(Succeed())

		turns[1].Attachments[0].Filename = "changed.txt"

		got, err := d.Load(context.Background(), "c")
		Expect(err).NotTo(HaveOccurred())
		Expect(got[1].Attachments[0].Filename).To(Equal("notes.txt"))
	})
})
