package jsonfile_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/chat"
	"github.com/papercomputeco/pilotlight/pkg/storage"
	"github.com/papercomputeco/pilotlight/pkg/storage/jsonfile"
	"github.com/papercomputeco/pilotlight/pkg/storage/storagetest"
)

var _ = Describe("Driver", func() {
	storagetest.DriverBehaviors(func() storage.Driver {
		d, err := jsonfile.NewDriver(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		return d
	})

	It("writes the same format chat.Log reads", func() {
		d, err := jsonfile.NewDriver(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())

		Expect(d.Save(context.Background(), "history", storagetest.SampleTurns())).To(Succeed())

		log := chat.NewLog()
		Expect(log.LoadFromFile(d.Path("history"))).To(Succeed())
		Expect(log.Len()).To(Equal(3))
	})

	It("ignores non-history files when listing", func() {
		dir := GinkgoT().TempDir()
		d, err := jsonfile.NewDriver(dir)
		Expect(err).NotTo(HaveOccurred())

		Expect(os.WriteFile(dir+"/notes.txt", []byte("x"), 0o600)).To(Succeed())
		Expect(os.Mkdir(dir+"/sub.json", 0o755)).To(Succeed())
		Expect(d.Save(context.Background(), "history", nil)).To(Succeed())

		Expect(d.List(context.Background())).To(Equal([]string{"history"}))
	})

	It("requires a directory", func() {
		_, err := jsonfile.NewDriver("")
		Expect(err).To(HaveOccurred())
	})
})
