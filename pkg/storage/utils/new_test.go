package storageutils_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/pilotlight/pkg/storage/inmemory"
	"github.com/papercomputeco/pilotlight/pkg/storage/jsonfile"
	"github.com/papercomputeco/pilotlight/pkg/storage/sqlite"
	storageutils "github.com/papercomputeco/pilotlight/pkg/storage/utils"
)

var _ = Describe("NewDriver", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("defaults to the jsonfile driver", func() {
		d, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{Path: GinkgoT().TempDir()})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&jsonfile.Driver{}))
	})

	It("opens sqlite at the configured path", func() {
		d, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{
			DriverType: "sqlite",
			Path:       filepath.Join(GinkgoT().TempDir(), "history.db"),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&sqlite.Driver{}))
		Expect(d.Close()).To(Succeed())
	})

	It("opens the in-memory driver", func() {
		d, err := storageutils.NewDriver(ctx, &storageutils.NewDriverOpts{DriverType: "inmemory"})
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(BeAssignableToTypeOf(&inmemory.Driver{}))
	})

	DescribeTable("rejects incomplete or unknown settings",
		func(opts storageutils.NewDriverOpts) {
			_, err := storageutils.NewDriver(ctx, &opts)
			Expect(err).To(HaveOccurred())
		},
		Entry("jsonfile without a path", storageutils.NewDriverOpts{DriverType: "jsonfile"}),
		Entry("sqlite without a path", storageutils.NewDriverOpts{DriverType: "sqlite"}),
		Entry("postgres without a dsn", storageutils.NewDriverOpts{DriverType: "postgres"}),
		Entry("unknown driver", storageutils.NewDriverOpts{DriverType: "cassandra"}),
	)
})
