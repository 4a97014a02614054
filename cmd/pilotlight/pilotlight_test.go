package pilotlightcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	pilotlightcmder "github.com/papercomputeco/pilotlight/cmd/pilotlight"
)

var _ = Describe("NewPilotLightCmd", func() {
	It("registers every subcommand", func() {
		cmd := pilotlightcmder.NewPilotLightCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("chat", "plugins", "history", "config", "auth", "init", "version"))
	})

	It("has the global flags", func() {
		cmd := pilotlightcmder.NewPilotLightCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().ShorthandLookup("d")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})
