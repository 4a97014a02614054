package main

import (
	"os"

	pilotlightcmder "github.com/papercomputeco/pilotlight/cmd/pilotlight"
)

func main() {
	cmd := pilotlightcmder.NewPilotLightCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
