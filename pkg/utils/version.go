// Package utils provides bespoke, one off utils that don't make sense to be
// their own package
package utils

import "runtime"

// Set at build time with -ldflags "-X".
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)

// UserAgent is sent with every backend request.
func UserAgent() string {
	return "PilotLight/" + Version + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}
