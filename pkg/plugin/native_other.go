//go:build !((linux || darwin) && cgo)

package plugin

func openNative(string) (Module, error) {
	return nil, ErrNativeUnsupported
}
