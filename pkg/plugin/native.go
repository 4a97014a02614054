package plugin

import "strings"

// NativeLoader opens compiled Go plugins (.so files built with
// -buildmode=plugin). It is only functional on linux and darwin cgo builds.
type NativeLoader struct{}

func (NativeLoader) Match(path string) bool {
	return strings.HasSuffix(path, ".so")
}

func (NativeLoader) Open(path string) (Module, error) {
	return openNative(path)
}
