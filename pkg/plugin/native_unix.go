//go:build (linux || darwin) && cgo

package plugin

import (
	"fmt"
	goplugin "plugin"
)

type nativeModule struct {
	p *goplugin.Plugin
}

func openNative(path string) (Module, error) {
	p, err := goplugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening native plugin: %w", err)
	}
	return &nativeModule{p: p}, nil
}

func (m *nativeModule) Lookup(name string) (TransformFunc, bool) {
	if m.p == nil {
		return nil, false
	}
	sym, err := m.p.Lookup(name)
	if err != nil {
		return nil, false
	}
	return adapt(sym)
}

// Close drops the handle. The Go runtime cannot unload a plugin, so the code
// stays mapped until the process exits.
func (m *nativeModule) Close() error {
	m.p = nil
	return nil
}
