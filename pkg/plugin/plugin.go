// Package plugin discovers transform modules in a directory and applies
// their exported transforms, in discovery order, to chat text.
//
// A module may export either or both of two well-known functions:
//
//	TransformUserPrompt        applied to user text before it is stored
//	TransformAssistantResponse applied to backend replies before they are stored
//
// Each export may have the string form
//
//	func(input string) (string, bool)
//
// or the buffer form, where the host passes a zeroed buffer and reads the
// result up to the first NUL rune:
//
//	func(input string, output []rune) bool
package plugin

import (
	"errors"
	"time"
)

const (
	// ExportOutbound is the export name of the user text transform.
	ExportOutbound = "TransformUserPrompt"

	// ExportInbound is the export name of the assistant text transform.
	ExportInbound = "TransformAssistantResponse"

	// DefaultCapacity is the output capacity, in runes, offered to a
	// transform. A result must leave room for a terminator.
	DefaultCapacity = 8192

	// DefaultCallTimeout bounds a single transform call.
	DefaultCallTimeout = 5 * time.Second
)

// ErrNativeUnsupported is returned when compiled modules cannot be opened on
// the current platform or build.
var ErrNativeUnsupported = errors.New("native plugins are not supported on this platform")

// Kind selects which transform a pipeline applies.
type Kind int

const (
	// Outbound transforms user-authored text.
	Outbound Kind = iota

	// Inbound transforms assistant-authored text.
	Inbound
)

func (k Kind) String() string {
	if k == Inbound {
		return "inbound"
	}
	return "outbound"
}

// Export returns the well-known export name for the kind.
func (k Kind) Export() string {
	if k == Inbound {
		return ExportInbound
	}
	return ExportOutbound
}

// TransformFunc is the host-side view of a transform export. It receives the
// current text and the output capacity in runes, and reports whether it
// handled the text.
type TransformFunc func(input string, capacity int) (string, bool)

// Module is a loaded plugin.
type Module interface {
	// Lookup returns the transform exported under name, if any.
	Lookup(name string) (TransformFunc, bool)

	// Close releases the module.
	Close() error
}

// Loader opens plugin files of one kind.
type Loader interface {
	// Match reports whether the loader handles the file at path.
	Match(path string) bool

	// Open loads the file at path.
	Open(path string) (Module, error)
}

// adapt converts an exported symbol into a TransformFunc. Symbols with any
// other signature are reported as absent.
func adapt(sym any) (TransformFunc, bool) {
	switch fn := sym.(type) {
	case func(string) (string, bool):
		if fn == nil {
			return nil, false
		}
		return func(input string, _ int) (string, bool) {
			return fn(input)
		}, true

	case func(string, []rune) bool:
		if fn == nil {
			return nil, false
		}
		return func(input string, capacity int) (string, bool) {
			buf := make([]rune, capacity)
			if !fn(input, buf) {
				return "", false
			}
			for i, r := range buf {
				if r == 0 {
					return string(buf[:i]), true
				}
			}
			// no terminator: the output filled the whole buffer
			return "", false
		}, true

	case *func(string) (string, bool):
		if fn == nil {
			return nil, false
		}
		return adapt(*fn)

	case *func(string, []rune) bool:
		if fn == nil {
			return nil, false
		}
		return adapt(*fn)

	case TransformFunc:
		return fn, fn != nil
	}

	return nil, false
}

// Funcs is an in-process module built from Go functions. Outbound and Inbound
// accept the same signatures as exported symbols. It is used for built-in
// transforms registered with Registry.Register.
type Funcs struct {
	Outbound any
	Inbound  any
	OnClose  func() error
}

func (f *Funcs) Lookup(name string) (TransformFunc, bool) {
	switch name {
	case ExportOutbound:
		return adapt(f.Outbound)
	case ExportInbound:
		return adapt(f.Inbound)
	}
	return nil, false
}

func (f *Funcs) Close() error {
	if f.OnClose != nil {
		return f.OnClose()
	}
	return nil
}
