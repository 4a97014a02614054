package plugin

import (
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// DefaultAllowedImports are the standard library packages a source plugin
// may import. Filesystem, network, process and unsafe access are excluded.
var DefaultAllowedImports = []string{
	"bytes",
	"encoding/base64",
	"encoding/json",
	"fmt",
	"math",
	"regexp",
	"sort",
	"strconv",
	"strings",
	"time",
	"unicode",
	"unicode/utf8",
}

// SourceLoader interprets Go source files with yaegi. Each file gets its own
// interpreter with access to the allowed standard library packages only.
type SourceLoader struct {
	allowed map[string]bool
	symbols interp.Exports
}

// NewSourceLoader creates a loader restricted to the given imports. With no
// imports, DefaultAllowedImports is used.
func NewSourceLoader(allowed ...string) *SourceLoader {
	if len(allowed) == 0 {
		allowed = DefaultAllowedImports
	}

	l := &SourceLoader{
		allowed: make(map[string]bool, len(allowed)),
		symbols: interp.Exports{},
	}
	for _, pkg := range allowed {
		l.allowed[pkg] = true
	}

	// stdlib symbol keys are "<import path>/<package name>"
	for key, syms := range stdlib.Symbols {
		idx := strings.LastIndex(key, "/")
		if idx < 0 {
			continue
		}
		if l.allowed[key[:idx]] {
			l.symbols[key] = syms
		}
	}

	return l
}

func (l *SourceLoader) Match(path string) bool {
	return strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go")
}

func (l *SourceLoader) Open(path string) (Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plugin source: %w", err)
	}

	pkgName, err := l.validate(path, src)
	if err != nil {
		return nil, err
	}

	i := interp.New(interp.Options{})
	if err := i.Use(l.symbols); err != nil {
		return nil, fmt.Errorf("loading stdlib symbols: %w", err)
	}

	if _, err := i.Eval(string(src)); err != nil {
		return nil, fmt.Errorf("evaluating %s: %w", filepath.Base(path), err)
	}

	m := &sourceModule{funcs: make(map[string]TransformFunc, 2)}
	for _, name := range []string{ExportOutbound, ExportInbound} {
		v, err := i.Eval(pkgName + "." + name)
		if err != nil || !v.IsValid() || !v.CanInterface() {
			continue
		}
		if fn, ok := adapt(v.Interface()); ok {
			m.funcs[name] = fn
		}
	}

	return m, nil
}

// validate parses the file header and rejects imports outside the allow-list.
func (l *SourceLoader) validate(path string, src []byte) (string, error) {
	f, err := parser.ParseFile(token.NewFileSet(), path, src, parser.ImportsOnly)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	var forbidden []string
	for _, imp := range f.Imports {
		p, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return "", fmt.Errorf("bad import %s: %w", imp.Path.Value, err)
		}
		if !l.allowed[p] {
			forbidden = append(forbidden, p)
		}
	}
	if len(forbidden) > 0 {
		return "", fmt.Errorf("forbidden imports in %s: %s", filepath.Base(path), strings.Join(forbidden, ", "))
	}

	return f.Name.Name, nil
}

type sourceModule struct {
	funcs map[string]TransformFunc
}

func (m *sourceModule) Lookup(name string) (TransformFunc, bool) {
	fn, ok := m.funcs[name]
	return fn, ok
}

func (m *sourceModule) Close() error {
	m.funcs = nil
	return nil
}
