package plugin

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Info describes a retained plugin for diagnostics.
type Info struct {
	Name     string
	Path     string
	Outbound bool
	Inbound  bool
}

type record struct {
	info     Info
	module   Module
	outbound TransformFunc
	inbound  TransformFunc

	// mu guards the in-flight accounting below. A retired record closes its
	// module once the last call returns.
	mu        sync.Mutex
	calls     int
	abandoned int
	retired   bool
	closer    func()
}

// call tracks one transform invocation against its record.
type call struct {
	done      bool
	abandoned bool
}

// begin registers a call. It fails once the record is retired.
func (r *record) begin() (*call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.retired {
		return nil, false
	}
	r.calls++
	return &call{}, true
}

// finish marks c returned, closing the module if the record was retired
// while c was running.
func (r *record) finish(c *call) {
	r.mu.Lock()
	c.done = true
	r.calls--
	if c.abandoned {
		r.abandoned--
	}
	closeNow := r.retired && r.calls == 0
	r.mu.Unlock()

	if closeNow {
		r.close()
	}
}

// abandon records that the caller stopped waiting for c.
func (r *record) abandon(c *call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !c.done && !c.abandoned {
		c.abandoned = true
		r.abandoned++
	}
}

// stuck reports whether an abandoned call is still running.
func (r *record) stuck() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.abandoned > 0
}

// retire stops new calls and closes the module now, or when the last
// in-flight call returns.
func (r *record) retire() {
	r.mu.Lock()
	if r.retired {
		r.mu.Unlock()
		return
	}
	r.retired = true
	closeNow := r.calls == 0
	r.mu.Unlock()

	if closeNow {
		r.close()
	}
}

func (r *record) close() {
	if r.closer != nil {
		r.closer()
	}
}

func (r *record) transform(kind Kind) TransformFunc {
	if kind == Inbound {
		return r.inbound
	}
	return r.outbound
}

// Registry owns the loaded plugin modules, in discovery order. Every retained
// module is closed exactly once, by Unload.
type Registry struct {
	dir     string
	loaders []Loader
	log     *zap.Logger

	mu      sync.RWMutex
	records []*record
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLoaders replaces the default loaders. The first loader whose Match
// accepts a file opens it.
func WithLoaders(loaders ...Loader) RegistryOption {
	return func(r *Registry) {
		r.loaders = loaders
	}
}

// WithLogger sets the registry logger.
func WithLogger(log *zap.Logger) RegistryOption {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRegistry creates a registry for the plugins in dir. Nothing is loaded
// until Load is called.
func NewRegistry(dir string, opts ...RegistryOption) *Registry {
	r := &Registry{
		dir:     dir,
		loaders: []Loader{NewSourceLoader(), NativeLoader{}},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the plugin directory.
func (r *Registry) Dir() string {
	return r.dir
}

// Load opens every plugin file directly inside the directory and retains the
// ones exporting at least one transform. Bad files are skipped; a missing
// directory loads nothing.
func (r *Registry) Load() {
	if r.dir == "" {
		return
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		r.log.Debug("plugin directory unavailable", zap.String("dir", r.dir), zap.Error(err))
		return
	}

	for _, entry := range entries {
		path := filepath.Join(r.dir, entry.Name())

		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		loader := r.loaderFor(path)
		if loader == nil {
			continue
		}

		m, err := open(loader, path)
		if err != nil {
			r.log.Debug("skipping plugin", zap.String("path", path), zap.Error(err))
			continue
		}

		r.retain(entry.Name(), path, m)
	}
}

// Register probes an in-process module and retains it when it exports at
// least one transform. It reports whether the module was retained.
func (r *Registry) Register(name string, m Module) bool {
	if m == nil {
		return false
	}
	return r.retain(name, "", m)
}

func (r *Registry) retain(name, path string, m Module) bool {
	outbound, hasOut := lookup(m, ExportOutbound)
	inbound, hasIn := lookup(m, ExportInbound)

	if !hasOut && !hasIn {
		r.log.Debug("plugin exports no transforms", zap.String("plugin", name))
		r.closeModule(name, m)
		return false
	}

	rec := &record{
		info: Info{
			Name:     name,
			Path:     path,
			Outbound: hasOut,
			Inbound:  hasIn,
		},
		module:   m,
		outbound: outbound,
		inbound:  inbound,
	}
	rec.closer = func() { r.closeModule(name, m) }

	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()

	r.log.Debug("plugin loaded",
		zap.String("plugin", name),
		zap.Bool("outbound", hasOut),
		zap.Bool("inbound", hasIn),
	)
	return true
}

// Count returns the number of retained plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Records returns a snapshot of the retained plugins in discovery order.
func (r *Registry) Records() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.info
	}
	return out
}

// Unload closes every retained module and clears the registry. A module with
// a call still running, including one the pipeline gave up on, is closed when
// that call returns. It is safe to call before Load and more than once.
func (r *Registry) Unload() {
	r.mu.Lock()
	records := r.records
	r.records = nil
	r.mu.Unlock()

	for _, rec := range records {
		rec.retire()
	}
}

// Reload unloads every module and loads the directory again.
func (r *Registry) Reload() {
	r.Unload()
	r.Load()
}

// each calls fn for every retained record exporting a transform of kind, in
// order.
func (r *Registry) each(kind Kind, fn func(rec *record, transform TransformFunc)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if t := rec.transform(kind); t != nil {
			fn(rec, t)
		}
	}
}

func (r *Registry) loaderFor(path string) Loader {
	for _, l := range r.loaders {
		if l.Match(path) {
			return l
		}
	}
	return nil
}

func (r *Registry) closeModule(name string, m Module) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Debug("plugin panicked on close", zap.String("plugin", name), zap.Any("panic", p))
		}
	}()

	if err := m.Close(); err != nil {
		r.log.Debug("closing plugin", zap.String("plugin", name), zap.Error(err))
	}
}

func open(loader Loader, path string) (m Module, err error) {
	defer func() {
		if p := recover(); p != nil {
			m, err = nil, fmt.Errorf("loader panicked: %v", p)
		}
	}()

	m, err = loader.Open(path)
	if err == nil && m == nil {
		err = errors.New("loader returned no module")
	}
	return m, err
}

func lookup(m Module, name string) (fn TransformFunc, ok bool) {
	defer func() {
		if recover() != nil {
			fn, ok = nil, false
		}
	}()

	fn, ok = m.Lookup(name)
	return fn, ok && fn != nil
}
