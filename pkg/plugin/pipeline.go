package plugin

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Pipeline applies the registry's transforms to text.
type Pipeline struct {
	registry *Registry
	capacity int
	timeout  time.Duration
	log      *zap.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithCapacity sets the output capacity in runes. Values below 1 keep the default.
func WithCapacity(capacity int) PipelineOption {
	return func(p *Pipeline) {
		if capacity > 0 {
			p.capacity = capacity
		}
	}
}

// WithCallTimeout bounds each transform call. Zero disables the bound.
func WithCallTimeout(timeout time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if timeout >= 0 {
			p.timeout = timeout
		}
	}
}

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(log *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPipeline creates a pipeline over reg. A nil registry yields an identity pipeline.
func NewPipeline(reg *Registry, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		registry: reg,
		capacity: DefaultCapacity,
		timeout:  DefaultCallTimeout,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Apply runs every retained transform of kind over text, in registry order.
// A transform's result replaces the text only when it reports success, is
// non-empty, and fits the capacity. Failures, panics and timeouts leave the
// text as it was. A plugin with an abandoned call still running is skipped
// until that call returns.
func (p *Pipeline) Apply(ctx context.Context, kind Kind, text string) string {
	if p == nil || p.registry == nil {
		return text
	}

	current := text
	p.registry.each(kind, func(rec *record, transform TransformFunc) {
		if rec.stuck() {
			p.log.Debug("plugin transform skipped",
				zap.String("plugin", rec.info.Name),
				zap.Stringer("kind", kind),
				zap.Error(errStuck),
			)
			return
		}

		out, err := p.invoke(ctx, rec, transform, current)
		if err != nil {
			p.log.Debug("plugin transform skipped",
				zap.String("plugin", rec.info.Name),
				zap.Stringer("kind", kind),
				zap.Error(err),
			)
			return
		}
		current = out
	})

	return current
}

var (
	errStuck   = errors.New("previous call still running")
	errRetired = errors.New("plugin unloaded")
)

type callResult struct {
	out string
	ok  bool
	err error
}

func (p *Pipeline) invoke(ctx context.Context, rec *record, transform TransformFunc, input string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c, ok := rec.begin()
	if !ok {
		return "", errRetired
	}

	done := make(chan callResult, 1)
	go func() {
		defer rec.finish(c)
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		out, ok := transform(input, p.capacity)
		done <- callResult{out: out, ok: ok}
	}()

	var timeout <-chan time.Time
	if p.timeout > 0 {
		timer := time.NewTimer(p.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	var res callResult
	select {
	case res = <-done:
	case <-timeout:
		rec.abandon(c)
		return "", fmt.Errorf("timed out after %s", p.timeout)
	case <-ctx.Done():
		rec.abandon(c)
		return "", ctx.Err()
	}

	switch {
	case res.err != nil:
		return "", res.err
	case !res.ok:
		return "", errors.New("transform reported failure")
	case res.out == "":
		return "", errors.New("transform returned empty output")
	case utf8.RuneCountInString(res.out) >= p.capacity:
		return "", fmt.Errorf("output exceeds capacity of %d runes", p.capacity)
	}
	return res.out, nil
}
