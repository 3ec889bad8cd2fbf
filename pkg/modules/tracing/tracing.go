// Package tracing provides a reconcile module that wraps every cycle in an
// OpenTelemetry span.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vpatch/pkg/vdom"
)

// Default tracer name.
const defaultTracerName = "vpatch"

// Config configures the tracing module.
type Config struct {
	// TracerName is the name of the tracer (default: "vpatch").
	TracerName string

	// SpanName is the name of each cycle span (default: "vpatch.reconcile").
	SpanName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider

	// Attributes are added to every span.
	Attributes []attribute.KeyValue
}

// Option configures the tracing module.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithSpanName sets the span name.
func WithSpanName(name string) Option {
	return func(c *Config) {
		c.SpanName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.Provider = tp
	}
}

// WithAttributes adds fixed attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(c *Config) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Module starts a span in Pre and ends it in Post, recording how many
// nodes were created, updated, destroyed and removed.
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// given. Configure it in main() before building the Patcher:
//
//	otel.SetTracerProvider(tp)
//	p := reconcile.New([]reconcile.Module{tracing.New()})
type Module struct {
	tracer   trace.Tracer
	spanName string
	attrs    []attribute.KeyValue
	parent   context.Context

	ctx  context.Context
	span trace.Span

	created, updated, destroyed, removed int
}

// New creates the tracing module.
func New(opts ...Option) *Module {
	config := Config{TracerName: defaultTracerName, SpanName: "vpatch.reconcile"}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	return &Module{
		tracer:   config.Provider.Tracer(config.TracerName),
		spanName: config.SpanName,
		attrs:    config.Attributes,
		parent:   context.Background(),
	}
}

// SetParent makes the spans of following cycles children of the span in
// ctx, typically the request being served.
func (m *Module) SetParent(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	m.parent = ctx
}

// Context returns the context of the running cycle's span, for hooks that
// want to start child spans. Outside a cycle it returns the parent.
func (m *Module) Context() context.Context {
	if m.ctx != nil {
		return m.ctx
	}
	return m.parent
}

// Pre implements reconcile.PreHook.
func (m *Module) Pre() {
	m.created, m.updated, m.destroyed, m.removed = 0, 0, 0, 0
	m.ctx, m.span = m.tracer.Start(m.parent, m.spanName,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(m.attrs...),
	)
}

// Create implements reconcile.CreateHook.
func (m *Module) Create(_, _ *vdom.VNode) { m.created++ }

// Update implements reconcile.UpdateHook.
func (m *Module) Update(_, _ *vdom.VNode) { m.updated++ }

// Destroy implements reconcile.DestroyHook.
func (m *Module) Destroy(_ *vdom.VNode) { m.destroyed++ }

// Remove implements reconcile.RemoveHook. It never delays removal.
func (m *Module) Remove(_ *vdom.VNode, done func()) {
	m.removed++
	done()
}

// Post implements reconcile.PostHook.
func (m *Module) Post() {
	if m.span == nil {
		return
	}
	m.span.SetAttributes(
		attribute.Int("vpatch.nodes_created", m.created),
		attribute.Int("vpatch.nodes_updated", m.updated),
		attribute.Int("vpatch.nodes_destroyed", m.destroyed),
		attribute.Int("vpatch.nodes_removed", m.removed),
	)
	m.span.End()
	m.span, m.ctx = nil, nil
}
