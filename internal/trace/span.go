package trace

import (
	"context"
	"sync/atomic"
	"time"
)

var lastSpanID atomic.Uint64

// Span is an open begin/end pair. A nil or disabled span ignores calls.
type Span struct {
	t       Tracer
	id      uint64
	parent  uint64
	scope   Scope
	name    string
	started time.Time
	extra   map[string]string
}

// Begin opens a span under parent (0 for a root span).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !enabled(t, scope) {
		return &Span{}
	}
	s := &Span{t: t, id: lastSpanID.Add(1), parent: parent, scope: scope, name: name, started: time.Now()}
	t.Emit(Event{Time: s.started, Kind: KindSpanBegin, Scope: scope, SpanID: s.id, ParentID: parent, Name: name})
	return s
}

// WithExtra attaches a key to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.t == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// End closes the span and returns its duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.t == nil {
		return 0
	}
	now := time.Now()
	s.t.Emit(Event{
		Time: now, Kind: KindSpanEnd, Scope: s.scope, SpanID: s.id, ParentID: s.parent,
		Name: s.name, Detail: detail, Extra: s.extra,
	})
	return now.Sub(s.started)
}

// ID is 0 for nil and disabled spans.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// Point records an instant event.
func Point(t Tracer, scope Scope, name, detail string, extra map[string]string) {
	if !enabled(t, scope) {
		return
	}
	t.Emit(Event{Time: time.Now(), Kind: KindPoint, Scope: scope, Name: name, Detail: detail, Extra: extra})
}

// Error records a checker defect. It is kept at every level but LevelOff.
func Error(t Tracer, scope Scope, name, detail string) {
	if t == nil || t.Level() == LevelOff {
		return
	}
	t.Emit(Event{Time: time.Now(), Kind: KindError, Scope: scope, Name: name, Detail: detail})
}

type (
	tracerKey struct{}
	spanKey   struct{}
)

// WithTracer stores t in ctx. A nil t stores Nop.
func WithTracer(ctx context.Context, t Tracer) context.Context {
	if t == nil {
		t = Nop
	}
	return context.WithValue(ctx, tracerKey{}, t)
}

// FromContext returns the tracer stored in ctx, or Nop.
func FromContext(ctx context.Context) Tracer {
	if ctx != nil {
		if t, ok := ctx.Value(tracerKey{}).(Tracer); ok {
			return t
		}
	}
	return Nop
}

// WithSpan makes s the parent of spans begun from the returned context.
func WithSpan(ctx context.Context, s *Span) context.Context {
	return context.WithValue(ctx, spanKey{}, s.ID())
}

// CurrentSpan returns the span stored by WithSpan, or 0.
func CurrentSpan(ctx context.Context) uint64 {
	if ctx != nil {
		if id, ok := ctx.Value(spanKey{}).(uint64); ok {
			return id
		}
	}
	return 0
}
