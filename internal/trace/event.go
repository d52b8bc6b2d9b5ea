package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Kind is the shape of an event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	// KindError is kept at every level except LevelOff.
	KindError
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "error"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Scope is the granularity of an event. Coarser scopes have lower values.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // CLI commands
	ScopePass                    // type registration, one function body
	ScopeScope                   // lexical scope push and pop
	ScopeVar                     // borrows, moves, releases, heap ops
)

var scopeNames = [...]string{"unknown", "driver", "pass", "scope", "var"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

// Event is one trace record. Seq is assigned by the recorder.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string
	Detail   string
	Extra    map[string]string
}

// Level is the verbosity of a tracer.
type Level uint8

const (
	LevelOff Level = iota
	LevelError
	LevelPhase
	LevelDetail
	LevelDebug
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts a level name in any case.
func ParseLevel(s string) (Level, error) {
	if i := slices.Index(levelNames[:], strings.ToLower(s)); i >= 0 {
		return Level(i), nil
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (want %s)", s, strings.Join(levelNames[:], "|"))
}

// maxScope is the finest scope kept at each level.
var maxScope = [...]Scope{LevelPhase: ScopePass, LevelDetail: ScopeScope, LevelDebug: ScopeVar}

// Wants reports whether events of scope are kept at level l.
func (l Level) Wants(scope Scope) bool {
	return int(l) < len(maxScope) && scope <= maxScope[l]
}

func (l Level) keeps(ev *Event) bool {
	if ev.Kind == KindError {
		return l > LevelOff
	}
	return l.Wants(ev.Scope)
}

// Format is the rendering of events written out by a recorder.
type Format uint8

const (
	FormatAuto Format = iota // text unless the output path ends in .ndjson or .jsonl
	FormatText
	FormatNDJSON
)

// ParseFormat accepts auto, text, ndjson or json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format %q (want auto|text|ndjson)", s)
}

type eventJSON struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// AppendEvent renders ev in format f onto buf, newline terminated.
func AppendEvent(buf []byte, ev *Event, f Format) []byte {
	if f == FormatNDJSON {
		data, err := json.Marshal(eventJSON{
			Time:     ev.Time.UTC().Format(time.RFC3339Nano),
			Seq:      ev.Seq,
			Kind:     ev.Kind.String(),
			Scope:    ev.Scope.String(),
			SpanID:   ev.SpanID,
			ParentID: ev.ParentID,
			Name:     ev.Name,
			Detail:   ev.Detail,
			Extra:    ev.Extra,
		})
		if err != nil {
			return fmt.Appendf(buf, "{\"kind\":\"error\",\"name\":\"trace\",\"detail\":%q}\n", err.Error())
		}
		return append(append(buf, data...), '\n')
	}

	buf = fmt.Appendf(buf, "%06d %-6s %-5s ", ev.Seq, ev.Scope, ev.Kind)
	if ev.ParentID != 0 {
		buf = append(buf, ". "...)
	}
	buf = append(buf, ev.Name...)
	if ev.Detail != "" {
		buf = fmt.Appendf(buf, " (%s)", ev.Detail)
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			buf = fmt.Appendf(buf, " %s=%s", k, ev.Extra[k])
		}
	}
	return append(buf, '\n')
}
