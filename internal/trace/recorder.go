package trace

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Tracer receives events. Implementations are safe for concurrent use.
type Tracer interface {
	Emit(ev Event)
	Level() Level
	Close() error
}

type nopTracer struct{}

func (nopTracer) Emit(Event)   {}
func (nopTracer) Level() Level { return LevelOff }
func (nopTracer) Close() error { return nil }

// Nop drops every event.
var Nop Tracer = nopTracer{}

// enabled reports whether t keeps events of scope.
func enabled(t Tracer, scope Scope) bool {
	return t != nil && t.Level().Wants(scope)
}

// Mode selects where a recorder keeps events.
type Mode uint8

const (
	ModeStream Mode = iota + 1
	ModeRing
	ModeBoth
)

var modeNames = [...]string{"unknown", "stream", "ring", "both"}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return modeNames[0]
}

// ParseMode accepts stream, ring or both.
func ParseMode(s string) (Mode, error) {
	for i, n := range modeNames[1:] {
		if strings.EqualFold(s, n) {
			return Mode(i + 1), nil
		}
	}
	return ModeRing, fmt.Errorf("invalid trace mode %q (want stream|ring|both)", s)
}

const defaultRingSize = 4096

// Config configures New.
type Config struct {
	Level      Level
	Mode       Mode
	Format     Format
	Output     io.Writer // stream destination; OutputPath is used when nil
	OutputPath string    // "" or "-" is stderr
	RingSize   int
}

// New builds a tracer from cfg. LevelOff yields Nop.
func New(cfg Config) (Tracer, error) {
	if cfg.Level == LevelOff {
		return Nop, nil
	}
	r := &Recorder{level: cfg.Level, format: cfg.Format}
	if r.format == FormatAuto {
		r.format = FormatText
		if strings.HasSuffix(cfg.OutputPath, ".ndjson") || strings.HasSuffix(cfg.OutputPath, ".jsonl") {
			r.format = FormatNDJSON
		}
	}
	switch cfg.Mode {
	case ModeStream, ModeBoth:
		if err := r.open(cfg); err != nil {
			return nil, err
		}
	case ModeRing:
	default:
		return nil, fmt.Errorf("unknown trace mode %v", cfg.Mode)
	}
	if cfg.Mode == ModeRing || cfg.Mode == ModeBoth {
		size := cfg.RingSize
		if size <= 0 {
			size = defaultRingSize
		}
		r.ring = make([]Event, size)
	}
	return r, nil
}

// Recorder writes events to a stream, keeps them in a ring, or both.
type Recorder struct {
	mu     sync.Mutex
	level  Level
	format Format
	seq    uint64

	out    io.Writer
	closer io.Closer
	buf    []byte

	ring    []Event
	head    int
	wrapped bool
}

func (r *Recorder) open(cfg Config) error {
	switch {
	case cfg.Output != nil:
		r.out = cfg.Output
		r.closer, _ = cfg.Output.(io.Closer)
	case cfg.OutputPath == "" || cfg.OutputPath == "-":
		r.out = os.Stderr
	default:
		f, err := os.Create(cfg.OutputPath)
		if err != nil {
			return fmt.Errorf("open trace output: %w", err)
		}
		r.out, r.closer = f, f
	}
	return nil
}

// Emit numbers ev and records it if the level keeps it. Stream write
// failures are dropped.
func (r *Recorder) Emit(ev Event) {
	if !r.level.keeps(&ev) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ev.Seq = r.seq
	if r.out != nil {
		r.buf = AppendEvent(r.buf[:0], &ev, r.format)
		_, _ = r.out.Write(r.buf) //nolint:errcheck
	}
	if len(r.ring) > 0 {
		r.ring[r.head] = ev
		r.head = (r.head + 1) % len(r.ring)
		r.wrapped = r.wrapped || r.head == 0
	}
}

func (r *Recorder) Level() Level { return r.level }

// Events returns the ring contents, oldest first.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.wrapped {
		return append([]Event(nil), r.ring[:r.head]...)
	}
	out := make([]Event, 0, len(r.ring))
	out = append(out, r.ring[r.head:]...)
	return append(out, r.ring[:r.head]...)
}

// Dump writes the ring contents to w.
func (r *Recorder) Dump(w io.Writer, f Format) error {
	if f == FormatAuto {
		f = r.format
	}
	var buf []byte
	for _, ev := range r.Events() {
		buf = AppendEvent(buf[:0], &ev, f)
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the stream destination when the recorder opened it or it
// is an io.Closer.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
