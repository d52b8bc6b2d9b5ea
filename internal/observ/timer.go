package observ

import (
	"fmt"
	"strings"
	"time"
)

// Timer records phase durations and counters for one run. A nil Timer
// records nothing.
type Timer struct {
	phases   []phase
	counters []Counter
}

type phase struct {
	name string
	dur  time.Duration
	note string
}

// Counter is a named tally such as cache hits or emitted ops.
type Counter struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func NewTimer() *Timer { return &Timer{phases: make([]phase, 0, 4)} }

// Track starts phase name. The returned func stops it and attaches note;
// calls after the first are ignored.
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	idx := len(t.phases)
	t.phases = append(t.phases, phase{name: name})
	start := time.Now()
	stopped := false
	return func(note string) {
		if stopped {
			return
		}
		stopped = true
		t.phases[idx].dur = time.Since(start)
		t.phases[idx].note = note
	}
}

// Set records counter name, replacing an earlier value.
func (t *Timer) Set(name string, value int) {
	if t == nil {
		return
	}
	for i := range t.counters {
		if t.counters[i].Name == name {
			t.counters[i].Value = value
			return
		}
	}
	t.counters = append(t.counters, Counter{Name: name, Value: value})
}

// PhaseReport is one phase in milliseconds.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

type Report struct {
	TotalMS  float64       `json:"total_ms"`
	Phases   []PhaseReport `json:"phases"`
	Counters []Counter     `json:"counters,omitempty"`
}

func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	var r Report
	var total time.Duration
	for _, p := range t.phases {
		total += p.dur
		r.Phases = append(r.Phases, PhaseReport{Name: p.name, DurationMS: millis(p.dur), Note: p.note})
	}
	r.TotalMS = millis(total)
	r.Counters = append(r.Counters, t.counters...)
	return r
}

// Summary renders the report as an indented table.
func (t *Timer) Summary() string {
	r := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			sb.WriteString("  " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-20s %7.2f ms\n", "total", r.TotalMS)
	for _, c := range r.Counters {
		fmt.Fprintf(&sb, "  %-20s %7d\n", c.Name, c.Value)
	}
	return sb.String()
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
