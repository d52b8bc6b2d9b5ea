package driver

import (
	"time"

	"ferrum/internal/observ"
)

// PhaseStatus tells a start event from an end event.
type PhaseStatus int

const (
	PhaseStart PhaseStatus = iota
	PhaseEnd
)

// PhaseEvent marks a phase boundary. Elapsed is set on PhaseEnd.
type PhaseEvent struct {
	Name    string
	Status  PhaseStatus
	Elapsed time.Duration
}

// PhaseObserver receives phase boundaries during Check.
type PhaseObserver func(PhaseEvent)

// phases fans phase boundaries out to the timer and the observer; either
// may be nil.
type phases struct {
	timer    *observ.Timer
	observer PhaseObserver
}

func (p phases) start(name string) func(note string) {
	stop := p.timer.Track(name)
	if p.observer == nil {
		return stop
	}
	began := time.Now()
	p.observer(PhaseEvent{Name: name, Status: PhaseStart})
	return func(note string) {
		stop(note)
		p.observer(PhaseEvent{Name: name, Status: PhaseEnd, Elapsed: time.Since(began)})
	}
}
