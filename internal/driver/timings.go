package driver

import (
	"encoding/json"
	"fmt"

	"ferrum/internal/diag"
	"ferrum/internal/observ"
	"ferrum/internal/source"
)

type timingPayload struct {
	Kind     string               `json:"kind"`
	Program  string               `json:"program,omitempty"`
	TotalMS  float64              `json:"total_ms"`
	Phases   []observ.PhaseReport `json:"phases"`
	Counters []observ.Counter     `json:"counters,omitempty"`
}

func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "check"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Program != "" {
		msg = fmt.Sprintf("%s, program %s", msg, payload.Program)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).
		WithNote(source.Span{}, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
