// Package trace records what the checker does while it runs.
//
// Events are span begin/end pairs for driver commands and passes, points for
// scope and variable activity, and errors for checker defects. A Recorder
// streams them to a writer, keeps the most recent ones in a ring, or both.
// The active tracer travels in a context.Context; without one, Nop is used.
package trace
