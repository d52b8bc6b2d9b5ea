// Package diag defines the diagnostic model shared by every phase of the
// Ferrum front-end.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     manifest loading, type registration and the ownership checker.
//   - Collect findings in a bounded Bag that sorts and deduplicates them for
//     stable output.
//
// # Scope
//
// Package diag does not format or print anything. Rendering lives in
// internal/diagfmt, orchestration in internal/compiler and cmd/ferrum.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error.
//   - Code: compact numeric identifier with a stable string form (codes.go).
//   - Message: short human oriented text.
//   - Primary: the source.Span the finding points at.
//   - Notes: optional secondary spans with extra context.
//
// Codes are grouped by phase: SEM (3xxx) for user-facing ownership and type
// rules, IO (4xxx), PRJ (5xxx) for the manifest, OBS (6xxx) for timings and
// INT (9xxx) for compiler defects. INT diagnostics mean the checker itself
// reached an impossible state and should be reported upstream.
package diag
