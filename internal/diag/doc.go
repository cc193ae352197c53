// Package diag defines the diagnostic model shared by the declaration
// pipeline.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced
//     while building the namespace tree, laying out types and instantiating
//     templates.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier (codes.go) with a stable string form.
//   - Message: human oriented text; keep it short and actionable.
//   - Primary: the Location the finding is about, a file plus the qualified
//     symbol being declared.
//   - Notes: optional secondary locations for additional context.
//
// # Emitting diagnostics
//
// Producers use a Reporter. ReportError and ReportWarning return a
// ReportBuilder that accumulates notes before Emit. BagReporter collects
// into a Bag, which supports sorting, deduplication and a size limit.
//
// Package diag performs no IO. Terminal rendering lives in internal/render.
package diag
