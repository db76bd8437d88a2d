// Package diag defines the diagnostic model shared by every markspan pass.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with a stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary – the source.Span pointing at the offending unit.
//   - Notes – optional secondary spans, e.g. where accumulated code started.
//
// # Producing diagnostics
//
// Core packages (marker, chunk, reconstruct) return typed errors and never
// touch this package. The driver converts them with FromError and collects
// the result in a Bag, which supports a limit, sorting, and deduplication.
// Passes that emit several findings (nested marker warnings) go through a
// Reporter, usually a BagReporter.
//
// # Consumers
//
//   - internal/diagfmt renders diagnostics with source context.
//   - FormatShortDiagnostics gives a stable one-line form for tests and --quiet
//     output.
package diag
