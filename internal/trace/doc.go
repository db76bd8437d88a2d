// Package trace provides the tracing subsystem of markspan.
//
// Core passes never log. The driver wraps every command, file, and pass in a
// trace span so slow or failing files can be found without a debugger.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	markspan reconstruct --trace=- --trace-level=detail testdata/
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only failed spans
//   - LevelPhase: Driver and per-file boundaries
//   - LevelDetail: Every pass over every file
//   - LevelDebug: Everything including unit-level points
//
// # Context Propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "parse", trace.CurrentSpan(ctx).SpanID)
//	defer span.End("")
package trace
