// Package trace records a structured timeline of a compilation session.
//
// Spans bracket logical operations (a session, a pass over a manifest, one
// declaration or template instantiation); points mark instant events such as
// an instantiation cache hit. Tracers are goroutine-safe. Nop costs nothing
// and is what FromContext returns when no tracer was attached.
//
// Two sinks exist: StreamTracer writes every event as it happens in text or
// NDJSON form; RingTracer keeps the last N events in memory so they can be
// dumped after a failure or inspected by tests.
package trace
