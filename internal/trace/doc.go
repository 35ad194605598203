// Package trace provides event.Tracer implementations for watching publishes:
// a zerolog event log with nesting depth, a cumulative per-event profiler,
// Prometheus metrics, and a Toggle that switches any of them on and off at
// runtime.
package trace
