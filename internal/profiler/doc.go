// Package profiler times designated operations on wrapped capabilities and
// renders a per-operation, per-goroutine report. Wrapping is done with
// explicit decorator types rather than reflection: each decorator implements
// the same interface as its delegate and is told at construction which
// operations to time. Non-designated operations delegate with no overhead,
// and instrumentation never alters a delegate's results or failures.
package profiler
