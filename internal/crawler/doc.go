// Package crawler implements the concurrent crawl engine: recursive
// fork/join scheduling over seed URLs with depth and deadline limits,
// at-most-once URL visitation, robots filtering, and word-frequency
// aggregation with deterministic top-K selection.
package crawler
