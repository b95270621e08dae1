// Package security runs the openclaw security self-audit and reduces its report
// to a bounded health score.
//
// ParseReport normalizes the two JSON shapes the CLI emits, ComputeScore and
// ScoreLabel turn finding counts into a score in [1, 100] with a qualitative
// label, Service sequences invocation, parsing, and scoring, and ResultStore
// keeps the most recent result so callers can show it again without re-running
// the audit.
package security
