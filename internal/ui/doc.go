// Package ui provides helpers for human-facing console interaction.
//
// Command lifecycle events are translated into concise messages so that
// execution feedback remains actionable for CLI users while detailed telemetry
// continues to flow through structured loggers. Confirmation prompters guard
// operations that change the machine.
package ui
