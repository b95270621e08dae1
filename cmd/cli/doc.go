// Package cli constructs the clawsetup command-line interface. It wires the
// Cobra command hierarchy to the configuration loader and zap logging, and
// shares a single audit result store between the security and serve commands.
package cli
