// Package cli constructs the repomerge command-line interface, wiring the
// Cobra command hierarchy, the embedded default configuration, and structured
// logging around the merge command.
package cli
