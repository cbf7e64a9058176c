// Package cli constructs the reposcloner command-line interface. It wires the
// Cobra command hierarchy to the configuration loader and the structured
// logger, and starts the interactive menu when no subcommand is given.
package cli
