// Package cli implements the command-line interface for schedule.
//
// The cli package provides the Cobra-based CLI with list, add, delete and
// export subcommands. Each invocation resolves configuration, loads the
// calendar file, applies at most one mutation, saves, and exits with a
// code that tells scripts whether the command succeeded, conflicted or
// referenced a missing schedule.
package cli
