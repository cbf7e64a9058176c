// Package repos provides the cobra commands that clone, update, and inspect the
// repositories named in the configured list, plus the interactive menu that
// offers the same operations by number.
package repos
