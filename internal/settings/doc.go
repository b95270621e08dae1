// Package settings locates the openclaw configuration file and reads or writes
// individual configuration values through the openclaw CLI.
package settings
