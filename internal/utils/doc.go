// Package utils holds the configuration loader and logger factory shared by the CLI.
package utils
