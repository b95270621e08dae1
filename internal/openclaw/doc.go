// Package openclaw wraps the openclaw command-line tool behind typed operations:
// version detection, configuration reads and writes, and security audits.
package openclaw
