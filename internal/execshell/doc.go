// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging and optional timeouts via ShellExecutor,
// exposes OSCommandRunner for default process execution, and plans how each
// program is launched on the current platform so that script-wrapped tools
// such as npm and openclaw resolve on Windows.
package execshell
