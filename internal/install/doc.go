// Package install detects and installs the prerequisites of an openclaw setup:
// Node.js, the openclaw CLI from npm, and the npm global bin directory on PATH.
//
// Installation commands change the machine, so the CLI asks for confirmation
// before running them unless the user passes --yes.
package install
