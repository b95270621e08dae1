package install

// NodeCheckResult reports whether a suitable Node.js runtime is available.
type NodeCheckResult struct {
	Found   bool   `json:"found"`
	Version string `json:"version,omitempty"`
	Major   *int   `json:"major,omitempty"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// CLICheckResult reports whether the openclaw CLI answers --version.
type CLICheckResult struct {
	Found   bool   `json:"found"`
	Version string `json:"version,omitempty"`
	Message string `json:"message"`
}

// InstallError carries the human-readable reason an installation step failed.
type InstallError struct {
	Step    string
	Message string
	Cause   error
}

// Error returns the step's message.
func (installError InstallError) Error() string {
	return installError.Message
}

// Unwrap exposes the underlying failure, if any.
func (installError InstallError) Unwrap() error {
	return installError.Cause
}
