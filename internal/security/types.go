package security

// Severity tiers reported by the openclaw audit. Findings carry them as free-form strings.
const (
	SeverityCritical = "critical"
	SeverityWarn     = "warn"
	SeverityInfo     = "info"
)

// AuditSummary holds the per-severity finding counts of a report.
type AuditSummary struct {
	Critical int `json:"critical" yaml:"critical"`
	Warn     int `json:"warn" yaml:"warn"`
	Info     int `json:"info" yaml:"info"`
}

// Finding is a single issue detected by the audit, in the order the CLI emitted it.
type Finding struct {
	CheckID     string  `json:"check_id" yaml:"check_id"`
	Severity    string  `json:"severity" yaml:"severity"`
	Title       string  `json:"title" yaml:"title"`
	Detail      string  `json:"detail" yaml:"detail"`
	Remediation *string `json:"remediation,omitempty" yaml:"remediation,omitempty"`
}

// AuditReport is the normalized report regardless of the JSON shape the CLI used.
type AuditReport struct {
	Summary  AuditSummary
	Findings []Finding
}

// AuditResult is the scored outcome handed to callers. A new result replaces the old one; it is never mutated.
type AuditResult struct {
	Score    int       `json:"score" yaml:"score"`
	Label    string    `json:"label" yaml:"label"`
	Critical int       `json:"critical" yaml:"critical"`
	Warn     int       `json:"warn" yaml:"warn"`
	Info     int       `json:"info" yaml:"info"`
	Message  string    `json:"message" yaml:"message"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// FixOutcome reports the result of openclaw security audit --fix.
type FixOutcome struct {
	Success bool   `json:"success" yaml:"success"`
	Message string `json:"message" yaml:"message"`
}

func cloneFindings(findings []Finding) []Finding {
	if findings == nil {
		return nil
	}
	cloned := make([]Finding, len(findings))
	for index, finding := range findings {
		cloned[index] = finding
		if finding.Remediation != nil {
			remediation := *finding.Remediation
			cloned[index].Remediation = &remediation
		}
	}
	return cloned
}

func (result AuditResult) clone() AuditResult {
	cloned := result
	cloned.Findings = cloneFindings(result.Findings)
	return cloned
}
