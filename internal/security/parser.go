package security

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	parseErrorTemplateConstant         = "Could not parse audit JSON. stdout: %s stderr: %s"
	missingFieldTemplateConstant       = "%s is required"
	negativeCountTemplateConstant      = "%s must be non-negative, got %d"
	decodeAttemptErrorTemplateConstant = "%s: %w"
	invalidUTF8ReplacementConstant     = "�"
	envelopeDecoderNameConstant        = "report envelope"
	bareDecoderNameConstant            = "bare report"
	reportFieldPathConstant            = "report"
	summaryFieldPathConstant           = "summary"
	findingsFieldPathConstant          = "findings"
	findingFieldPathTemplateConstant   = "findings[%d].%s"
)

// ParseError reports stdout that matched none of the known report shapes. It keeps
// both output streams so callers can diagnose a CLI that printed plain text.
type ParseError struct {
	StandardOutput string
	StandardError  string
	Attempts       []error
}

// Error includes the trimmed stdout and stderr verbatim.
func (parseError *ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.StandardOutput, parseError.StandardError)
}

// Unwrap exposes the failure of every attempted shape.
func (parseError *ParseError) Unwrap() []error {
	return parseError.Attempts
}

type reportDecoder struct {
	name   string
	decode func(data []byte) (AuditReport, error)
}

// reportDecoders is tried in order; the first structurally valid shape wins.
var reportDecoders = []reportDecoder{
	{name: envelopeDecoderNameConstant, decode: decodeEnvelope},
	{name: bareDecoderNameConstant, decode: decodeBareReport},
}

// ParseReport decodes openclaw security audit output. The report may be wrapped in
// {"report": ...} (fix mode) or sit at the top level.
func ParseReport(standardOutput string, standardError string) (AuditReport, error) {
	output := strings.ToValidUTF8(standardOutput, invalidUTF8ReplacementConstant)
	data := []byte(output)

	attempts := make([]error, 0, len(reportDecoders))
	for _, decoder := range reportDecoders {
		report, decodeError := decoder.decode(data)
		if decodeError == nil {
			return report, nil
		}
		attempts = append(attempts, fmt.Errorf(decodeAttemptErrorTemplateConstant, decoder.name, decodeError))
	}

	return AuditReport{}, &ParseError{
		StandardOutput: strings.TrimSpace(output),
		StandardError:  strings.TrimSpace(strings.ToValidUTF8(standardError, invalidUTF8ReplacementConstant)),
		Attempts:       attempts,
	}
}

type wireEnvelope struct {
	Report *wireReport `json:"report"`
}

type wireReport struct {
	Summary  *wireSummary   `json:"summary"`
	Findings *[]wireFinding `json:"findings"`
}

type wireSummary struct {
	Critical *int `json:"critical"`
	Warn     *int `json:"warn"`
	Info     *int `json:"info"`
}

type wireFinding struct {
	CheckID     *string `json:"check_id"`
	Severity    *string `json:"severity"`
	Title       *string `json:"title"`
	Detail      *string `json:"detail"`
	Remediation *string `json:"remediation"`
}

func decodeEnvelope(data []byte) (AuditReport, error) {
	var envelope wireEnvelope
	if unmarshalError := json.Unmarshal(data, &envelope); unmarshalError != nil {
		return AuditReport{}, unmarshalError
	}
	if envelope.Report == nil {
		return AuditReport{}, missingField(reportFieldPathConstant)
	}
	return envelope.Report.normalize(reportFieldPathConstant + ".")
}

func decodeBareReport(data []byte) (AuditReport, error) {
	var report wireReport
	if unmarshalError := json.Unmarshal(data, &report); unmarshalError != nil {
		return AuditReport{}, unmarshalError
	}
	return report.normalize("")
}

func (report wireReport) normalize(fieldPrefix string) (AuditReport, error) {
	if report.Summary == nil {
		return AuditReport{}, missingField(fieldPrefix + summaryFieldPathConstant)
	}
	summary, summaryError := report.Summary.normalize(fieldPrefix + summaryFieldPathConstant + ".")
	if summaryError != nil {
		return AuditReport{}, summaryError
	}

	if report.Findings == nil || *report.Findings == nil {
		return AuditReport{}, missingField(fieldPrefix + findingsFieldPathConstant)
	}

	findings := make([]Finding, 0, len(*report.Findings))
	for index, wire := range *report.Findings {
		finding, findingError := wire.normalize(func(field string) string {
			return fieldPrefix + fmt.Sprintf(findingFieldPathTemplateConstant, index, field)
		})
		if findingError != nil {
			return AuditReport{}, findingError
		}
		findings = append(findings, finding)
	}

	return AuditReport{Summary: summary, Findings: findings}, nil
}

func (summary wireSummary) normalize(fieldPrefix string) (AuditSummary, error) {
	counts := []struct {
		name  string
		value *int
	}{
		{name: SeverityCritical, value: summary.Critical},
		{name: SeverityWarn, value: summary.Warn},
		{name: SeverityInfo, value: summary.Info},
	}
	for _, count := range counts {
		if count.value == nil {
			return AuditSummary{}, missingField(fieldPrefix + count.name)
		}
		if *count.value < 0 {
			return AuditSummary{}, fmt.Errorf(negativeCountTemplateConstant, fieldPrefix+count.name, *count.value)
		}
	}
	return AuditSummary{Critical: *summary.Critical, Warn: *summary.Warn, Info: *summary.Info}, nil
}

func (finding wireFinding) normalize(fieldPath func(field string) string) (Finding, error) {
	requiredFields := []struct {
		name  string
		value *string
	}{
		{name: "check_id", value: finding.CheckID},
		{name: "severity", value: finding.Severity},
		{name: "title", value: finding.Title},
		{name: "detail", value: finding.Detail},
	}
	for _, requiredField := range requiredFields {
		if requiredField.value == nil {
			return Finding{}, missingField(fieldPath(requiredField.name))
		}
	}
	return Finding{
		CheckID:     *finding.CheckID,
		Severity:    *finding.Severity,
		Title:       *finding.Title,
		Detail:      *finding.Detail,
		Remediation: finding.Remediation,
	}, nil
}

func missingField(fieldPath string) error {
	return fmt.Errorf(missingFieldTemplateConstant, fieldPath)
}
