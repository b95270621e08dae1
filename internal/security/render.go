package security

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Output formats accepted by the audit command.
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

const (
	textScoreLineTemplateConstant       = "Score: %d (%s)\n"
	textMessageLineTemplateConstant     = "%s\n"
	textFindingLineTemplateConstant     = "[%s] %s: %s\n"
	textDetailLineTemplateConstant      = "    %s\n"
	textRemediationLineTemplateConstant = "    remediation: %s\n"
	textFixLineTemplateConstant         = "%s\n"
	jsonIndentConstant                  = "  "
	yamlIndentConstant                  = 2
	unsupportedFormatTemplateConstant   = "unsupported output format: %s"
)

// OutputFormats lists the supported formats in display order.
func OutputFormats() []string {
	return []string{OutputFormatText, OutputFormatJSON, OutputFormatYAML}
}

// ValidateOutputFormat rejects formats RenderAuditResult cannot write. Blank selects text.
func ValidateOutputFormat(format string) error {
	normalizedFormat := strings.ToLower(strings.TrimSpace(format))
	if len(normalizedFormat) == 0 {
		return nil
	}
	for _, supportedFormat := range OutputFormats() {
		if supportedFormat == normalizedFormat {
			return nil
		}
	}
	return fmt.Errorf(unsupportedFormatTemplateConstant, format)
}

// RenderAuditResult writes the result in the requested format.
func RenderAuditResult(writer io.Writer, result AuditResult, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case OutputFormatText, "":
		return renderAuditText(writer, result)
	case OutputFormatJSON:
		encoder := json.NewEncoder(writer)
		encoder.SetIndent("", jsonIndentConstant)
		return encoder.Encode(result)
	case OutputFormatYAML:
		encoder := yaml.NewEncoder(writer)
		encoder.SetIndent(yamlIndentConstant)
		if encodeError := encoder.Encode(result); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	default:
		return fmt.Errorf(unsupportedFormatTemplateConstant, format)
	}
}

// RenderFixOutcome writes the fix message, if any.
func RenderFixOutcome(writer io.Writer, outcome FixOutcome) error {
	if len(outcome.Message) == 0 {
		return nil
	}
	_, writeError := fmt.Fprintf(writer, textFixLineTemplateConstant, outcome.Message)
	return writeError
}

func renderAuditText(writer io.Writer, result AuditResult) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, textScoreLineTemplateConstant, result.Score, result.Label)
	fmt.Fprintf(&builder, textMessageLineTemplateConstant, result.Message)
	for _, finding := range result.Findings {
		fmt.Fprintf(&builder, textFindingLineTemplateConstant, finding.Severity, finding.CheckID, finding.Title)
		if len(strings.TrimSpace(finding.Detail)) > 0 {
			fmt.Fprintf(&builder, textDetailLineTemplateConstant, finding.Detail)
		}
		if finding.Remediation != nil && len(strings.TrimSpace(*finding.Remediation)) > 0 {
			fmt.Fprintf(&builder, textRemediationLineTemplateConstant, *finding.Remediation)
		}
	}
	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}
