package security

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/clawsetup/internal/execshell"
)

const (
	auditInvocationErrorTemplateConstant = "Failed to run openclaw: %v"
	auditMessageTemplateConstant         = "%d critical, %d warn, %d info"
	clientNotConfiguredMessageConstant   = "security audit client not configured"
	storeNotConfiguredMessageConstant    = "audit result store not configured"
	outputSeparatorConstant              = " "
	auditCompletedLogMessageConstant     = "Security audit completed"
	auditParseFailedLogMessageConstant   = "Security audit output could not be parsed"
	auditInvocationLogMessageConstant    = "Security audit could not run"
	fixCompletedLogMessageConstant       = "Security fix completed"
	fixFailedLogMessageConstant          = "Security fix failed"
	logFieldScoreConstant                = "score"
	logFieldLabelConstant                = "label"
	logFieldCriticalConstant             = "critical"
	logFieldWarnConstant                 = "warn"
	logFieldInfoConstant                 = "info"
	logFieldDeepConstant                 = "deep"
	logFieldExitCodeConstant             = "exit_code"
)

// AuditClient runs the openclaw security commands and returns their captured output.
type AuditClient interface {
	SecurityAudit(executionContext context.Context, deep bool) (execshell.ExecutionResult, error)
	SecurityFix(executionContext context.Context) (execshell.ExecutionResult, error)
}

var (
	// ErrClientNotConfigured indicates the service was constructed without an audit client.
	ErrClientNotConfigured = errors.New(clientNotConfiguredMessageConstant)
	// ErrStoreNotConfigured indicates the service was constructed without a result store.
	ErrStoreNotConfigured = errors.New(storeNotConfiguredMessageConstant)
)

// AuditInvocationError reports an audit that could not be started.
type AuditInvocationError struct {
	Cause error
}

// Error names the operating system failure.
func (invocationError AuditInvocationError) Error() string {
	return fmt.Sprintf(auditInvocationErrorTemplateConstant, invocationError.Cause)
}

// Unwrap exposes the underlying failure.
func (invocationError AuditInvocationError) Unwrap() error {
	return invocationError.Cause
}

// Service runs audits and fixes and remembers the last successful audit.
type Service struct {
	client AuditClient
	store  *ResultStore
	logger *zap.Logger
}

// NewService constructs a Service. A nil logger disables logging.
func NewService(client AuditClient, store *ResultStore, logger *zap.Logger) (*Service, error) {
	if client == nil {
		return nil, ErrClientNotConfigured
	}
	if store == nil {
		return nil, ErrStoreNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, store: store, logger: logger}, nil
}

// RunAudit runs openclaw security audit, scores the report, and stores the result.
// A non-zero exit from the audit is expected when findings exist and is not an error.
func (service *Service) RunAudit(executionContext context.Context, deep bool) (AuditResult, error) {
	executionResult, executionError := service.client.SecurityAudit(executionContext, deep)
	if executionError != nil {
		invocationError := AuditInvocationError{Cause: rootInvocationCause(executionError)}
		service.logger.Error(auditInvocationLogMessageConstant, zap.Bool(logFieldDeepConstant, deep), zap.Error(executionError))
		return AuditResult{}, invocationError
	}

	report, parseError := ParseReport(executionResult.StandardOutput, executionResult.StandardError)
	if parseError != nil {
		service.logger.Warn(auditParseFailedLogMessageConstant,
			zap.Bool(logFieldDeepConstant, deep),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.Error(parseError),
		)
		return AuditResult{}, parseError
	}

	result := BuildAuditResult(report)
	service.store.Store(result)

	service.logger.Info(auditCompletedLogMessageConstant,
		zap.Bool(logFieldDeepConstant, deep),
		zap.Int(logFieldScoreConstant, result.Score),
		zap.String(logFieldLabelConstant, result.Label),
		zap.Int(logFieldCriticalConstant, result.Critical),
		zap.Int(logFieldWarnConstant, result.Warn),
		zap.Int(logFieldInfoConstant, result.Info),
	)
	return result, nil
}

// RunFix runs openclaw security audit --fix. It never changes the stored audit result.
func (service *Service) RunFix(executionContext context.Context) FixOutcome {
	executionResult, executionError := service.client.SecurityFix(executionContext)
	if executionError != nil {
		service.logger.Error(fixFailedLogMessageConstant, zap.Error(executionError))
		return FixOutcome{Success: false, Message: rootInvocationCause(executionError).Error()}
	}

	if executionResult.ExitCode == 0 {
		service.logger.Info(fixCompletedLogMessageConstant)
		return FixOutcome{Success: true, Message: strings.TrimSpace(executionResult.StandardOutput)}
	}

	service.logger.Warn(fixFailedLogMessageConstant, zap.Int(logFieldExitCodeConstant, executionResult.ExitCode))
	return FixOutcome{Success: false, Message: joinOutput(executionResult.StandardError, executionResult.StandardOutput)}
}

// LastAudit returns the most recent successful audit, if any.
func (service *Service) LastAudit() (AuditResult, bool) {
	return service.store.Load()
}

// BuildAuditResult scores a parsed report.
func BuildAuditResult(report AuditReport) AuditResult {
	score := ComputeScore(report.Summary)
	findings := cloneFindings(report.Findings)
	if findings == nil {
		findings = []Finding{}
	}
	return AuditResult{
		Score:    score,
		Label:    ScoreLabel(score),
		Critical: report.Summary.Critical,
		Warn:     report.Summary.Warn,
		Info:     report.Summary.Info,
		Message:  fmt.Sprintf(auditMessageTemplateConstant, report.Summary.Critical, report.Summary.Warn, report.Summary.Info),
		Findings: findings,
	}
}

// rootInvocationCause strips client and executor wrapping down to the operating system error.
func rootInvocationCause(executionError error) error {
	var commandExecutionError execshell.CommandExecutionError
	if errors.As(executionError, &commandExecutionError) && commandExecutionError.Cause != nil {
		return commandExecutionError.Cause
	}
	return executionError
}

func joinOutput(parts ...string) string {
	trimmedParts := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmedPart := strings.TrimSpace(part)
		if len(trimmedPart) == 0 {
			continue
		}
		trimmedParts = append(trimmedParts, trimmedPart)
	}
	return strings.Join(trimmedParts, outputSeparatorConstant)
}
