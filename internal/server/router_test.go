package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/clawsetup/internal/install"
	"github.com/temirov/clawsetup/internal/openclaw"
	"github.com/temirov/clawsetup/internal/security"
	"github.com/temirov/clawsetup/internal/server"
)

type stubAuditService struct {
	result        security.AuditResult
	auditError    error
	fixOutcome    security.FixOutcome
	last          *security.AuditResult
	requestedDeep []bool
}

func (service *stubAuditService) RunAudit(_ context.Context, deep bool) (security.AuditResult, error) {
	service.requestedDeep = append(service.requestedDeep, deep)
	if service.auditError != nil {
		return security.AuditResult{}, service.auditError
	}
	stored := service.result
	service.last = &stored
	return service.result, nil
}

func (service *stubAuditService) RunFix(context.Context) security.FixOutcome {
	return service.fixOutcome
}

func (service *stubAuditService) LastAudit() (security.AuditResult, bool) {
	if service.last == nil {
		return security.AuditResult{}, false
	}
	return *service.last, true
}

type stubInstallService struct {
	nodeResult   install.NodeCheckResult
	cliResult    install.CLICheckResult
	message      string
	installError error
}

func (service *stubInstallService) CheckNode(context.Context) install.NodeCheckResult {
	return service.nodeResult
}

func (service *stubInstallService) CheckCLI(context.Context) install.CLICheckResult {
	return service.cliResult
}

func (service *stubInstallService) InstallNode(context.Context) (string, error) {
	return service.message, service.installError
}

func (service *stubInstallService) InstallCLI(context.Context) (string, error) {
	return service.message, service.installError
}

func (service *stubInstallService) EnsurePath(context.Context) (string, error) {
	return service.message, service.installError
}

type stubConfigService struct {
	values map[string]string
}

func (service *stubConfigService) GetConfigValue(_ context.Context, path string) (string, error) {
	if len(strings.TrimSpace(path)) == 0 {
		return "", openclaw.InvalidInputError{FieldName: "path", Message: "is empty"}
	}
	return service.values[path], nil
}

func (service *stubConfigService) SetConfigValue(_ context.Context, path string, value string) error {
	if len(strings.TrimSpace(path)) == 0 {
		return openclaw.InvalidInputError{FieldName: "path", Message: "is empty"}
	}
	service.values[path] = value
	return nil
}

type stubResolver struct {
	path string
}

func (resolver stubResolver) ResolveConfigPath() (string, error) {
	return resolver.path, nil
}

type routerFixture struct {
	audit   *stubAuditService
	install *stubInstallService
	config  *stubConfigService
	handler http.Handler
}

func newRouterFixture() *routerFixture {
	fixture := &routerFixture{
		audit:   &stubAuditService{},
		install: &stubInstallService{},
		config:  &stubConfigService{values: map[string]string{}},
	}
	fixture.handler = server.NewRouter(server.RouterDependencies{
		Audit:    fixture.audit,
		Install:  fixture.install,
		Config:   fixture.config,
		Resolver: stubResolver{path: "/home/user/.openclaw/openclaw.json"},
	})
	return fixture
}

func (fixture *routerFixture) serve(method string, target string, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, target, strings.NewReader(body))
	if len(body) > 0 {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	fixture.handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody(testInstance *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	testInstance.Helper()
	var decoded map[string]any
	require.NoError(testInstance, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return decoded
}

func TestLastAuditIsEmptyUntilAnAuditRuns(testInstance *testing.T) {
	fixture := newRouterFixture()
	fixture.audit.result = security.AuditResult{Score: 73, Label: security.LabelReviewRecommended, Critical: 1, Info: 2, Findings: []security.Finding{}}

	emptyResponse := fixture.serve(http.MethodGet, "/api/security/audit/last", "")
	require.Equal(testInstance, http.StatusNoContent, emptyResponse.Code)

	auditResponse := fixture.serve(http.MethodPost, "/api/security/audit?deep=true", "")
	require.Equal(testInstance, http.StatusOK, auditResponse.Code)
	require.Equal(testInstance, float64(73), decodeBody(testInstance, auditResponse)["score"])
	require.Equal(testInstance, []bool{true}, fixture.audit.requestedDeep)

	lastResponse := fixture.serve(http.MethodGet, "/api/security/audit/last", "")
	require.Equal(testInstance, http.StatusOK, lastResponse.Code)
	lastBody := decodeBody(testInstance, lastResponse)
	require.Equal(testInstance, security.LabelReviewRecommended, lastBody["label"])
	require.Equal(testInstance, []any{}, lastBody["findings"])
}

func TestAuditRouteStatuses(testInstance *testing.T) {
	testCases := []struct {
		name           string
		target         string
		auditError     error
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "invalid_deep",
			target:         "/api/security/audit?deep=maybe",
			expectedStatus: http.StatusBadRequest,
			expectedError:  `deep must be a boolean, got "maybe"`,
		},
		{
			name:           "parse_failure",
			target:         "/api/security/audit",
			auditError:     &security.ParseError{StandardOutput: "nope", StandardError: ""},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Could not parse audit JSON. stdout: nope stderr: ",
		},
		{
			name:           "invocation_failure",
			target:         "/api/security/audit",
			auditError:     security.AuditInvocationError{Cause: errors.New("executable file not found")},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Failed to run openclaw: executable file not found",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newRouterFixture()
			fixture.audit.auditError = testCase.auditError

			response := fixture.serve(http.MethodPost, testCase.target, "")
			require.Equal(testInstance, testCase.expectedStatus, response.Code)
			require.Equal(testInstance, testCase.expectedError, decodeBody(testInstance, response)["error"])
		})
	}
}

func TestFixRoute(testInstance *testing.T) {
	fixture := newRouterFixture()
	fixture.audit.fixOutcome = security.FixOutcome{Success: true, Message: "Applied 2 fixes"}

	successResponse := fixture.serve(http.MethodPost, "/api/security/fix", "")
	require.Equal(testInstance, http.StatusOK, successResponse.Code)
	require.Equal(testInstance, true, decodeBody(testInstance, successResponse)["success"])

	fixture.audit.fixOutcome = security.FixOutcome{Success: false, Message: "permission denied"}
	failureResponse := fixture.serve(http.MethodPost, "/api/security/fix", "")
	require.Equal(testInstance, http.StatusBadGateway, failureResponse.Code)
	require.Equal(testInstance, "permission denied", decodeBody(testInstance, failureResponse)["error"])
}

func TestConfigRoutes(testInstance *testing.T) {
	fixture := newRouterFixture()

	pathResponse := fixture.serve(http.MethodGet, "/api/config/path", "")
	require.Equal(testInstance, http.StatusOK, pathResponse.Code)
	require.Equal(testInstance, "/home/user/.openclaw/openclaw.json", decodeBody(testInstance, pathResponse)["path"])

	putResponse := fixture.serve(http.MethodPut, "/api/config/value", `{"path":"agent.model","value":"opus"}`)
	require.Equal(testInstance, http.StatusOK, putResponse.Code)
	require.Equal(testInstance, "opus", fixture.config.values["agent.model"])

	getResponse := fixture.serve(http.MethodGet, "/api/config/value?path=agent.model", "")
	require.Equal(testInstance, http.StatusOK, getResponse.Code)
	require.Equal(testInstance, "opus", decodeBody(testInstance, getResponse)["value"])

	blankResponse := fixture.serve(http.MethodGet, "/api/config/value?path=", "")
	require.Equal(testInstance, http.StatusBadRequest, blankResponse.Code)
	require.Equal(testInstance, "path is empty", decodeBody(testInstance, blankResponse)["error"])

	malformedResponse := fixture.serve(http.MethodPut, "/api/config/value", `[1,2`)
	require.Equal(testInstance, http.StatusBadRequest, malformedResponse.Code)
}

func TestInstallRoutes(testInstance *testing.T) {
	fixture := newRouterFixture()
	major := 22
	fixture.install.nodeResult = install.NodeCheckResult{Found: true, Version: "v22.3.0", Major: &major, OK: true, Message: "Node v22.3.0 (OK)"}
	fixture.install.cliResult = install.CLICheckResult{Found: true, Version: "1.4.0", Message: "OpenClaw 1.4.0"}
	fixture.install.message = "PATH already contains npm bin"

	nodeResponse := fixture.serve(http.MethodGet, "/api/install/node", "")
	require.Equal(testInstance, http.StatusOK, nodeResponse.Code)
	require.Equal(testInstance, float64(22), decodeBody(testInstance, nodeResponse)["major"])

	cliResponse := fixture.serve(http.MethodGet, "/api/install/openclaw", "")
	require.Equal(testInstance, "OpenClaw 1.4.0", decodeBody(testInstance, cliResponse)["message"])

	pathResponse := fixture.serve(http.MethodPost, "/api/install/path", "")
	require.Equal(testInstance, http.StatusOK, pathResponse.Code)
	require.Equal(testInstance, "PATH already contains npm bin", decodeBody(testInstance, pathResponse)["message"])

	fixture.install.installError = install.InstallError{Step: "winget", Message: "winget exited with code: 1"}
	failedResponse := fixture.serve(http.MethodPost, "/api/install/node", "")
	require.Equal(testInstance, http.StatusInternalServerError, failedResponse.Code)
	require.Equal(testInstance, "winget exited with code: 1", decodeBody(testInstance, failedResponse)["error"])
}

func TestEventsRouteIsOptional(testInstance *testing.T) {
	fixture := newRouterFixture()
	response := fixture.serve(http.MethodGet, "/api/events", "")
	require.Equal(testInstance, http.StatusNotFound, response.Code)
}
