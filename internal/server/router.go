package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/temirov/clawsetup/internal/install"
	"github.com/temirov/clawsetup/internal/openclaw"
	"github.com/temirov/clawsetup/internal/security"
)

const (
	apiRoutePrefixConstant          = "/api"
	configPathRouteConstant         = "/config/path"
	configValueRouteConstant        = "/config/value"
	installNodeRouteConstant        = "/install/node"
	installOpenClawRouteConstant    = "/install/openclaw"
	installPathRouteConstant        = "/install/path"
	securityAuditRouteConstant      = "/security/audit"
	securityLastAuditRouteConstant  = "/security/audit/last"
	securityFixRouteConstant        = "/security/fix"
	eventsRouteConstant             = "/events"
	pathQueryParameterConstant      = "path"
	deepQueryParameterConstant      = "deep"
	errorFieldConstant              = "error"
	invalidBodyMessageConstant      = "request body must be a JSON object with path and value"
	invalidDeepTemplateConstant     = "deep must be a boolean, got %q"
	requestLogMessageConstant       = "HTTP request"
	logFieldMethodConstant          = "method"
	logFieldRouteConstant           = "path"
	logFieldStatusConstant          = "status"
	logFieldDurationConstant        = "duration"
	logFieldRequestIdentifierConst  = "request_id"
	handlerFailureLogMessageConst   = "HTTP handler failed"
	configuredRoutesLogMessageConst = "HTTP routes configured"
)

// AuditService runs and remembers security audits.
type AuditService interface {
	RunAudit(executionContext context.Context, deep bool) (security.AuditResult, error)
	RunFix(executionContext context.Context) security.FixOutcome
	LastAudit() (security.AuditResult, bool)
}

// InstallService checks and installs the runtime prerequisites.
type InstallService interface {
	CheckNode(executionContext context.Context) install.NodeCheckResult
	CheckCLI(executionContext context.Context) install.CLICheckResult
	InstallNode(executionContext context.Context) (string, error)
	InstallCLI(executionContext context.Context) (string, error)
	EnsurePath(executionContext context.Context) (string, error)
}

// ConfigValueService reads and writes openclaw configuration values.
type ConfigValueService interface {
	GetConfigValue(executionContext context.Context, path string) (string, error)
	SetConfigValue(executionContext context.Context, path string, value string) error
}

// ConfigPathResolver locates the openclaw configuration file.
type ConfigPathResolver interface {
	ResolveConfigPath() (string, error)
}

// RouterDependencies collects the services exposed over HTTP. A nil Events handler
// leaves the websocket route unregistered.
type RouterDependencies struct {
	Logger   *zap.Logger
	Audit    AuditService
	Install  InstallService
	Config   ConfigValueService
	Resolver ConfigPathResolver
	Events   http.Handler
}

// ConfigValuePayload is the request and response body of the config value routes.
type ConfigValuePayload struct {
	Path  string `json:"path"`
	Value string `json:"value"`
}

// ConfigPathResponse carries the resolved configuration file location.
type ConfigPathResponse struct {
	Path string `json:"path"`
}

// MessageResponse carries the human-readable outcome of an installation step.
type MessageResponse struct {
	Message string `json:"message"`
}

type handlers struct {
	logger       *zap.Logger
	dependencies RouterDependencies
}

// NewRouter builds the chi router serving the installer API.
func NewRouter(dependencies RouterDependencies) http.Handler {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	routeHandlers := &handlers{logger: logger, dependencies: dependencies}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(requestLogger(logger))

	router.Route(apiRoutePrefixConstant, func(apiRouter chi.Router) {
		apiRouter.Get(configPathRouteConstant, routeHandlers.getConfigPath)
		apiRouter.Get(configValueRouteConstant, routeHandlers.getConfigValue)
		apiRouter.Put(configValueRouteConstant, routeHandlers.putConfigValue)

		apiRouter.Get(installNodeRouteConstant, routeHandlers.checkNode)
		apiRouter.Post(installNodeRouteConstant, routeHandlers.installNode)
		apiRouter.Get(installOpenClawRouteConstant, routeHandlers.checkCLI)
		apiRouter.Post(installOpenClawRouteConstant, routeHandlers.installCLI)
		apiRouter.Post(installPathRouteConstant, routeHandlers.ensurePath)

		apiRouter.Post(securityAuditRouteConstant, routeHandlers.runAudit)
		apiRouter.Get(securityLastAuditRouteConstant, routeHandlers.lastAudit)
		apiRouter.Post(securityFixRouteConstant, routeHandlers.runFix)

		if dependencies.Events != nil {
			apiRouter.Handle(eventsRouteConstant, dependencies.Events)
		}
	})

	logger.Debug(configuredRoutesLogMessageConst)
	return router
}

func (routeHandlers *handlers) getConfigPath(responseWriter http.ResponseWriter, request *http.Request) {
	configPath, resolveError := routeHandlers.dependencies.Resolver.ResolveConfigPath()
	if resolveError != nil {
		routeHandlers.renderError(responseWriter, request, http.StatusInternalServerError, resolveError)
		return
	}
	render.JSON(responseWriter, request, ConfigPathResponse{Path: configPath})
}

func (routeHandlers *handlers) getConfigValue(responseWriter http.ResponseWriter, request *http.Request) {
	path := request.URL.Query().Get(pathQueryParameterConstant)
	value, getError := routeHandlers.dependencies.Config.GetConfigValue(commandContext(request), path)
	if getError != nil {
		routeHandlers.renderError(responseWriter, request, statusForError(getError), getError)
		return
	}
	render.JSON(responseWriter, request, ConfigValuePayload{Path: path, Value: value})
}

func (routeHandlers *handlers) putConfigValue(responseWriter http.ResponseWriter, request *http.Request) {
	var payload ConfigValuePayload
	if decodeError := render.DecodeJSON(request.Body, &payload); decodeError != nil {
		routeHandlers.renderError(responseWriter, request, http.StatusBadRequest, errors.New(invalidBodyMessageConstant))
		return
	}
	if setError := routeHandlers.dependencies.Config.SetConfigValue(commandContext(request), payload.Path, payload.Value); setError != nil {
		routeHandlers.renderError(responseWriter, request, statusForError(setError), setError)
		return
	}
	render.JSON(responseWriter, request, payload)
}

func (routeHandlers *handlers) checkNode(responseWriter http.ResponseWriter, request *http.Request) {
	render.JSON(responseWriter, request, routeHandlers.dependencies.Install.CheckNode(commandContext(request)))
}

func (routeHandlers *handlers) checkCLI(responseWriter http.ResponseWriter, request *http.Request) {
	render.JSON(responseWriter, request, routeHandlers.dependencies.Install.CheckCLI(commandContext(request)))
}

func (routeHandlers *handlers) installNode(responseWriter http.ResponseWriter, request *http.Request) {
	routeHandlers.renderMessage(responseWriter, request, routeHandlers.dependencies.Install.InstallNode)
}

func (routeHandlers *handlers) installCLI(responseWriter http.ResponseWriter, request *http.Request) {
	routeHandlers.renderMessage(responseWriter, request, routeHandlers.dependencies.Install.InstallCLI)
}

func (routeHandlers *handlers) ensurePath(responseWriter http.ResponseWriter, request *http.Request) {
	routeHandlers.renderMessage(responseWriter, request, routeHandlers.dependencies.Install.EnsurePath)
}

func (routeHandlers *handlers) runAudit(responseWriter http.ResponseWriter, request *http.Request) {
	deep := false
	if rawDeep := strings.TrimSpace(request.URL.Query().Get(deepQueryParameterConstant)); len(rawDeep) > 0 {
		parsedDeep, parseError := strconv.ParseBool(rawDeep)
		if parseError != nil {
			routeHandlers.renderError(responseWriter, request, http.StatusBadRequest, invalidDeepError(rawDeep))
			return
		}
		deep = parsedDeep
	}

	result, auditError := routeHandlers.dependencies.Audit.RunAudit(commandContext(request), deep)
	if auditError != nil {
		routeHandlers.renderError(responseWriter, request, statusForError(auditError), auditError)
		return
	}
	render.JSON(responseWriter, request, result)
}

func (routeHandlers *handlers) lastAudit(responseWriter http.ResponseWriter, request *http.Request) {
	result, found := routeHandlers.dependencies.Audit.LastAudit()
	if !found {
		render.NoContent(responseWriter, request)
		return
	}
	render.JSON(responseWriter, request, result)
}

func (routeHandlers *handlers) runFix(responseWriter http.ResponseWriter, request *http.Request) {
	outcome := routeHandlers.dependencies.Audit.RunFix(commandContext(request))
	if !outcome.Success {
		routeHandlers.renderError(responseWriter, request, http.StatusBadGateway, errors.New(outcome.Message))
		return
	}
	render.JSON(responseWriter, request, outcome)
}

func (routeHandlers *handlers) renderMessage(responseWriter http.ResponseWriter, request *http.Request, operation func(context.Context) (string, error)) {
	message, operationError := operation(commandContext(request))
	if operationError != nil {
		routeHandlers.renderError(responseWriter, request, http.StatusInternalServerError, operationError)
		return
	}
	render.JSON(responseWriter, request, MessageResponse{Message: message})
}

// commandContext keeps request values but drops cancellation, so a client
// disconnect does not kill a running command. tools.process.timeout bounds it.
func commandContext(request *http.Request) context.Context {
	return context.WithoutCancel(request.Context())
}

func (routeHandlers *handlers) renderError(responseWriter http.ResponseWriter, request *http.Request, status int, failure error) {
	routeHandlers.logger.Warn(
		handlerFailureLogMessageConst,
		zap.String(logFieldRouteConstant, request.URL.Path),
		zap.Int(logFieldStatusConstant, status),
		zap.Error(failure),
	)
	render.Status(request, status)
	render.JSON(responseWriter, request, map[string]string{errorFieldConstant: failure.Error()})
}

func invalidDeepError(rawDeep string) error {
	return fmt.Errorf(invalidDeepTemplateConstant, rawDeep)
}

func statusForError(failure error) int {
	var invalidInputError openclaw.InvalidInputError
	if errors.As(failure, &invalidInputError) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
			startTime := time.Now()
			wrappedWriter := middleware.NewWrapResponseWriter(responseWriter, request.ProtoMajor)
			next.ServeHTTP(wrappedWriter, request)
			logger.Debug(
				requestLogMessageConstant,
				zap.String(logFieldMethodConstant, request.Method),
				zap.String(logFieldRouteConstant, request.URL.Path),
				zap.Int(logFieldStatusConstant, wrappedWriter.Status()),
				zap.Duration(logFieldDurationConstant, time.Since(startTime)),
				zap.String(logFieldRequestIdentifierConst, middleware.GetReqID(request.Context())),
			)
		})
	}
}
