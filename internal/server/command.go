package server

import (
	"fmt"
	"net"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/temirov/clawsetup/internal/dependencies"
	"github.com/temirov/clawsetup/internal/execshell"
	"github.com/temirov/clawsetup/internal/install"
	"github.com/temirov/clawsetup/internal/openclaw"
	"github.com/temirov/clawsetup/internal/security"
	"github.com/temirov/clawsetup/internal/settings"
)

const (
	commandNameConstant             = "serve"
	commandShortDescriptionConstant = "Serve the installer API on a local address"
	commandLongDescriptionConstant  = "serve exposes the install, config, and security operations over HTTP and streams command events on /api/events."
	addressFlagNameConstant         = "address"
	addressFlagDescriptionConstant  = "Listen address for the HTTP API"
	listeningMessageTemplateConst   = "Listening on http://%s\n"
)

// CommandExecutor runs every external program the API can reach.
type CommandExecutor interface {
	install.CommandExecutor
}

// CommandBuilder assembles the serve cobra command.
type CommandBuilder struct {
	LoggerProvider           dependencies.LoggerProvider
	ExecutorSettingsProvider func() dependencies.ExecutorSettings
	ConfigurationProvider    func() CommandConfiguration
	InstallServiceOptions    func() []install.ServiceOption
	Executor                 CommandExecutor
	Store                    *security.ResultStore
	Resolver                 *settings.PathResolver
}

// Build constructs the serve command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandNameConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	command.Flags().String(addressFlagNameConstant, builder.resolveConfiguration().Address, addressFlagDescriptionConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	address := builder.resolveConfiguration().Address
	if addressFlag := command.Flags().Lookup(addressFlagNameConstant); addressFlag != nil && addressFlag.Changed {
		address = addressFlag.Value.String()
	}

	logger := dependencies.ResolveLogger(builder.LoggerProvider)
	hub := NewEventHub(logger)
	routerDependencies, dependenciesError := builder.resolveRouterDependencies(hub)
	if dependenciesError != nil {
		return dependenciesError
	}

	httpServer, serverError := NewServer(NewRouter(routerDependencies), hub, logger)
	if serverError != nil {
		return serverError
	}

	listener, listenError := net.Listen("tcp", address)
	if listenError != nil {
		return listenError
	}
	if _, writeError := fmt.Fprintf(command.OutOrStdout(), listeningMessageTemplateConst, listener.Addr().String()); writeError != nil {
		listener.Close()
		return writeError
	}

	executionContext, stop := signal.NotifyContext(command.Context(), os.Interrupt)
	defer stop()
	return httpServer.Serve(executionContext, listener)
}

func (builder *CommandBuilder) resolveRouterDependencies(hub *EventHub) (RouterDependencies, error) {
	logger := dependencies.ResolveLogger(builder.LoggerProvider)

	executor := builder.Executor
	if executor == nil {
		executorSettings := dependencies.ExecutorSettings{}
		if builder.ExecutorSettingsProvider != nil {
			executorSettings = builder.ExecutorSettingsProvider()
		}
		executorSettings.Observer = execshell.NewCommandEventObservers(executorSettings.Observer, hub)
		shellExecutor, executorError := dependencies.ResolveShellExecutor(logger, executorSettings)
		if executorError != nil {
			return RouterDependencies{}, executorError
		}
		executor = shellExecutor
	}

	openClawClient, clientError := openclaw.NewClient(executor)
	if clientError != nil {
		return RouterDependencies{}, clientError
	}

	store := builder.Store
	if store == nil {
		store = security.NewResultStore()
	}
	auditService, auditError := security.NewService(openClawClient, store, logger)
	if auditError != nil {
		return RouterDependencies{}, auditError
	}

	var installOptions []install.ServiceOption
	if builder.InstallServiceOptions != nil {
		installOptions = builder.InstallServiceOptions()
	}
	installService, installError := install.NewService(executor, installOptions...)
	if installError != nil {
		return RouterDependencies{}, installError
	}

	resolver := builder.Resolver
	if resolver == nil {
		resolver = settings.NewPathResolver()
	}

	return RouterDependencies{
		Logger:   logger,
		Audit:    auditService,
		Install:  installService,
		Config:   openClawClient,
		Resolver: resolver,
		Events:   hub,
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().sanitize()
}
