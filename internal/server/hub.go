package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/temirov/clawsetup/internal/execshell"
)

// Event types published by the hub.
const (
	EventTypeCommandStarted   = "command.started"
	EventTypeCommandCompleted = "command.completed"
	EventTypeCommandFailed    = "command.failed"
)

const (
	clientSendBufferSizeConstant     = 64
	writeTimeoutConstant             = 10 * time.Second
	clientConnectedLogMessage        = "Event stream client connected"
	clientDisconnectedLogMessage     = "Event stream client disconnected"
	upgradeFailedLogMessage          = "Event stream upgrade failed"
	marshalFailedLogMessage          = "Event could not be encoded"
	messageDroppedLogMessage         = "Event dropped for slow client"
	logFieldEventTypeConstant        = "event_type"
	logFieldConnectedClientsConstant = "connected_clients"
)

// EventMessage is the JSON document sent to websocket clients for each command event.
type EventMessage struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Command   string    `json:"command"`
	Arguments []string  `json:"arguments"`
	Message   string    `json:"message"`
	ExitCode  *int      `json:"exit_code,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type eventClient struct {
	connection *websocket.Conn
	send       chan []byte
}

// EventHub fans command events out to connected websocket clients. It implements
// execshell.CommandEventObserver and never blocks the command that produced an event.
type EventHub struct {
	logger      *zap.Logger
	upgrader    websocket.Upgrader
	formatter   execshell.CommandMessageFormatter
	idGenerator func() string
	clock       func() time.Time
	mutex       sync.Mutex
	clients     map[*eventClient]struct{}
}

// NewEventHub constructs an EventHub. A nil logger disables logging.
func NewEventHub(logger *zap.Logger) *EventHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventHub{
		logger:      logger,
		upgrader:    websocket.Upgrader{},
		formatter:   execshell.CommandMessageFormatter{},
		idGenerator: uuid.NewString,
		clock:       time.Now,
		clients:     make(map[*eventClient]struct{}),
	}
}

// CommandStarted implements execshell.CommandEventObserver.
func (hub *EventHub) CommandStarted(command execshell.ShellCommand) {
	hub.publish(EventTypeCommandStarted, command, hub.formatter.BuildStartedMessage(command), nil)
}

// CommandCompleted implements execshell.CommandEventObserver.
func (hub *EventHub) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	exitCode := result.ExitCode
	message := hub.formatter.BuildSuccessMessage(command)
	if exitCode != 0 {
		message = hub.formatter.BuildFailureMessage(command, result)
	}
	hub.publish(EventTypeCommandCompleted, command, message, &exitCode)
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (hub *EventHub) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	hub.publish(EventTypeCommandFailed, command, hub.formatter.BuildExecutionFailureMessage(command, failure), nil)
}

// ServeHTTP upgrades the request to a websocket and streams events until the client disconnects.
func (hub *EventHub) ServeHTTP(responseWriter http.ResponseWriter, request *http.Request) {
	connection, upgradeError := hub.upgrader.Upgrade(responseWriter, request, nil)
	if upgradeError != nil {
		hub.logger.Warn(upgradeFailedLogMessage, zap.Error(upgradeError))
		return
	}

	client := &eventClient{connection: connection, send: make(chan []byte, clientSendBufferSizeConstant)}
	hub.register(client)

	go hub.writePump(client)
	hub.readPump(client)
}

// ClientCount reports the number of connected clients.
func (hub *EventHub) ClientCount() int {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	return len(hub.clients)
}

// Close disconnects every client.
func (hub *EventHub) Close() {
	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for client := range hub.clients {
		delete(hub.clients, client)
		close(client.send)
	}
}

func (hub *EventHub) publish(eventType string, command execshell.ShellCommand, message string, exitCode *int) {
	event := EventMessage{
		ID:        hub.idGenerator(),
		Type:      eventType,
		Command:   string(command.Name),
		Arguments: append([]string{}, command.Details.Arguments...),
		Message:   message,
		ExitCode:  exitCode,
		Timestamp: hub.clock().UTC(),
	}
	payload, marshalError := json.Marshal(event)
	if marshalError != nil {
		hub.logger.Error(marshalFailedLogMessage, zap.Error(marshalError))
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()
	for client := range hub.clients {
		select {
		case client.send <- payload:
		default:
			hub.logger.Debug(messageDroppedLogMessage, zap.String(logFieldEventTypeConstant, eventType))
		}
	}
}

func (hub *EventHub) register(client *eventClient) {
	hub.mutex.Lock()
	hub.clients[client] = struct{}{}
	connectedClients := len(hub.clients)
	hub.mutex.Unlock()
	hub.logger.Debug(clientConnectedLogMessage, zap.Int(logFieldConnectedClientsConstant, connectedClients))
}

func (hub *EventHub) unregister(client *eventClient) {
	hub.mutex.Lock()
	if _, registered := hub.clients[client]; registered {
		delete(hub.clients, client)
		close(client.send)
	}
	connectedClients := len(hub.clients)
	hub.mutex.Unlock()
	hub.logger.Debug(clientDisconnectedLogMessage, zap.Int(logFieldConnectedClientsConstant, connectedClients))
}

func (hub *EventHub) readPump(client *eventClient) {
	defer func() {
		hub.unregister(client)
		client.connection.Close()
	}()
	client.connection.SetReadDeadline(time.Time{})
	for {
		if _, _, readError := client.connection.ReadMessage(); readError != nil {
			return
		}
	}
}

func (hub *EventHub) writePump(client *eventClient) {
	defer client.connection.Close()
	for payload := range client.send {
		client.connection.SetWriteDeadline(hub.clock().Add(writeTimeoutConstant))
		if writeError := client.connection.WriteMessage(websocket.TextMessage, payload); writeError != nil {
			return
		}
	}
	client.connection.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
