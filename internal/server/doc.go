// Package server exposes the installer operations over a local HTTP API and
// streams command lifecycle events to websocket clients.
package server
