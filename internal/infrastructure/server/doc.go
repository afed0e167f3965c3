// Package server wires configuration, the filemanager adapter, middleware
// and routes into an HTTP server with graceful shutdown.
package server
