// Package main runs the file-manager connector server.
//
// Configuration comes from the environment (12-factor), with a few CLI
// flags on top and the connector file named by FM_CONFIG:
//
//	PORT, HOST            listen address (default 0.0.0.0:3000)
//	FM_CONFIG             filemanager.config.js (JSON, YAML or TOML)
//	FM_ROUTE              connector route (default /fm)
//	FM_FILE_ROOT          overrides options.fileRoot
//	FM_UPLOAD_DIR         staging directory for uploads
//	FM_PATH_LOCKS         serialize mutations per path (default true)
//	STATIC_DIR            serve the file manager UI from this directory
//	LOG_LEVEL, LOG_DEV    logging
//	RATE_LIMIT_*          per-client rate limiting
//
// Usage:
//
//	./server -config public/Filemanager/scripts/filemanager.config.js -root /srv/files
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
