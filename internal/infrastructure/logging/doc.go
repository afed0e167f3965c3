// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for humans
//
// The connector logs one debug line per filesystem mutation and one error
// line per failure reported back to the browser.
//
// Example Usage:
//
//	logger := logging.NewOrNop(logging.DefaultConfig())
//	logger.Info("Server starting", zap.String("port", "3000"))
//	logger.Error("sending error", zap.String("message", msg))
package logging
