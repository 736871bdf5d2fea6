// Package logging provides structured logging for the printlink tools.
//
// This package wraps zap logger with convenience functions for common
// logging patterns used throughout the project. Logging is silent by
// default so CLI output stays clean; it is enabled through the
// PRINTLINK_LOG_LEVEL environment variable or an explicit Initialize call.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (request/response details)
//   - Info: Normal operations (validation attempts, entry creation)
//   - Warn: Non-fatal issues (discovery timeouts, retries by the user)
//   - Error: Failures (unreachable printers, persistence errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Printer validated",
//	    zap.String("host", "http://prusa-mini.local"),
//	    zap.String("api", "2.0.0"),
//	)
//
// # Configuration
//
// Initialize logging at startup:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
