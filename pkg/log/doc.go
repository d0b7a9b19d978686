// Package log provides the structured logging abstraction used by gravityopt.
//
// Components depend on the Logger interface only. A zerolog backed
// implementation is provided for the CLI and a no-op logger for tests:
//
//	logger, err := log.NewZerolog(log.Options{Level: "info", Format: "console"})
//	logger.Info("domains loaded", log.Int("count", n))
//
//	quiet := log.NewNoopLogger()
package log
