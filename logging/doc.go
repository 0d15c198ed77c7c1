// Package logging provides a minimal logging interface and adapters for
// Roundtable.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the loop, flow and tool layers use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - RoundtableLogger with contextual helpers for runs, turns and tools
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	loop, err := engine.New(registry, conv, func(o *engine.Options) {
//		o.Logger = logger
//	})
//
// The design intentionally keeps the interface minimal to avoid vendor
// lock-in while supporting structured logging where available.
package logging
