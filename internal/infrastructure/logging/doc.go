// Package logging provides structured logging using uber/zap.
//
// Two modes are supported:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Each subsystem takes a named child logger so log lines can be traced back
// to the bridge, the bootstrap or the script engine:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	bridgeLog := logger.Named("bridge")
//	bridgeLog.Info("namespace loaded", zap.String("ns", "com.example.foo.neko-activity"))
package logging
