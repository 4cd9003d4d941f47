package logging

import (
	"log"
	"log/slog"
)

// StdLogger returns a *log.Logger that forwards each line to logger at level.
// It is handed to libraries that only accept the standard logger, such as
// http.Server.ErrorLog and the MCP stdio transport.
func StdLogger(logger *slog.Logger, level slog.Level) *log.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return slog.NewLogLogger(logger.Handler(), level)
}
