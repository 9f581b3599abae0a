package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog installs the default text handler for the process.
// verbose enables debug output, which includes every suppressed
// record and every skipped assembly stage.
func InitSlog(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
