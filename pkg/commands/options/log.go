package options

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/config"
)

// LogOptions
type LogOptions struct {
	Level string
}

func AddLogArgs(cmd *cobra.Command, o *LogOptions) {
	cmd.PersistentFlags().StringVar(&o.Level, "log-level", "",
		"Log level: debug, info, warn or error. Overrides FOLIO_LOG_LEVEL.")
}

// Setup installs the default logger. Logs go to stderr so command output
// stays parseable.
func (o *LogOptions) Setup(fallback string) *slog.Logger {
	level := o.Level
	if level == "" {
		level = fallback
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: config.ParseLevel(level),
	}))
	slog.SetDefault(log)
	return log
}
