package commands

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/config"
)

// withApp loads configuration, opens the library for the duration of fn and
// closes it afterwards so pending writes land before the process exits.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Service) error) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := slog.Default()
	if lo.Level == "" {
		log = lo.Setup(cfg.LogLevel)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	svc, err := app.New(ctx, cfg, app.WithLogger(log))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, svc)
}
