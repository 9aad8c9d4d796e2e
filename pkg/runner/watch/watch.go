// Package watch follows session changes made by this process and by other
// folio processes sharing the same state directory.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/printers"
)

// Watch prints the open tabs whenever they change until ctx is done.
type Watch struct {
	App     *app.Service
	Printer *printers.Printer
	Log     *slog.Logger
}

func (w *Watch) Do(ctx context.Context) error {
	log := w.Log
	if log == nil {
		log = slog.Default()
	}

	local, cancel := w.App.Session.Subscribe()
	defer cancel()

	remote, err := w.App.Watch(ctx)
	if errors.Is(err, app.ErrNoWatch) {
		log.Info("watch: storage cannot report other processes, following this one only")
	} else if err != nil {
		return err
	}

	if err := w.Printer.State(w.App.State()); err != nil {
		return err
	}
	stamp := color.New(color.Faint)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-local:
			if !ok {
				return nil
			}
			w.Printer.Message("%s", stamp.Sprint(time.Now().Format(time.TimeOnly), " ", ev.Type))
		case ev, ok := <-remote:
			if !ok {
				remote = nil
				continue
			}
			w.Printer.Message("%s", stamp.Sprint(time.Now().Format(time.TimeOnly), " changed on disk ", ev.Key))
		}
		if err := w.Printer.State(w.App.State()); err != nil {
			return err
		}
	}
}
