package teaui

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/folio/pkg/app"
)

// Run launches the tab bar UI until the user quits.
func Run(svc *app.Service) error {
	events, cancel := svc.Session.Subscribe()
	defer cancel()

	p := tea.NewProgram(New(svc, events), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
