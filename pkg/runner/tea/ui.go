// Package teaui is a small Bubble Tea front end showing the open books as a
// tab bar.
package teaui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/reflow/truncate"

	"tableflip.dev/folio/pkg/app"
	"tableflip.dev/folio/pkg/session"
)

const maxTabLabel = 20

var (
	activeTab = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true, true, false, true).
			BorderForeground(lipgloss.Color("205"))
	inactiveTab = lipgloss.NewStyle().
			Faint(true).
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), true, true, false, true).
			BorderForeground(lipgloss.Color("241"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Model holds the tab bar state. Tabs mirror the session and are refreshed
// from session events as well as after every local action.
type Model struct {
	svc    *app.Service
	events <-chan session.Event
	keys   keyMap
	help   help.Model

	tabs    []string
	active  int
	reading *app.Reading
	status  string
	err     error
	width   int
}

type sessionMsg struct{ ev session.Event }
type eventsClosedMsg struct{}
type readingMsg struct {
	name    string
	reading *app.Reading
	err     error
}

// New returns a model over svc. events may be nil.
func New(svc *app.Service, events <-chan session.Event) Model {
	m := Model{
		svc:    svc,
		events: events,
		keys:   defaultKeys(),
		help:   help.New(),
		active: session.NoTab,
	}
	if svc != nil {
		st := svc.State()
		m.tabs, m.active = st.Tabs, st.Active
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.waitForEvent(), m.loadReading())
}

func (m Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	events := m.events
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return sessionMsg{ev: ev}
	}
}

func (m Model) loadReading() tea.Cmd {
	if m.svc == nil || m.active == session.NoTab || m.active >= len(m.tabs) {
		return nil
	}
	svc, name := m.svc, m.tabs[m.active]
	return func() tea.Msg {
		r, err := svc.Reading(name)
		return readingMsg{name: name, reading: r, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case sessionMsg:
		m.tabs, m.active = msg.ev.Tabs, msg.ev.Active
		return m, tea.Batch(m.waitForEvent(), m.loadReading())
	case eventsClosedMsg:
		m.events = nil
		return m, nil
	case readingMsg:
		// Loads finish out of order; keep only the one for the tab on screen.
		if m.active == session.NoTab || m.active >= len(m.tabs) || m.tabs[m.active] != msg.name {
			return m, nil
		}
		m.reading, m.err = msg.reading, msg.err
		return m, nil
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		if len(m.tabs) > 1 {
			m.act(m.svc.SwitchTab((m.active + 1) % len(m.tabs)))
		}
	case key.Matches(msg, m.keys.Prev):
		if len(m.tabs) > 1 {
			m.act(m.svc.SwitchTab((m.active - 1 + len(m.tabs)) % len(m.tabs)))
		}
	case key.Matches(msg, m.keys.Close):
		if m.active != session.NoTab {
			name := m.tabs[m.active]
			if err := m.svc.CloseTab(m.active); err == nil {
				m.status = "closed " + name
			} else {
				m.err = err
			}
			m.sync()
		}
	case key.Matches(msg, m.keys.PageNext):
		m.turnPage(1)
		return m, nil
	case key.Matches(msg, m.keys.PagePrev):
		m.turnPage(-1)
		return m, nil
	default:
		if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			m.act(m.svc.SwitchTab(int(s[0] - '1')))
		}
	}
	return m, m.loadReading()
}

func (m *Model) act(err error) {
	m.err = err
	m.sync()
}

func (m *Model) sync() {
	st := m.svc.State()
	m.tabs, m.active = st.Tabs, st.Active
	if m.active == session.NoTab {
		m.reading = nil
	}
}

func (m *Model) turnPage(delta int) {
	r := m.reading
	if r == nil {
		return
	}
	page := r.Resume + delta
	if page < 0 || (r.Pages > 0 && page >= r.Pages) {
		return
	}
	if err := m.svc.SetPage(r.Name, page); err != nil {
		m.err = err
		return
	}
	r.Resume = page
	m.status = ""
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n\n")

	switch {
	case len(m.tabs) == 0:
		b.WriteString("No books open. Use `folio open <name>` or `folio import <file>`.")
	case m.reading != nil:
		r := m.reading
		if r.Pages > 0 {
			fmt.Fprintf(&b, "%s\npage %d of %d", r.Name, r.Resume+1, r.Pages)
		} else {
			fmt.Fprintf(&b, "%s\nno document on disk", r.Name)
		}
		if r.Path != "" {
			b.WriteString("\n" + statusStyle.Render(r.Path))
		}
	}

	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(errStyle.Render(m.err.Error()) + "\n")
	} else if m.status != "" {
		b.WriteString(statusStyle.Render(m.status) + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) tabBar() string {
	if len(m.tabs) == 0 {
		return inactiveTab.Render("folio")
	}
	rendered := make([]string, 0, len(m.tabs))
	for i, name := range m.tabs {
		label := fmt.Sprintf("%d %s", i+1, truncate.StringWithTail(name, maxTabLabel, "…"))
		if i == m.active {
			rendered = append(rendered, activeTab.Render(label))
		} else {
			rendered = append(rendered, inactiveTab.Render(label))
		}
	}
	// Scroll tabs off the left edge until the bar fits, never past the
	// active one.
	start := 0
	for m.width > 0 && start < m.active &&
		lipgloss.Width(lipgloss.JoinHorizontal(lipgloss.Bottom, rendered[start:]...)) > m.width {
		start++
	}
	return lipgloss.JoinHorizontal(lipgloss.Bottom, rendered[start:]...)
}
