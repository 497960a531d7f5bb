// Package tui is the terminal front end: the home, chat and train list views
// driven by the same state containers as the web client.
package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tarediiran-industries.com/trainbot/internal/conversation"
	"tarediiran-industries.com/trainbot/internal/trainsync"
	"tarediiran-industries.com/trainbot/internal/view"
)

type ChatState interface {
	Snapshot() conversation.Snapshot
	Send(text string) bool
	SetInput(text string)
}

type TrainState interface {
	Snapshot() trainsync.State
	Seed() error
	Refresh()
}

// updateMsg is delivered after every state change ping.
type updateMsg struct{}

// Model is the bubbletea model. The active tab lives here; everything else
// is read from the state containers on each render.
type Model struct {
	tab     view.Tab
	chat    ChatState
	trains  TrainState
	updates <-chan struct{}

	input    textinput.Model
	history  viewport.Model
	spin     spinner.Model
	width    int
	height   int
	status   string
	quitting bool
}

func NewModel(chat ChatState, trains TrainState, updates <-chan struct{}) Model {
	in := textinput.New()
	in.Placeholder = view.InputPlaceholder
	in.Prompt = "> "
	in.CharLimit = 0
	in.Width = 60

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	return Model{
		tab:     view.TabHome,
		chat:    chat,
		trains:  trains,
		updates: updates,
		input:   in,
		history: viewport.New(80, 16),
		spin:    s,
	}
}

func (m Model) Tab() view.Tab {
	return m.tab
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, waitForUpdate(m.updates))
}

func waitForUpdate(updates <-chan struct{}) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return nil
		}
		return updateMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		m.history.Width = max(msg.Width-2, 20)
		m.history.Height = max(msg.Height-8, 5)
		m.refreshHistory()
		return m, nil

	case updateMsg:
		m.refreshHistory()
		return m, waitForUpdate(m.updates)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case "tab":
		return m.selectTab(m.tab.Next())
	case "shift+tab":
		return m.selectTab(m.tab.Prev())
	}

	switch m.tab {
	case view.TabChat:
		return m.handleChatKey(msg)
	case view.TabTrain:
		return m.handleTrainKey(msg)
	default:
		return m.handleHomeKey(msg)
	}
}

func (m Model) handleHomeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	home := view.BuildHomeVM(m.trains.Snapshot())

	switch msg.String() {
	case "c":
		return m.selectTab(view.TabChat)
	case "t":
		if home.SecondaryAction.Kind == view.ActionOpenTrains {
			return m.selectTab(view.TabTrain)
		}
	case "s":
		if home.SecondaryAction.Kind == view.ActionSeed {
			m.seed()
		}
	}
	return m, nil
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		if m.chat.Send(m.input.Value()) {
			m.input.SetValue("")
			m.chat.SetInput("")
		}
		return m, nil
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.chat.SetInput(m.input.Value())
	}
	return m, cmd
}

func (m Model) handleTrainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "r":
		if !m.trains.Snapshot().Seeding {
			m.seed()
		}
	case "f":
		m.trains.Refresh()
		m.status = ""
	}
	return m, nil
}

func (m *Model) seed() {
	err := m.trains.Seed()
	switch {
	case err == nil:
		m.status = ""
	case errors.Is(err, trainsync.ErrSeedInProgress):
		m.status = view.RefreshSeedingText
	default:
		m.status = err.Error()
	}
}

func (m Model) selectTab(tab view.Tab) (tea.Model, tea.Cmd) {
	m.tab = tab
	m.status = ""
	if tab == view.TabChat {
		m.refreshHistory()
		return m, m.input.Focus()
	}
	m.input.Blur()
	return m, nil
}

func (m *Model) refreshHistory() {
	if m.tab != view.TabChat {
		return
	}
	m.history.SetContent(renderMessages(view.BuildChatVM(m.chat.Snapshot()), m.history.Width))
	m.history.GotoBottom()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	page := view.Compose(m.tab, m.chat.Snapshot(), m.trains.Snapshot())
	return renderPage(m, page)
}
