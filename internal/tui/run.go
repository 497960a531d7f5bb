package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"tarediiran-industries.com/trainbot/internal/common"
)

// Run blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, chat ChatState, trains TrainState, notifier *common.Notifier) error {
	updates := notifier.Subscribe()
	defer notifier.Unsubscribe(updates)

	program := tea.NewProgram(
		NewModel(chat, trains, updates),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
