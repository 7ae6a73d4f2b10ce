package tui

import (
	"context"

	"flowboard-cli/internal/mutate"
	"flowboard-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

func Run(dir string) error {
	applyColorProfilePreference()
	applyThemePreference()

	s := store.Store{Dir: dir}
	tasks, err := s.LoadTasks(context.Background())
	if err != nil {
		return err
	}

	coord := mutate.NewCoordinator(s, tasks)
	defer coord.Detach()

	m := newAppModel(s, coord)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
