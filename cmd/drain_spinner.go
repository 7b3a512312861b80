package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type drainDoneMsg struct {
	err error
}

type drainSpinnerModel struct {
	spinner spinner.Model
	label   string
	drain   tea.Cmd
	err     error
	done    bool
}

func newDrainSpinnerModel(label string, drain tea.Cmd) drainSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return drainSpinnerModel{
		spinner: s,
		label:   label,
		drain:   drain,
	}
}

func (m drainSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.drain)
}

func (m drainSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case drainDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m drainSpinnerModel) View() string {
	if m.done {
		return ""
	}

	return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
}

func runDrainSpinner(ctx context.Context, output io.Writer, label string, drain func(context.Context) error) error {
	drainCmd := func() tea.Msg {
		return drainDoneMsg{err: drain(ctx)}
	}

	p := tea.NewProgram(
		newDrainSpinnerModel(label, drainCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(drainSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
