// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RunWithSpinner runs task while a spinner labelled label is drawn on out.
// When out is not a terminal the task runs without any output. ctrl+c
// cancels the task's context and waits for it to return.
func RunWithSpinner[T any](ctx context.Context, out io.Writer, label string, task func(ctx context.Context) (T, error)) (T, error) {
	if !IsTerminal(out) {
		return task(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newSpinnerModel(label, cancel, func() (any, error) {
		return task(ctx)
	})

	var zero T
	final, err := tea.NewProgram(model, tea.WithOutput(out)).Run()
	if err != nil {
		return zero, err
	}
	result, ok := final.(spinnerModel)
	if !ok {
		return zero, tea.ErrProgramKilled
	}
	value, _ := result.value.(T)
	return value, result.err
}

type spinnerModel struct {
	spinner spinner.Model
	label   string

	run    func() (any, error)
	cancel context.CancelFunc

	value any
	err   error
	done  bool
}

func newSpinnerModel(label string, cancel context.CancelFunc, run func() (any, error)) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return spinnerModel{spinner: s, label: label, run: run, cancel: cancel}
}

func (m spinnerModel) Init() tea.Cmd {
	run := m.run
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		value, err := run()
		return taskDoneMsg{value: value, err: err}
	})
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case taskDoneMsg:
		m.value, m.err, m.done = msg.value, msg.err, true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
			m.label = "stopping..."
		}
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label + helpStyle.Render("  ctrl+c: cancel") + "\n"
}
