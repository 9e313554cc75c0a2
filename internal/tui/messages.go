package tui

// taskDoneMsg carries the outcome of the task a spinner is waiting on.
type taskDoneMsg struct {
	value any
	err   error
}
