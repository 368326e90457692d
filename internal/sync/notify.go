package sync

import (
	tea "github.com/charmbracelet/bubbletea"
)

// StoreChangedMsg is a tea.Msg sent when a store's state changed.
type StoreChangedMsg struct {
	Name string
}

// WaitForChange returns a tea.Cmd that blocks until ch fires and then
// reports a StoreChangedMsg for name. Re-issue it after every message.
func WaitForChange(name string, ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return StoreChangedMsg{Name: name}
	}
}
