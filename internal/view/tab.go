// Package view selects the active view and builds its view model from the
// conversation and train sync snapshots. It renders nothing itself.
package view

import "strings"

type Tab string

const (
	TabHome  Tab = "home"
	TabChat  Tab = "chat"
	TabTrain Tab = "train"
)

// Tabs is the navigation order.
var Tabs = []Tab{TabHome, TabChat, TabTrain}

// ParseTab maps a tab name to a Tab; unknown names select home.
func ParseTab(name string) Tab {
	switch Tab(strings.ToLower(strings.TrimSpace(name))) {
	case TabChat:
		return TabChat
	case TabTrain:
		return TabTrain
	default:
		return TabHome
	}
}

// Valid reports whether name names a tab exactly.
func Valid(name string) bool {
	switch Tab(name) {
	case TabHome, TabChat, TabTrain:
		return true
	}
	return false
}

func (t Tab) Label() string {
	switch t {
	case TabChat:
		return "Chat"
	case TabTrain:
		return "Train"
	default:
		return "Home"
	}
}

// Next cycles forward through Tabs.
func (t Tab) Next() Tab {
	return Tabs[(t.index()+1)%len(Tabs)]
}

// Prev cycles backward through Tabs.
func (t Tab) Prev() Tab {
	return Tabs[(t.index()+len(Tabs)-1)%len(Tabs)]
}

func (t Tab) index() int {
	for i, tab := range Tabs {
		if tab == t {
			return i
		}
	}
	return 0
}
