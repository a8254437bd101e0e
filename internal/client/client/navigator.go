package client

import "sync"

// Navigator is the boundary to the screen router. The gateway uses it only to
// send the user to the login screen when the session has expired.
type Navigator interface {
	CurrentPath() string
	Redirect(path string)
}

// NopNavigator never navigates. It is the default for headless callers.
type NopNavigator struct{}

func (NopNavigator) CurrentPath() string { return "" }
func (NopNavigator) Redirect(string)     {}

// PathNavigator remembers the current screen path in memory.
type PathNavigator struct {
	mu         sync.Mutex
	path       string
	onRedirect func(path string)
}

// NewPathNavigator starts at initial. onRedirect, if not nil, is invoked after
// every redirect.
func NewPathNavigator(initial string, onRedirect func(path string)) *PathNavigator {
	return &PathNavigator{path: initial, onRedirect: onRedirect}
}

func (n *PathNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

// Navigate changes the current path without triggering onRedirect.
func (n *PathNavigator) Navigate(path string) {
	n.mu.Lock()
	n.path = path
	n.mu.Unlock()
}

func (n *PathNavigator) Redirect(path string) {
	n.Navigate(path)
	if n.onRedirect != nil {
		n.onRedirect(path)
	}
}
