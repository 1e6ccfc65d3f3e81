package hrportal

import (
	"sync"
)

// Navigator is the shell's router as seen by the gateway. When a refresh
// fails the gateway signs out and asks the navigator to show the sign-in
// route, passing the URL the user was on.
type Navigator interface {
	// CurrentURL returns the URL the user is viewing.
	CurrentURL() string
	// Navigate moves to target. returnURL is the destination to resume after
	// sign-in, or "".
	Navigate(target, returnURL string)
}

// NopNavigator ignores navigation. It is the default for headless callers
// such as the CLI.
type NopNavigator struct{}

func (NopNavigator) CurrentURL() string      { return "" }
func (NopNavigator) Navigate(string, string) {}

// RecordingNavigator remembers the URL it is on and every navigation it was
// asked to perform.
type RecordingNavigator struct {
	mu      sync.Mutex
	current string
	visits  []Navigation
	notify  chan Navigation
}

// Navigation is one recorded Navigate call.
type Navigation struct {
	Target    string
	ReturnURL string
}

// NewRecordingNavigator starts at current. Each Navigate is also sent on the
// channel returned by Navigations when there is room.
func NewRecordingNavigator(current string) *RecordingNavigator {
	return &RecordingNavigator{current: current, notify: make(chan Navigation, 16)}
}

func (n *RecordingNavigator) CurrentURL() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// SetCurrentURL moves the user to u without recording a navigation.
func (n *RecordingNavigator) SetCurrentURL(u string) {
	n.mu.Lock()
	n.current = u
	n.mu.Unlock()
}

func (n *RecordingNavigator) Navigate(target, returnURL string) {
	nav := Navigation{Target: target, ReturnURL: returnURL}
	n.mu.Lock()
	n.current = target
	n.visits = append(n.visits, nav)
	n.mu.Unlock()

	select {
	case n.notify <- nav:
	default:
	}
}

// Visits returns every recorded navigation in order.
func (n *RecordingNavigator) Visits() []Navigation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Navigation(nil), n.visits...)
}

// Navigations streams navigations as they happen.
func (n *RecordingNavigator) Navigations() <-chan Navigation {
	return n.notify
}
