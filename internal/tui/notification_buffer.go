package tui

import (
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/flypanel/internal/core/infotip"
)

// HistoryEntry is a notification together with the page it was posted on.
type HistoryEntry struct {
	PageURL      string
	Notification infotip.Notification
}

// NotificationBuffer collects notifications posted from timer and transport
// goroutines and emits coalesced drain signals to the UI loop.
type NotificationBuffer struct {
	mu      sync.Mutex
	entries []HistoryEntry
	signal  chan struct{}
}

// NewNotificationBuffer constructs a buffer for async notification delivery.
func NewNotificationBuffer() *NotificationBuffer {
	return &NotificationBuffer{
		entries: make([]HistoryEntry, 0),
		signal:  make(chan struct{}, 1),
	}
}

// Push appends a notification and emits a non-blocking drain signal. Its
// signature matches panel.Options.OnNotification.
func (b *NotificationBuffer) Push(pageURL string, n infotip.Notification) {
	b.mu.Lock()
	b.entries = append(b.entries, HistoryEntry{PageURL: pageURL, Notification: n})
	b.mu.Unlock()

	select {
	case b.signal <- struct{}{}:
	default:
	}
}

// Drain returns all buffered entries and clears the buffer.
func (b *NotificationBuffer) Drain() []HistoryEntry {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.entries) == 0 {
		return nil
	}

	out := make([]HistoryEntry, len(b.entries))
	copy(out, b.entries)
	b.entries = b.entries[:0]
	return out
}

// WaitForSignal blocks until there are entries ready to drain.
func (b *NotificationBuffer) WaitForSignal() tea.Cmd {
	return func() tea.Msg {
		<-b.signal
		return drainNotificationsMsg{}
	}
}
