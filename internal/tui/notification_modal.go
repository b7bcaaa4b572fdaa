package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/viewport"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/colonyops/flypanel/internal/core/styles"
)

const (
	notifyModalWidthPct  = 65
	notifyModalMinWidth  = 60
	notifyModalMaxHeight = 30
	notifyModalMargin    = 4
	notifyModalChrome    = 6 // title + divider + help + spacing
)

// NotificationModal displays a scrollable history of every notification
// posted during this session, newest first.
type NotificationModal struct {
	viewport viewport.Model
	width    int
	height   int
}

// NewNotificationModal creates a modal showing history.
func NewNotificationModal(history []HistoryEntry, width, height int) *NotificationModal {
	modalWidth := calcNotificationModalWidth(width)
	modalHeight := min(height-notifyModalMargin, notifyModalMaxHeight)
	contentHeight := max(modalHeight-notifyModalChrome, 1)

	vp := viewport.New(
		viewport.WithWidth(modalWidth-4), // account for modal padding
		viewport.WithHeight(contentHeight),
	)

	m := &NotificationModal{
		viewport: vp,
		width:    width,
		height:   height,
	}
	m.SetHistory(history)
	return m
}

// SetHistory replaces the displayed entries.
func (m *NotificationModal) SetHistory(history []HistoryEntry) {
	if len(history) == 0 {
		m.viewport.SetContent(styles.StatusStyle.Render("No notifications"))
		return
	}

	var b strings.Builder
	for i := len(history) - 1; i >= 0; i-- {
		if i < len(history)-1 {
			b.WriteByte('\n')
		}
		b.WriteString(formatHistoryEntry(history[i]))
	}
	m.viewport.SetContent(b.String())
}

func formatHistoryEntry(e HistoryEntry) string {
	n := e.Notification
	ts := styles.HistoryTimeStyle.Render(fmt.Sprintf("%-14s", humanize.Time(n.PostedAt)))

	icon := styles.SuccessStyle.Render(styles.IconSuccess)
	if !n.Success {
		icon = styles.FailureStyle.Render(styles.IconFailure)
	}

	return fmt.Sprintf("%s %s %s %s", ts, icon, n.Text, styles.HistoryPageStyle.Render(pagePath(e.PageURL)))
}

// ScrollUp scrolls the viewport up.
func (m *NotificationModal) ScrollUp() {
	m.viewport.ScrollUp(1)
}

// ScrollDown scrolls the viewport down.
func (m *NotificationModal) ScrollDown() {
	m.viewport.ScrollDown(1)
}

// Overlay renders the notification modal centered over the background.
func (m *NotificationModal) Overlay(background string, width, height int) string {
	modalWidth := calcNotificationModalWidth(width)
	modalHeight := min(height-notifyModalMargin, notifyModalMaxHeight)

	scrollInfo := ""
	if m.viewport.TotalLineCount() > m.viewport.VisibleLineCount() {
		scrollInfo = styles.StatusStyle.Render(
			fmt.Sprintf(" (%.0f%%)", m.viewport.ScrollPercent()*100),
		)
	}

	divider := styles.DividerStyle.Render(strings.Repeat("─", max(modalWidth-6, 1)))
	modalContent := lipgloss.JoinVertical(
		lipgloss.Left,
		styles.ModalTitleStyle.Render("Notifications"+scrollInfo),
		divider,
		m.viewport.View(),
		styles.ModalHelpStyle.Render("[j/k] scroll  [esc] close"),
	)

	modal := styles.ModalStyle.
		Width(modalWidth).
		Height(max(modalHeight, 1)).
		Render(modalContent)

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(modal)

	modalW := lipgloss.Width(modal)
	modalH := lipgloss.Height(modal)
	centerX := max((width-modalW)/2, 0)
	centerY := max((height-modalH)/2, 0)
	modalLayer.X(centerX).Y(centerY).Z(1)

	compositor := lipgloss.NewCompositor(bgLayer, modalLayer)
	return compositor.Render()
}

func calcNotificationModalWidth(termWidth int) int {
	available := max(termWidth-notifyModalMargin, 1)
	target := termWidth * notifyModalWidthPct / 100
	return min(max(target, notifyModalMinWidth), available)
}
