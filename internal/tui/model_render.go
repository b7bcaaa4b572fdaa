package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/flypanel/internal/core/styles"
)

// View renders the TUI.
func (m Model) View() tea.View {
	if m.quitting {
		return tea.NewView("")
	}
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	w, h := m.width, m.height
	if w == 0 {
		w = 80
	}
	if h == 0 {
		h = 24
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		"",
		m.renderBody(w),
		"",
		m.renderStatus(),
		styles.HelpStyle.Render(helpLine()),
	)
	content = lipgloss.NewStyle().Width(w).Height(h).Render(content)

	if m.page != nil {
		content = NewToastView(m.page.Queue.Active).Overlay(content, w, h)
	}

	switch {
	case m.modalOpen():
		if d, ok := m.page.Modal.Current(); ok {
			content = NewDialogView(d, m.modalCursor).Overlay(content, w, h)
		}
	case m.state == stateInput:
		content = m.overlayInput(content, w, h)
	case m.state == stateShowingNotifications && m.notificationModal != nil:
		content = m.notificationModal.Overlay(content, w, h)
	}

	return content
}

func (m Model) renderHeader() string {
	active := tabForPath(m.currentPath())
	rendered := make([]string, 0, len(tabs)+1)
	rendered = append(rendered, styles.TitleStyle.Render("flypanel"))
	for i, t := range tabs {
		label := t.Key + " " + t.Title
		if i == active {
			rendered = append(rendered, styles.TabActiveStyle.Render(label))
		} else {
			rendered = append(rendered, styles.TabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, rendered...)
}

func (m Model) renderBody(width int) string {
	if m.page == nil {
		if m.loading {
			return styles.StatusStyle.Render("loading " + pagePath(m.startURL))
		}
		return styles.StatusStyle.Render("no page loaded")
	}
	return renderPage(m.view, m.cursor, m.button, m.page.Queue.Lookup, width)
}

func (m Model) renderStatus() string {
	var parts []string
	if m.loading {
		parts = append(parts, m.spinner.View()+" loading")
	}
	if m.page != nil {
		parts = append(parts, pagePath(m.page.URL))
	}
	if m.status != "" {
		parts = append(parts, styles.FailureStyle.Render(m.status))
	}
	if len(m.history) > 0 {
		parts = append(parts, styles.IconBell+" "+strconv.Itoa(len(m.history)))
	}
	return styles.StatusStyle.Render(strings.Join(parts, "  "))
}

func (m Model) overlayInput(background string, width, height int) string {
	lines := []string{
		styles.FormLabelStyle.Render(m.inputForm.Label),
		styles.FormFieldFocusedStyle.Render(m.input.View()),
	}
	help := "enter submit  esc cancel"
	for i, c := range m.inputForm.Checks {
		mark := "[ ]"
		if c.Checked {
			mark = "[x]"
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s", mark, c.Label, styles.DividerStyle.Render(fmt.Sprintf("alt+%d", i+1))))
	}
	if len(m.inputForm.Checks) > 0 {
		help = "enter submit  alt+n toggle  esc cancel"
	}
	lines = append(lines, styles.ModalHelpStyle.Render(help))
	box := styles.ModalStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	bgLayer := lipgloss.NewLayer(background)
	inputLayer := lipgloss.NewLayer(box)
	inputLayer.X(max((width-lipgloss.Width(box))/2, 0)).Y(max((height-lipgloss.Height(box))/2, 0)).Z(1)

	return lipgloss.NewCompositor(bgLayer, inputLayer).Render()
}
