package tui

import (
	"context"
	"strconv"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/flypanel/internal/core/dispatch"
)

const keyCtrlC = "ctrl+c"

// handleKey processes key presses. The page's dialog takes precedence over
// every other state, matching how it overlays the page.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if m.modalOpen() {
		return m.handleDialogKey(keyStr)
	}
	switch m.state {
	case stateInput:
		return m.handleInputKey(msg, keyStr)
	case stateShowingNotifications:
		return m.handleNotificationModalKey(keyStr)
	}
	return m.handleNormalKey(keyStr)
}

func (m Model) handleDialogKey(keyStr string) (tea.Model, tea.Cmd) {
	d, ok := m.page.Modal.Current()
	if !ok {
		return m, nil
	}
	n := len(d.Labels)
	if n == 0 {
		switch keyStr {
		case keyCtrlC:
			return m.quit()
		case "esc":
			m.page.Modal.Dismiss()
		}
		return m, nil
	}

	switch keyStr {
	case keyCtrlC:
		return m.quit()
	case "left", "h", "shift+tab":
		m.modalCursor = (m.modalCursor - 1 + n) % n
	case "right", "l", "tab":
		m.modalCursor = (m.modalCursor + 1) % n
	case "enter", "space":
		m.page.Modal.Activate(m.modalCursor)
	case "y":
		m.page.Modal.Activate(0)
	case "n":
		if n > 1 {
			m.page.Modal.Activate(1)
		}
	case "esc":
		m.page.Modal.Dismiss()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyPressMsg, keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyCtrlC:
		return m.quit()
	case "esc":
		m.closeInput()
		return m, nil
	case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5", "alt+6", "alt+7", "alt+8", "alt+9":
		m.toggleCheck(int(keyStr[len(keyStr)-1] - '1'))
		return m, nil
	case "enter":
		form := m.inputForm
		value := m.input.Value()
		m.closeInput()
		if m.page == nil {
			return m, nil
		}
		m.page.Doc.SetValue(form.FieldID, value)
		return m, m.run("submit "+form.ID, func(ctx context.Context, d *dispatch.Dispatcher) error {
			var err error
			switch form.ID {
			case dispatch.SearchFormID:
				_, err = d.SendSearch(ctx)
			case dispatch.MagnetFormID:
				_, err = d.AddMagnet(ctx)
			default:
				_, err = d.SubmitForm(ctx, form.ID)
			}
			return err
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleNotificationModalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case keyCtrlC:
		return m.quit()
	case "esc", "q", "n":
		m.state = stateNormal
		m.notificationModal = nil
	case "j", "down":
		m.notificationModal.ScrollDown()
	case "k", "up":
		m.notificationModal.ScrollUp()
	}
	return m, nil
}

func (m Model) handleNormalKey(keyStr string) (tea.Model, tea.Cmd) {
	switch keyStr {
	case "q", keyCtrlC:
		return m.quit()

	case "1", "2", "3", "4", "5", "6", "7":
		i, _ := strconv.Atoi(keyStr)
		return m, m.load(m.pageURL(tabs[i-1].Path))
	case "tab", "shift+tab":
		step := 1
		if keyStr == "shift+tab" {
			step = len(tabs) - 1
		}
		next := 0
		if cur := tabForPath(m.currentPath()); cur >= 0 {
			next = (cur + step) % len(tabs)
		}
		return m, m.load(m.pageURL(tabs[next].Path))
	case "r":
		if m.page != nil {
			return m, m.load(m.page.URL)
		}
		return m, m.load(m.startURL)

	case "j", "down":
		m.cursor = clamp(m.cursor+1, len(m.view.Rows))
	case "k", "up":
		m.cursor = clamp(m.cursor-1, len(m.view.Rows))
	case "home":
		m.cursor = 0
	case "end":
		m.cursor = clamp(len(m.view.Rows)-1, len(m.view.Rows))

	case "d":
		return m.rowAction(dispatch.ActionDownload)
	case "g":
		return m.rowAction(dispatch.ActionGrant)
	case "m":
		return m.rowAction(dispatch.ActionMagnet)
	case "x":
		return m.rowAction(dispatch.ActionRemove)

	case "/":
		return m.openInput(dispatch.SearchFormID)
	case "a":
		return m.openInput(dispatch.MagnetFormID)
	case "R":
		return m, m.run("refresh share", func(ctx context.Context, d *dispatch.Dispatcher) error {
			_, err := d.RefreshShare(ctx)
			return err
		})

	case "b":
		if len(m.view.Buttons) > 0 {
			m.button = (m.button + 1) % len(m.view.Buttons)
		}
	case "enter":
		if m.button >= len(m.view.Buttons) {
			return m, nil
		}
		id := m.view.Buttons[m.button].ID
		return m, m.run("button", func(_ context.Context, d *dispatch.Dispatcher) error {
			return d.PerformButtonAction(id)
		})
	case "s":
		if len(m.view.Sorts) == 0 {
			return m, nil
		}
		link := m.view.Sorts[m.sort%len(m.view.Sorts)]
		m.sort++
		return m, m.run("sort", func(_ context.Context, d *dispatch.Dispatcher) error {
			return d.SortTable(link.ID)
		})

	case "n":
		m.state = stateShowingNotifications
		m.notificationModal = NewNotificationModal(m.history, m.width, m.height)
	}
	return m, nil
}

// rowAction runs action against the selected row.
func (m Model) rowAction(action string) (tea.Model, tea.Cmd) {
	row, ok := m.selectedRow()
	if !ok {
		return m, nil
	}
	return m, m.run(action, func(ctx context.Context, d *dispatch.Dispatcher) error {
		var err error
		switch action {
		case dispatch.ActionDownload:
			_, err = d.AddToQueue(ctx, row.ID)
		case dispatch.ActionGrant:
			_, err = d.GrantSlot(ctx, row.ID)
		case dispatch.ActionRemove:
			err = d.RemoveItem(row.ID)
		case dispatch.ActionMagnet:
			err = d.CopyMagnet(row.ID)
		}
		return err
	})
}

func (m Model) openInput(formID string) (tea.Model, tea.Cmd) {
	form, ok := m.view.form(formID)
	if !ok || form.FieldID == "" {
		return m, nil
	}
	m.state = stateInput
	form.Checks = append([]formCheck(nil), form.Checks...)
	m.inputForm = form
	m.input.Placeholder = form.Label
	m.input.SetValue("")
	return m, m.input.Focus()
}

// toggleCheck flips the input form's i-th checkbox in the page document.
func (m *Model) toggleCheck(i int) {
	if m.page == nil || i < 0 || i >= len(m.inputForm.Checks) {
		return
	}
	c := &m.inputForm.Checks[i]
	if m.page.Doc.SetChecked(c.ID, !c.Checked) {
		c.Checked = !c.Checked
	}
}

func (m *Model) closeInput() {
	m.state = stateNormal
	m.inputForm = pageForm{}
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) currentPath() string {
	if m.page == nil {
		return ""
	}
	return pagePath(m.page.URL)
}
