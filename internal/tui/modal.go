package tui

import (
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/flypanel/internal/core/modal"
	"github.com/colonyops/flypanel/internal/core/styles"
)

// DialogView renders the page's modal dialog.
type DialogView struct {
	dialog   modal.Dialog
	selected int
}

// NewDialogView wraps the currently open dialog with the highlighted button.
func NewDialogView(d modal.Dialog, selected int) DialogView {
	return DialogView{dialog: d, selected: selected}
}

// Overlay renders the dialog centered over the given background content.
func (v DialogView) Overlay(background string, width, height int) string {
	buttons := make([]string, 0, len(v.dialog.Labels)*2)
	for i, label := range v.dialog.Labels {
		if i > 0 {
			buttons = append(buttons, "  ")
		}
		if i == v.selected {
			buttons = append(buttons, styles.ModalButtonSelectedStyle.Render(label))
		} else {
			buttons = append(buttons, styles.ModalButtonStyle.Render(label))
		}
	}
	buttonRow := lipgloss.NewStyle().MarginTop(1).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, buttons...),
	)

	message := styles.ModalTitleStyle.Render(v.dialog.Message)
	if v.dialog.Icon != "" {
		message = lipgloss.JoinHorizontal(lipgloss.Top,
			styles.ModalIconStyle.Render(styles.IconQuestion),
			message,
		)
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		message,
		buttonRow,
		styles.ModalHelpStyle.Render("←/→ select  enter confirm  esc close"),
	)

	box := styles.ModalInactiveStyle
	if v.dialog.Active {
		box = styles.ModalStyle
	}
	rendered := box.Render(content)

	bgLayer := lipgloss.NewLayer(background)
	modalLayer := lipgloss.NewLayer(rendered)

	modalW := lipgloss.Width(rendered)
	modalH := lipgloss.Height(rendered)
	modalLayer.X(max((width-modalW)/2, 0)).Y(max((height-modalH)/2, 0)).Z(1)

	return lipgloss.NewCompositor(bgLayer, modalLayer).Render()
}
