package tui

import (
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/flypanel/internal/core/infotip"
	"github.com/colonyops/flypanel/internal/core/styles"
)

const (
	toastWidth     = 50
	toastMaxStack  = 5
	toastAnchorSep = " · "
)

// ToastView renders the page's live notifications as a stack in the
// lower-right corner. Lifetimes are owned by the queue; the view only
// reflects what is active.
type ToastView struct {
	active func() []infotip.Notification
}

func NewToastView(active func() []infotip.Notification) *ToastView {
	return &ToastView{active: active}
}

// View renders the toast stack as a single string with toasts stacked
// vertically (oldest at top, newest at bottom).
func (v *ToastView) View() string {
	if v.active == nil {
		return ""
	}
	toasts := v.active()
	if len(toasts) == 0 {
		return ""
	}
	if len(toasts) > toastMaxStack {
		toasts = toasts[len(toasts)-toastMaxStack:]
	}

	rendered := make([]string, 0, len(toasts))
	for _, n := range toasts {
		rendered = append(rendered, renderToast(n))
	}

	return strings.Join(rendered, "\n")
}

func renderToast(n infotip.Notification) string {
	icon := styles.IconSuccess
	style := styles.ToastSuccessStyle
	if !n.Success {
		icon = styles.IconFailure
		style = styles.ToastFailureStyle
	}

	content := icon + " " + n.Text + styles.HelpStyle.Render(toastAnchorSep+n.AnchorID)
	return style.Width(toastWidth).Render(content)
}

// Overlay composites the toast stack over background in the lower-right corner.
func (v *ToastView) Overlay(background string, width, height int) string {
	toastContent := v.View()
	if toastContent == "" {
		return background
	}

	bgLayer := lipgloss.NewLayer(background)
	toastLayer := lipgloss.NewLayer(toastContent)

	toastW := lipgloss.Width(toastContent)
	toastH := lipgloss.Height(toastContent)

	rightX := max(width-toastW-1, 0)
	bottomY := max(height-toastH-1, 0)

	toastLayer.X(rightX).Y(bottomY).Z(2)

	compositor := lipgloss.NewCompositor(bgLayer, toastLayer)
	return compositor.Render()
}
