// Package styles provides shared lipgloss v2 styles for CLI and TUI components.
package styles

import (
	"image/color"

	lipgloss "charm.land/lipgloss/v2"
)

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Exported color aliases for convenience.
var (
	ColorPrimary    color.Color
	ColorSecondary  color.Color
	ColorForeground color.Color
	ColorMuted      color.Color
	ColorBackground color.Color
	ColorSurface    color.Color
	ColorSuccess    color.Color
	ColorWarning    color.Color
	ColorError      color.Color
)

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	SuccessStyle       lipgloss.Style
	FailureStyle       lipgloss.Style
	DividerStyle       lipgloss.Style

	// Page chrome.
	TitleStyle     lipgloss.Style
	TabStyle       lipgloss.Style
	TabActiveStyle lipgloss.Style
	StatusStyle    lipgloss.Style
	HelpStyle      lipgloss.Style

	// Page body.
	RowStyle         lipgloss.Style
	RowSelectedStyle lipgloss.Style
	LinkStyle        lipgloss.Style
	ButtonStyle      lipgloss.Style

	// Infotips rendered next to their anchor, and the toast stack.
	InfotipSuccessStyle lipgloss.Style
	InfotipFailureStyle lipgloss.Style
	ToastSuccessStyle   lipgloss.Style
	ToastFailureStyle   lipgloss.Style

	// Modal dialog.
	ModalStyle               lipgloss.Style
	ModalInactiveStyle       lipgloss.Style
	ModalTitleStyle          lipgloss.Style
	ModalIconStyle           lipgloss.Style
	ModalHelpStyle           lipgloss.Style
	ModalButtonStyle         lipgloss.Style
	ModalButtonSelectedStyle lipgloss.Style

	// Form fields.
	FormFieldStyle        lipgloss.Style
	FormFieldFocusedStyle lipgloss.Style
	FormLabelStyle        lipgloss.Style

	// Notification history.
	HistoryTimeStyle lipgloss.Style
	HistoryPageStyle lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	ColorPrimary = p.Primary
	ColorSecondary = p.Secondary
	ColorForeground = p.Foreground
	ColorMuted = p.Muted
	ColorBackground = p.Background
	ColorSurface = p.Surface
	ColorSuccess = p.Success
	ColorWarning = p.Warning
	ColorError = p.Error

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(ColorSuccess)
	FailureStyle = lipgloss.NewStyle().Foreground(ColorError)
	DividerStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	TitleStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Bold(true)
	TabStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Padding(0, 1)
	TabActiveStyle = lipgloss.NewStyle().
		Foreground(ColorBackground).
		Background(ColorPrimary).
		Bold(true).
		Padding(0, 1)
	StatusStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	HelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	RowStyle = lipgloss.NewStyle().
		Foreground(ColorForeground)
	RowSelectedStyle = lipgloss.NewStyle().
		Foreground(ColorPrimary).
		Background(ColorSurface).
		Bold(true)
	LinkStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Underline(true)
	ButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorForeground)

	InfotipSuccessStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess).
		Italic(true)
	InfotipFailureStyle = lipgloss.NewStyle().
		Foreground(ColorError).
		Italic(true)
	ToastSuccessStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorSuccess).
		Foreground(ColorForeground).
		Padding(0, 1)
	ToastFailureStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorError).
		Foreground(ColorForeground).
		Padding(0, 1)

	ModalStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorPrimary).
		Padding(1, 2)
	ModalInactiveStyle = ModalStyle.
		BorderForeground(ColorMuted)
	ModalTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorForeground)
	ModalIconStyle = lipgloss.NewStyle().
		Foreground(ColorWarning).
		Bold(true).
		PaddingRight(2)
	ModalHelpStyle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginTop(1)
	ModalButtonStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorSurface).
		Foreground(ColorMuted)
	ModalButtonSelectedStyle = lipgloss.NewStyle().
		Padding(0, 1).
		Background(ColorPrimary).
		Foreground(ColorBackground).
		Bold(true)

	FormFieldStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorMuted).
		PaddingLeft(1)
	FormFieldFocusedStyle = lipgloss.NewStyle().
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(ColorPrimary).
		PaddingLeft(1)
	FormLabelStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)

	HistoryTimeStyle = lipgloss.NewStyle().
		Foreground(ColorMuted)
	HistoryPageStyle = lipgloss.NewStyle().
		Foreground(ColorSecondary).
		Italic(true)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}
