// Package tuitest provides helpers for driving Bubble Tea models in tests.
package tuitest

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
)

var namedKeys = map[string]rune{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEscape,
	"tab":       tea.KeyTab,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"home":      tea.KeyHome,
	"end":       tea.KeyEnd,
	"space":     tea.KeySpace,
	"backspace": tea.KeyBackspace,
}

// Key builds the key press whose String form is s. Named keys such as
// "enter" and "esc" map to their key codes; anything else is typed text.
func Key(s string) tea.KeyPressMsg {
	if code, ok := namedKeys[s]; ok {
		return tea.KeyPressMsg{Code: code}
	}
	if s == "shift+tab" {
		return tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}
	}
	if s == "ctrl+c" {
		return tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}
	}
	if rest, ok := strings.CutPrefix(s, "alt+"); ok {
		k := Key(rest)
		return tea.KeyPressMsg{Code: k.Code, Mod: k.Mod | tea.ModAlt}
	}
	r := []rune(s)
	return tea.KeyPressMsg{Text: s, Code: r[0]}
}

// Type returns one key press per rune of text.
func Type(text string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(text))
	for _, r := range text {
		msgs = append(msgs, tea.KeyPressMsg{Text: string(r), Code: r})
	}
	return msgs
}

// WindowSize creates a window size message.
func WindowSize(w, h int) tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: w, Height: h}
}

// Plain removes ANSI escape codes and trailing whitespace so rendered views
// can be matched as text.
func Plain(s string) string {
	s = ansi.Strip(s)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " ")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}

// LineWith returns the first line of the plain rendering containing sub.
func LineWith(s, sub string) (string, bool) {
	for _, line := range strings.Split(Plain(s), "\n") {
		if strings.Contains(line, sub) {
			return line, true
		}
	}
	return "", false
}
