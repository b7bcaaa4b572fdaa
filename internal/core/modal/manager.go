// Package modal manages the single blocking dialog of a page: a dimmed
// backdrop plus a centered box with a message, an optional icon, and one
// button per action.
package modal

import (
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/flypanel/internal/core/clock"
	"github.com/colonyops/flypanel/internal/core/dom"
)

const (
	BackgroundID = "modal-background"
	BoxID        = "modal-box"

	ClassBackground       = "modal-background"
	ClassActiveBackground = "active-background"
	ClassBox              = "modal-box-container"
	ClassActiveBox        = "active-box"

	// DefaultIcon is shown by Confirm.
	DefaultIcon = "question32.png"

	// activationDelay separates insertion from the active state so an
	// entrance transition is observable.
	activationDelay = time.Millisecond
)

// Action is one dialog button. A nil OnActivate dismisses the dialog.
type Action struct {
	Label      string
	OnActivate func()
}

// Labels are the externally supplied button captions.
type Labels struct {
	Yes string
	No  string
	OK  string
}

// DefaultLabels returns English captions.
func DefaultLabels() Labels {
	return Labels{Yes: "Yes", No: "No", OK: "OK"}
}

// Dialog is a read-only view of the open dialog.
type Dialog struct {
	Message string
	Icon    string
	Labels  []string
	Active  bool
	ShownAt time.Time
}

// Document is the part of the element tree the manager touches.
type Document interface {
	AppendChild(parentID string, child *dom.Node) bool
	Remove(id string) bool
	AddClass(id, class string) bool
}

type dialog struct {
	Dialog
	actions []Action
	gen     uint64
	timer   clock.Timer
}

// Manager owns the page's only dialog. Showing a dialog while another is
// open replaces it; dialogs never stack.
type Manager struct {
	doc      Document
	clock    clock.Clock
	labels   Labels
	icon     string
	log      zerolog.Logger
	onChange func()

	mu      sync.Mutex
	current *dialog
	gen     uint64
}

// Option configures a Manager.
type Option func(*Manager)

func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

func WithLabels(l Labels) Option {
	return func(m *Manager) { m.labels = l }
}

// WithIcon sets the icon used by Confirm.
func WithIcon(icon string) Option {
	return func(m *Manager) { m.icon = icon }
}

func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithOnChange registers fn to run after the dialog is shown, activated or
// dismissed. fn runs without the manager lock held.
func WithOnChange(fn func()) Option {
	return func(m *Manager) { m.onChange = fn }
}

// NewManager creates a manager that renders into doc.
func NewManager(doc Document, opts ...Option) *Manager {
	m := &Manager{
		doc:    doc,
		clock:  clock.System{},
		labels: DefaultLabels(),
		icon:   DefaultIcon,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Show opens a dialog, tearing down any open one first.
func (m *Manager) Show(message string, actions []Action, icon string) {
	m.mu.Lock()
	m.teardown()

	m.doc.AppendChild("", dom.NewElement("div", BackgroundID, ClassBackground))
	m.doc.AppendChild("", buildBox(message, actions, icon))

	m.gen++
	gen := m.gen
	labels := make([]string, len(actions))
	for i, a := range actions {
		labels[i] = a.Label
	}
	m.current = &dialog{
		Dialog: Dialog{
			Message: message,
			Icon:    icon,
			Labels:  labels,
			ShownAt: m.clock.Now(),
		},
		actions: actions,
		gen:     gen,
	}
	m.current.timer = m.clock.AfterFunc(activationDelay, func() { m.activate(gen) })
	m.mu.Unlock()

	m.log.Debug().Str("message", message).Int("actions", len(actions)).Msg("modal shown")
	m.changed()
}

// Confirm opens a yes/no dialog; onYes runs when "yes" is activated and is
// responsible for dismissing the dialog. "No" dismisses.
func (m *Manager) Confirm(message string, onYes func()) {
	m.Show(message, []Action{
		{Label: m.labels.Yes, OnActivate: onYes},
		{Label: m.labels.No},
	}, m.icon)
}

// Alert opens a dialog with a single dismissing OK button.
func (m *Manager) Alert(message string) {
	m.Show(message, []Action{{Label: m.labels.OK}}, "")
}

// Activate presses the button at index. It reports false when no dialog is
// open or index is out of range.
func (m *Manager) Activate(index int) bool {
	m.mu.Lock()
	if m.current == nil || index < 0 || index >= len(m.current.actions) {
		m.mu.Unlock()
		return false
	}
	handler := m.current.actions[index].OnActivate
	m.mu.Unlock()

	if handler == nil {
		m.Dismiss()
		return true
	}
	handler()
	return true
}

// Dismiss removes the dialog. It is a no-op when none is open.
func (m *Manager) Dismiss() {
	m.mu.Lock()
	if m.current == nil {
		m.mu.Unlock()
		return
	}
	m.teardown()
	m.mu.Unlock()

	m.log.Debug().Msg("modal dismissed")
	m.changed()
}

// Current returns the open dialog.
func (m *Manager) Current() (Dialog, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Dialog{}, false
	}
	d := m.current.Dialog
	d.Labels = append([]string(nil), d.Labels...)
	return d, true
}

// Open reports whether a dialog is showing.
func (m *Manager) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}

func (m *Manager) activate(gen uint64) {
	m.mu.Lock()
	if m.current == nil || m.current.gen != gen {
		m.mu.Unlock()
		return
	}
	m.doc.AddClass(BackgroundID, ClassActiveBackground)
	m.doc.AddClass(BoxID, ClassActiveBox)
	m.current.Active = true
	m.mu.Unlock()

	m.changed()
}

// teardown removes the dialog's elements. Caller holds m.mu.
func (m *Manager) teardown() {
	if m.current == nil {
		return
	}
	if m.current.timer != nil {
		m.current.timer.Stop()
	}
	m.doc.Remove(BackgroundID)
	m.doc.Remove(BoxID)
	m.current = nil
}

func (m *Manager) changed() {
	if m.onChange != nil {
		m.onChange()
	}
}

func buildBox(message string, actions []Action, icon string) *dom.Node {
	container := dom.NewElement("div", BoxID, ClassBox)
	box := container.Append(dom.NewElement("div", "", "modal-box"))
	row := box.Append(dom.NewElement("div", "", "modal-box-row-container")).
		Append(dom.NewElement("div", "", "modal-box-row"))

	img := row.Append(dom.NewElement("div", "", "img"))
	if icon != "" {
		img.Append(dom.NewElement("img", "", "")).SetAttr("src", icon)
	}
	text := row.Append(dom.NewElement("div", "", "text"))
	text.Text = message

	buttons := box.Append(dom.NewElement("div", "", "modal-box-buttons"))
	for i, a := range actions {
		buttons.Append(dom.NewElement("input", "modal-button-"+strconv.Itoa(i), "")).
			SetAttr("type", "button").
			SetAttr("value", a.Label)
	}
	return container
}
