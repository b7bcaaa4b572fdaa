package tui

import (
	"context"
	"errors"
	"time"

	"charm.land/bubbles/v2/spinner"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/flypanel/internal/core/dispatch"
	"github.com/colonyops/flypanel/internal/core/styles"
	"github.com/colonyops/flypanel/internal/panel"
)

const defaultHistorySize = 100

// UIState represents the current state of the TUI.
type UIState int

const (
	stateNormal UIState = iota
	stateInput
	stateShowingNotifications
)

// Options configures the TUI model.
type Options struct {
	Panel  *panel.Panel
	Buffer *NotificationBuffer

	// StartURL is loaded on Init.
	StartURL string
	// PageURL resolves a tab path against the server.
	PageURL func(path string) string

	HistorySize int
	Logger      zerolog.Logger
}

// Model is the main Bubble Tea model for the panel TUI.
type Model struct {
	panel   *panel.Panel
	buffer  *NotificationBuffer
	pageURL func(path string) string
	log     zerolog.Logger

	startURL string
	state    UIState
	width    int
	height   int
	quitting bool

	page   *panel.Page
	view   pageView
	cursor int
	button int
	sort   int

	input     textinput.Model
	inputForm pageForm

	modalCursor  int
	modalShownAt time.Time

	history           []HistoryEntry
	historySize       int
	notificationModal *NotificationModal

	spinner spinner.Model
	loading bool
	status  string
}

// New creates a new TUI model.
func New(opts Options) Model {
	if opts.HistorySize <= 0 {
		opts.HistorySize = defaultHistorySize
	}
	if opts.PageURL == nil {
		opts.PageURL = func(path string) string { return path }
	}
	if opts.Buffer == nil {
		opts.Buffer = NewNotificationBuffer()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.ColorPrimary)

	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 1024
	ti.SetWidth(40)
	inputStyles := textinput.DefaultStyles(true)
	inputStyles.Cursor.Color = styles.ColorPrimary
	inputStyles.Focused.Placeholder = lipgloss.NewStyle().Foreground(styles.ColorMuted)
	inputStyles.Blurred.Placeholder = lipgloss.NewStyle().Foreground(styles.ColorMuted)
	ti.SetStyles(inputStyles)

	return Model{
		panel:       opts.Panel,
		buffer:      opts.Buffer,
		pageURL:     opts.PageURL,
		log:         opts.Logger,
		startURL:    opts.StartURL,
		historySize: opts.HistorySize,
		input:       ti,
		spinner:     s,
		loading:     opts.StartURL != "",
	}
}

// Init starts the initial page load and the panel listeners.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitNavigation(m.panel),
		waitChange(m.panel),
		m.buffer.WaitForSignal(),
	}
	if m.startURL != "" {
		cmds = append(cmds, loadPage(m.panel, m.startURL), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.notificationModal != nil {
			m.notificationModal = NewNotificationModal(m.history, m.width, m.height)
		}
		return m, nil

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "load " + pagePath(msg.url) + ": " + msg.err.Error()
			return m, nil
		}
		m.status = ""
		m.syncPage()
		return m, nil

	case navigateMsg:
		return m, tea.Batch(m.load(msg.url), waitNavigation(m.panel))

	case pageChangedMsg:
		m.syncPage()
		return m, waitChange(m.panel)

	case drainNotificationsMsg:
		m.appendHistory(m.buffer.Drain())
		return m, m.buffer.WaitForSignal()

	case actionResultMsg:
		if msg.err != nil && !errors.Is(msg.err, dispatch.ErrNoTarget) {
			m.log.Warn().Err(msg.err).Str("action", msg.action).Msg("action failed")
			m.status = msg.action + ": " + msg.err.Error()
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) quit() (Model, tea.Cmd) {
	m.quitting = true
	return m, tea.Quit
}

// load starts fetching url and shows the spinner until it lands.
func (m *Model) load(url string) tea.Cmd {
	m.loading = true
	m.status = ""
	return tea.Batch(loadPage(m.panel, url), m.spinner.Tick)
}

// syncPage picks up the panel's current page and re-extracts its view.
// Selection survives changes within a page and resets on a new page.
func (m *Model) syncPage() {
	cur := m.panel.Current()
	if cur != m.page {
		m.page = cur
		m.cursor = 0
		m.button = 0
		m.modalShownAt = time.Time{}
		if m.state == stateInput {
			m.closeInput()
		}
	}
	if m.page == nil {
		m.view = pageView{}
		return
	}

	m.view = extractPage(m.page.Doc)
	m.cursor = clamp(m.cursor, len(m.view.Rows))
	m.button = clamp(m.button, len(m.view.Buttons))

	if d, ok := m.page.Modal.Current(); ok && !d.ShownAt.Equal(m.modalShownAt) {
		m.modalShownAt = d.ShownAt
		m.modalCursor = 0
	}
}

func (m *Model) appendHistory(entries []HistoryEntry) {
	if len(entries) == 0 {
		return
	}
	m.history = append(m.history, entries...)
	if over := len(m.history) - m.historySize; over > 0 {
		m.history = append([]HistoryEntry(nil), m.history[over:]...)
	}
	if m.notificationModal != nil {
		m.notificationModal.SetHistory(m.history)
	}
}

// run executes fn off the update loop and reports a failure to start.
func (m Model) run(action string, fn func(ctx context.Context, d *dispatch.Dispatcher) error) tea.Cmd {
	if m.page == nil {
		return nil
	}
	d := m.page.Dispatcher
	return func() tea.Msg {
		return actionResultMsg{action: action, err: fn(context.Background(), d)}
	}
}

func (m Model) selectedRow() (pageRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Rows) {
		return pageRow{}, false
	}
	return m.view.Rows[m.cursor], true
}

func (m Model) modalOpen() bool {
	return m.page != nil && m.page.Modal.Open()
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
