// Package panel owns the page currently shown to the user. Each loaded page
// gets its own document, notification queue, modal manager and dispatcher;
// loading another page unloads the previous one, which stops its timers and
// cancels its in-flight calls.
package panel

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/flypanel/internal/core/clock"
	"github.com/colonyops/flypanel/internal/core/dispatch"
	"github.com/colonyops/flypanel/internal/core/dom"
	"github.com/colonyops/flypanel/internal/core/infotip"
	"github.com/colonyops/flypanel/internal/core/logging"
	"github.com/colonyops/flypanel/internal/core/modal"
	"github.com/colonyops/flypanel/internal/core/transport"
)

const navigationBuffer = 8

// Fetcher loads pages and starts calls.
type Fetcher interface {
	dispatch.Sender
	FetchPage(ctx context.Context, url string) (transport.Page, error)
}

// Options configures the per-page components.
type Options struct {
	Clock       clock.Clock
	Clipboard   dispatch.Clipboard
	TTL         time.Duration
	RejectStale bool
	Strings     dispatch.Strings
	Labels      modal.Labels
	Icon        string
	Logger      zerolog.Logger

	// OnNotification is called for every notification posted on any page.
	OnNotification func(pageURL string, n infotip.Notification)
}

// Page is one loaded document and the components bound to it.
type Page struct {
	URL        string
	LoadedAt   time.Time
	Doc        *dom.Document
	Queue      *infotip.Queue
	Modal      *modal.Manager
	Dispatcher *dispatch.Dispatcher
}

// Unload releases everything the page owns.
func (p *Page) Unload() {
	p.Dispatcher.Close()
	p.Modal.Dismiss()
	p.Queue.Close()
}

// Panel holds the current page.
type Panel struct {
	fetcher Fetcher
	opts    Options
	log     zerolog.Logger

	nav     chan string
	changes chan struct{}

	mu     sync.Mutex
	page   *Page
	closed bool
}

// New creates a Panel. No page is loaded until Load is called.
func New(fetcher Fetcher, opts Options) *Panel {
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.TTL <= 0 {
		opts.TTL = infotip.DefaultTTL
	}
	if opts.Labels == (modal.Labels{}) {
		opts.Labels = modal.DefaultLabels()
	}
	if opts.Icon == "" {
		opts.Icon = modal.DefaultIcon
	}
	return &Panel{
		fetcher: fetcher,
		opts:    opts,
		log:     opts.Logger,
		nav:     make(chan string, navigationBuffer),
		changes: make(chan struct{}, 1),
	}
}

// Load fetches url and makes it the current page. On failure the current
// page is kept.
func (p *Panel) Load(ctx context.Context, url string) (*Page, error) {
	ctx = logging.WithPage(ctx, url)

	fetched, err := p.fetcher.FetchPage(ctx, url)
	if err != nil {
		p.log.Warn().Ctx(ctx).Err(err).Msg("page load failed")
		return nil, err
	}

	doc, err := dom.Parse(bytes.NewReader(fetched.Body), fetched.URL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fetched.URL, err)
	}

	page := p.build(doc)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		page.Unload()
		return nil, fmt.Errorf("panel closed")
	}
	prev := p.page
	p.page = page
	p.mu.Unlock()

	if prev != nil {
		prev.Unload()
	}

	p.log.Debug().Ctx(ctx).Str("final_url", fetched.URL).Msg("page loaded")
	p.signal()
	return page, nil
}

func (p *Panel) build(doc *dom.Document) *Page {
	pageURL := doc.URL()
	log := p.log.With().Str("page", pageURL).Logger()

	qopts := []infotip.Option{
		infotip.WithClock(p.opts.Clock),
		infotip.WithTTL(p.opts.TTL),
		infotip.WithLogger(log),
		infotip.WithOnChange(p.signal),
	}
	if p.opts.OnNotification != nil {
		observe := p.opts.OnNotification
		qopts = append(qopts, infotip.WithObserver(func(n infotip.Notification) {
			observe(pageURL, n)
		}))
	}
	queue := infotip.NewQueue(doc, qopts...)

	mgr := modal.NewManager(doc,
		modal.WithClock(p.opts.Clock),
		modal.WithLabels(p.opts.Labels),
		modal.WithIcon(p.opts.Icon),
		modal.WithLogger(log),
		modal.WithOnChange(p.signal),
	)

	d := dispatch.New(dispatch.Deps{
		Document:    doc,
		Queue:       queue,
		Modal:       mgr,
		Sender:      p.fetcher,
		Navigator:   dispatch.NavigatorFunc(p.requestNavigation),
		Clipboard:   p.opts.Clipboard,
		Strings:     p.opts.Strings,
		RejectStale: p.opts.RejectStale,
		Logger:      log,
	})

	return &Page{
		URL:        pageURL,
		LoadedAt:   p.opts.Clock.Now(),
		Doc:        doc,
		Queue:      queue,
		Modal:      mgr,
		Dispatcher: d,
	}
}

// Current returns the loaded page, or nil.
func (p *Panel) Current() *Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// Navigations delivers URLs the current page asked to navigate to. The
// receiver decides whether to Load them.
func (p *Panel) Navigations() <-chan string {
	return p.nav
}

// Changes receives a coalesced signal whenever the current page's
// notifications or dialog change, or a new page is loaded.
func (p *Panel) Changes() <-chan struct{} {
	return p.changes
}

// Close unloads the current page. Later loads fail.
func (p *Panel) Close() {
	p.mu.Lock()
	page := p.page
	p.page = nil
	p.closed = true
	p.mu.Unlock()

	if page != nil {
		page.Unload()
	}
}

func (p *Panel) requestNavigation(url string) {
	select {
	case p.nav <- url:
	default:
		p.log.Warn().Str("url", url).Msg("navigation dropped, receiver not keeping up")
	}
}

func (p *Panel) signal() {
	select {
	case p.changes <- struct{}{}:
	default:
	}
}
