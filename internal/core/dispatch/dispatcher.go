// Package dispatch binds the panel's user gestures to the transport and
// router pipeline and reflects the result as a notification or navigation.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/colonyops/flypanel/internal/core/dom"
	"github.com/colonyops/flypanel/internal/core/infotip"
	"github.com/colonyops/flypanel/internal/core/logging"
	"github.com/colonyops/flypanel/internal/core/modal"
	"github.com/colonyops/flypanel/internal/core/router"
	"github.com/colonyops/flypanel/internal/core/transport"
)

// ErrNoTarget is returned when the element an action needs (form, link,
// button, row) is not in the document. The UI treats it as a silent no-op.
var ErrNoTarget = errors.New("target element not found")

// Element ids and attributes produced by the server's page renderer.
const (
	SearchFormID  = "search-form"
	SearchInputID = "search-string"
	MagnetFormID  = "add-magnet-form"
	MagnetInputID = "magnet-string"
	RefreshFormID = "refresh-share-form"

	ActionDownload = "download"
	ActionGrant    = "grant"
	ActionRemove   = "remove"
	ActionMagnet   = "magnet"

	AttrMagnet    = "data-magnet"
	AttrActionURL = "data-action-url"
)

// Navigator replaces the current page with the document at url.
type Navigator interface {
	Navigate(url string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string)

func (f NavigatorFunc) Navigate(url string) { f(url) }

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(text string) error
}

// Sender starts asynchronous calls.
type Sender interface {
	Send(ctx context.Context, req transport.Request) (*transport.Call, error)
}

// Strings are the externally supplied texts the dispatcher shows.
type Strings struct {
	CopyMagnet       string
	ConfirmRemove    string
	TransportFailure string
}

// DefaultStrings returns English texts.
func DefaultStrings() Strings {
	return Strings{
		CopyMagnet:       "Magnet link copied to clipboard",
		ConfirmRemove:    "Really remove?",
		TransportFailure: "Can't initialize request",
	}
}

// Deps are the collaborators a Dispatcher drives. Document, Queue, Modal,
// Sender and Navigator are required.
type Deps struct {
	Document  *dom.Document
	Queue     *infotip.Queue
	Modal     *modal.Manager
	Sender    Sender
	Navigator Navigator
	Clipboard Clipboard
	Strings   Strings

	// RejectStale drops a response when a later request for the same anchor
	// has already been reflected. Off by default: last completion wins.
	RejectStale bool

	Logger zerolog.Logger
}

// Dispatcher is the public surface for page actions.
type Dispatcher struct {
	doc     *dom.Document
	queue   *infotip.Queue
	modal   *modal.Manager
	sender  Sender
	nav     Navigator
	clip    Clipboard
	strings Strings
	stale   bool
	seq     *sequencer
	log     zerolog.Logger

	mu       sync.Mutex
	inflight map[*transport.Call]struct{}
	closed   bool
}

// New creates a Dispatcher.
func New(deps Deps) *Dispatcher {
	if deps.Strings == (Strings{}) {
		deps.Strings = DefaultStrings()
	}
	return &Dispatcher{
		doc:      deps.Document,
		queue:    deps.Queue,
		modal:    deps.Modal,
		sender:   deps.Sender,
		nav:      deps.Navigator,
		clip:     deps.Clipboard,
		strings:  deps.Strings,
		stale:    deps.RejectStale,
		seq:      newSequencer(),
		log:      deps.Logger,
		inflight: map[*transport.Call]struct{}{},
	}
}

// SubmitForm serializes the form with formID and posts it to its action.
// The response is anchored at the element enclosing the submit button.
func (d *Dispatcher) SubmitForm(ctx context.Context, formID string) (*Task, error) {
	form, ok := d.doc.Form(formID)
	if !ok {
		return nil, d.missing("form", formID)
	}

	var params transport.Params
	for _, c := range form.Controls {
		if c.Eligible() {
			params.Add(c.Name, c.Value)
		}
	}

	action := form.Action
	if action == "" {
		action = d.doc.URL()
	}

	ctx = logging.WithAction(ctx, "submit:"+formID)
	return d.send(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    d.doc.Resolve(action),
		Params: params.WithJSONFlag(),
	}, form.SubmitGroup(), router.ModeForm)
}

// SendSearch submits the search form and clears its text field.
func (d *Dispatcher) SendSearch(ctx context.Context) (*Task, error) {
	return d.submitAndClear(ctx, SearchFormID, SearchInputID)
}

// AddMagnet submits the add-magnet form and clears its text field.
func (d *Dispatcher) AddMagnet(ctx context.Context) (*Task, error) {
	return d.submitAndClear(ctx, MagnetFormID, MagnetInputID)
}

// RefreshShare submits the share refresh form.
func (d *Dispatcher) RefreshShare(ctx context.Context) (*Task, error) {
	return d.SubmitForm(ctx, RefreshFormID)
}

func (d *Dispatcher) submitAndClear(ctx context.Context, formID, inputID string) (*Task, error) {
	task, err := d.SubmitForm(ctx, formID)
	if errors.Is(err, ErrNoTarget) {
		return nil, err
	}
	d.doc.SetValue(inputID, "")
	return task, err
}

// RowAction fires the server command linked from "{rowID}-{action}" and
// anchors the response on that link.
func (d *Dispatcher) RowAction(ctx context.Context, rowID, action string) (*Task, error) {
	target := rowID + "-" + action
	href, ok := d.doc.Attr(target, "href")
	if !ok || href == "" {
		return nil, d.missing("row action", target)
	}

	ctx = logging.WithAction(ctx, action)
	return d.send(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    d.doc.Resolve(href),
		Params: transport.Params{}.WithJSONFlag(),
	}, target, router.ModeRow)
}

// AddToQueue enqueues the download offered by a search result row.
func (d *Dispatcher) AddToQueue(ctx context.Context, rowID string) (*Task, error) {
	return d.RowAction(ctx, rowID, ActionDownload)
}

// GrantSlot grants an upload slot to a waiting user's row.
func (d *Dispatcher) GrantSlot(ctx context.Context, rowID string) (*Task, error) {
	return d.RowAction(ctx, rowID, ActionGrant)
}

// RemoveItem asks for confirmation and, on yes, navigates to the row's
// remove link. The server's page response is the feedback.
func (d *Dispatcher) RemoveItem(rowID string) error {
	target := rowID + "-" + ActionRemove
	href, ok := d.doc.Attr(target, "href")
	if !ok || href == "" {
		return d.missing("remove link", target)
	}
	url := d.doc.Resolve(href)

	d.modal.Confirm(d.strings.ConfirmRemove, func() {
		d.modal.Dismiss()
		d.navigate(url)
	})
	return nil
}

// PerformButtonAction navigates to the button's data-action-url.
func (d *Dispatcher) PerformButtonAction(buttonID string) error {
	url, ok := d.doc.Attr(buttonID, AttrActionURL)
	if !ok || url == "" {
		return d.missing("button", buttonID)
	}
	d.navigate(d.doc.Resolve(url))
	return nil
}

// SortTable follows a column header link.
func (d *Dispatcher) SortTable(linkID string) error {
	href, ok := d.doc.Attr(linkID, "href")
	if !ok || href == "" {
		return d.missing("sort link", linkID)
	}
	d.navigate(d.doc.Resolve(href))
	return nil
}

// CopyMagnet copies the row's magnet link and confirms at "{rowID}-magnet".
func (d *Dispatcher) CopyMagnet(rowID string) error {
	magnet, ok := d.doc.Attr(rowID, AttrMagnet)
	if !ok || magnet == "" {
		return d.missing("magnet", rowID)
	}
	if d.clip == nil {
		return fmt.Errorf("copy magnet: no clipboard")
	}
	if err := d.clip.WriteText(magnet); err != nil {
		return fmt.Errorf("copy magnet: %w", err)
	}
	d.queue.Post(rowID+"-"+ActionMagnet, d.strings.CopyMagnet, true)
	return nil
}

// Close cancels every in-flight call and suppresses reflection of any
// response still arriving. It is called when the page unloads.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	calls := make([]*transport.Call, 0, len(d.inflight))
	for c := range d.inflight {
		calls = append(calls, c)
	}
	d.mu.Unlock()

	for _, c := range calls {
		c.Cancel()
	}
}

// InFlight returns the number of calls awaiting a response.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

func (d *Dispatcher) send(ctx context.Context, req transport.Request, anchorID string, mode router.Mode) (*Task, error) {
	ticket := d.seq.issue(anchorID)

	call, err := d.sender.Send(ctx, req)
	if err != nil {
		d.log.Error().Ctx(ctx).Err(err).Str("url", req.URL).Msg("request not started")
		d.modal.Alert(d.strings.TransportFailure)
		return nil, err
	}

	d.mu.Lock()
	d.inflight[call] = struct{}{}
	d.mu.Unlock()

	task := newTask(call, anchorID)
	go func() {
		out := call.Outcome()

		d.mu.Lock()
		delete(d.inflight, call)
		closed := d.closed
		d.mu.Unlock()

		res := router.Route(out, anchorID, mode)
		switch {
		case closed:
			d.log.Debug().Str("request_id", call.ID).Msg("page unloaded, response dropped")
			res = router.Result{}
		case !d.seq.accept(anchorID, ticket) && d.stale:
			d.log.Debug().Str("request_id", call.ID).Str("anchor", anchorID).Msg("stale response dropped")
			res = router.Result{}
		}

		d.log.Debug().
			Str("request_id", call.ID).
			Int("status", out.Status).
			Stringer("result", res.Kind).
			Msg("response routed")
		d.reflect(res)
		task.finish(res)
	}()
	return task, nil
}

func (d *Dispatcher) reflect(res router.Result) {
	switch res.Kind {
	case router.KindRedirect:
		d.navigate(d.doc.Resolve(res.URL))
	case router.KindMessage:
		d.queue.Post(res.AnchorID, res.Text, res.Success)
	}
}

func (d *Dispatcher) navigate(url string) {
	d.log.Debug().Str("url", url).Msg("navigate")
	d.nav.Navigate(url)
}

func (d *Dispatcher) missing(kind, id string) error {
	d.log.Debug().Str("kind", kind).Str("id", id).Msg("target missing, action skipped")
	return fmt.Errorf("%s %q: %w", kind, id, ErrNoTarget)
}
