// Package infotip implements the queue of short-lived notifications that are
// attached to page elements ("anchors") after an action completes.
package infotip

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/flypanel/internal/core/clock"
	"github.com/colonyops/flypanel/internal/core/dom"
)

const (
	// DefaultTTL is how long a notification stays attached before it expires.
	DefaultTTL = 5 * time.Second

	// Suffix is appended to an anchor id to form its notification id.
	Suffix = "-infotip"

	ClassSuccess = "infotip"
	ClassFailure = "infotip-failure"
)

// IDFor returns the notification id used for anchorID.
func IDFor(anchorID string) string {
	return anchorID + Suffix
}

// Notification is a live notification attached to an anchor.
type Notification struct {
	ID        string
	AnchorID  string
	Text      string
	Success   bool
	PostedAt  time.Time
	ExpiresAt time.Time
}

// Document is the part of the element tree the queue touches.
type Document interface {
	Exists(id string) bool
	AppendChild(parentID string, child *dom.Node) bool
	Remove(id string) bool
}

type entry struct {
	Notification
	seq   uint64
	timer clock.Timer
}

// Queue owns every live notification, its timer, and its element. At most
// one notification exists per anchor; posting to an occupied anchor evicts
// the previous one first.
type Queue struct {
	doc       Document
	clock     clock.Clock
	ttl       time.Duration
	log       zerolog.Logger
	onChange  func()
	observers []func(Notification)

	mu      sync.Mutex
	entries []*entry
	seq     uint64
	closed  bool
}

// Option configures a Queue.
type Option func(*Queue)

// WithClock replaces the system clock.
func WithClock(c clock.Clock) Option {
	return func(q *Queue) { q.clock = c }
}

// WithTTL overrides DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.ttl = d
		}
	}
}

// WithLogger sets the queue's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(q *Queue) { q.log = l }
}

// WithOnChange registers fn to run after every post, dismissal and expiry.
// fn runs without the queue lock held.
func WithOnChange(fn func()) Option {
	return func(q *Queue) { q.onChange = fn }
}

// WithObserver registers fn to receive every successfully posted notification.
func WithObserver(fn func(Notification)) Option {
	return func(q *Queue) { q.observers = append(q.observers, fn) }
}

// NewQueue creates a queue that attaches notifications to doc.
func NewQueue(doc Document, opts ...Option) *Queue {
	q := &Queue{
		doc:   doc,
		clock: clock.System{},
		ttl:   DefaultTTL,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Post attaches a notification with text to anchorID, replacing any
// notification already there. When the anchor is not in the document the
// call is dropped and ok is false.
func (q *Queue) Post(anchorID, text string, success bool) (n Notification, ok bool) {
	q.mu.Lock()
	if q.closed || !q.doc.Exists(anchorID) {
		q.mu.Unlock()
		q.log.Debug().Str("anchor", anchorID).Msg("anchor missing, notification dropped")
		return Notification{}, false
	}

	if i := q.indexByAnchor(anchorID); i >= 0 {
		q.log.Debug().Str("anchor", anchorID).Msg("evicting notification")
		q.removeAt(i)
	}

	id := IDFor(anchorID)
	class := ClassFailure
	if success {
		class = ClassSuccess
	}
	node := dom.NewElement("div", id, class)
	node.Text = text
	if !q.doc.AppendChild(anchorID, node) {
		q.mu.Unlock()
		q.log.Debug().Str("anchor", anchorID).Msg("anchor detached, notification dropped")
		return Notification{}, false
	}

	now := q.clock.Now()
	q.seq++
	e := &entry{
		Notification: Notification{
			ID:        id,
			AnchorID:  anchorID,
			Text:      text,
			Success:   success,
			PostedAt:  now,
			ExpiresAt: now.Add(q.ttl),
		},
		seq: q.seq,
	}
	seq := e.seq
	e.timer = q.clock.AfterFunc(q.ttl, func() { q.expire(id, seq) })
	q.entries = append(q.entries, e)
	n = e.Notification
	q.mu.Unlock()

	q.log.Debug().Str("id", id).Bool("success", success).Msg("notification posted")
	for _, fn := range q.observers {
		fn(n)
	}
	q.changed()
	return n, true
}

// Dismiss removes the notification with id. Unknown ids, repeated calls and
// calls after expiry are no-ops.
func (q *Queue) Dismiss(id string) {
	q.mu.Lock()
	i := q.indexByID(id)
	if i < 0 {
		q.mu.Unlock()
		return
	}
	q.removeAt(i)
	q.mu.Unlock()

	q.changed()
}

// expire runs from a timer. The sequence check keeps a timer that lost the
// race with Stop from removing a newer notification on the same anchor.
func (q *Queue) expire(id string, seq uint64) {
	q.mu.Lock()
	i := q.indexByID(id)
	if i < 0 || q.entries[i].seq != seq {
		q.mu.Unlock()
		return
	}
	q.removeAt(i)
	q.mu.Unlock()

	q.log.Debug().Str("id", id).Msg("notification expired")
	q.changed()
}

// Active returns the live notifications in posting order.
func (q *Queue) Active() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Notification, len(q.entries))
	for i, e := range q.entries {
		out[i] = e.Notification
	}
	return out
}

// Lookup returns the live notification attached to anchorID.
func (q *Queue) Lookup(anchorID string) (Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if i := q.indexByAnchor(anchorID); i >= 0 {
		return q.entries[i].Notification, true
	}
	return Notification{}, false
}

// Close cancels every pending timer and rejects further posts. It is called
// when the owning page is unloaded.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, e := range q.entries {
		e.timer.Stop()
	}
	q.entries = nil
	q.closed = true
}

// removeAt cancels the timer, detaches the element and drops the entry.
// Caller holds q.mu.
func (q *Queue) removeAt(i int) {
	e := q.entries[i]
	e.timer.Stop()
	q.doc.Remove(e.ID)
	q.entries = slices.Delete(q.entries, i, i+1)
}

func (q *Queue) indexByID(id string) int {
	return slices.IndexFunc(q.entries, func(e *entry) bool { return e.ID == id })
}

func (q *Queue) indexByAnchor(anchorID string) int {
	return slices.IndexFunc(q.entries, func(e *entry) bool { return e.AnchorID == anchorID })
}

func (q *Queue) changed() {
	if q.onChange != nil {
		q.onChange()
	}
}
