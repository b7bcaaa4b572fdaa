package infotip

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/flypanel/internal/core/clock"
	"github.com/colonyops/flypanel/internal/core/dom"
)

func newTestQueue(t *testing.T, anchors ...string) (*Queue, *dom.Document, *clock.Manual) {
	t.Helper()
	doc := dom.New("http://panel.local/queue")
	for _, a := range anchors {
		require.True(t, doc.AppendChild("", dom.NewElement("a", a, "")))
	}
	clk := clock.NewManual(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return NewQueue(doc, WithClock(clk)), doc, clk
}

func TestQueue_PostAttachesNode(t *testing.T) {
	q, doc, _ := newTestQueue(t, "row7-remove")

	n, ok := q.Post("row7-remove", "Removed", true)
	require.True(t, ok)
	assert.Equal(t, "row7-remove-infotip", n.ID)

	snap, ok := doc.Snapshot("row7-remove-infotip")
	require.True(t, ok)
	assert.Equal(t, "Removed", snap.Text)
	assert.Equal(t, ClassSuccess, snap.Class)

	anchor, _ := doc.Snapshot("row7-remove")
	require.Len(t, anchor.Children, 1)
	assert.Equal(t, "row7-remove-infotip", anchor.Children[0].ID)
}

func TestQueue_PostFailureClass(t *testing.T) {
	q, doc, _ := newTestQueue(t, "search-button")

	_, ok := q.Post("search-button", "404 Not Found", false)
	require.True(t, ok)
	assert.True(t, doc.HasClass("search-button-infotip", ClassFailure))
}

func TestQueue_PostMissingAnchorIsDropped(t *testing.T) {
	q, _, clk := newTestQueue(t)

	_, ok := q.Post("gone", "text", true)

	assert.False(t, ok)
	assert.Empty(t, q.Active())
	assert.Equal(t, 0, clk.Pending(), "no timer armed for a dropped post")
}

func TestQueue_PostSameAnchorLastWriteWins(t *testing.T) {
	q, doc, clk := newTestQueue(t, "a", "b")

	for i := range 5 {
		_, ok := q.Post("a", fmt.Sprintf("msg %d", i), i%2 == 0)
		require.True(t, ok)
	}
	q.Post("b", "other", true)

	active := q.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "msg 4", active[0].Text)
	assert.True(t, active[0].Success)

	tips := doc.Query(func(n *dom.Node) bool { return n.ID == "a-infotip" })
	assert.Len(t, tips, 1, "evicted nodes are detached")
	assert.Equal(t, 2, clk.Pending(), "evicted timers are cancelled")
}

func TestQueue_ExpiresAfterTTL(t *testing.T) {
	q, doc, clk := newTestQueue(t, "a")
	q.Post("a", "bye", true)

	clk.Advance(DefaultTTL - time.Millisecond)
	assert.Len(t, q.Active(), 1)

	clk.Advance(time.Millisecond)
	assert.Empty(t, q.Active())
	assert.False(t, doc.Exists("a-infotip"))
}

func TestQueue_EvictionRestartsTTL(t *testing.T) {
	q, _, clk := newTestQueue(t, "a")
	q.Post("a", "first", true)

	clk.Advance(4 * time.Second)
	q.Post("a", "second", true)

	clk.Advance(2 * time.Second)
	n, ok := q.Lookup("a")
	require.True(t, ok, "old timer must not remove the replacement")
	assert.Equal(t, "second", n.Text)

	clk.Advance(3 * time.Second)
	_, ok = q.Lookup("a")
	assert.False(t, ok)
}

func TestQueue_StaleTimerCannotRemoveReplacement(t *testing.T) {
	q, _, _ := newTestQueue(t, "a")
	q.Post("a", "first", true)
	q.Post("a", "second", true)

	// A timer that already fired for the first post runs after eviction.
	q.expire(IDFor("a"), 1)

	n, ok := q.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "second", n.Text)
}

func TestQueue_DismissIsIdempotent(t *testing.T) {
	q, doc, clk := newTestQueue(t, "a")
	n, _ := q.Post("a", "x", true)

	q.Dismiss(n.ID)
	assert.Empty(t, q.Active())
	assert.False(t, doc.Exists(n.ID))
	assert.Equal(t, 0, clk.Pending())

	assert.NotPanics(t, func() {
		q.Dismiss(n.ID)
		q.Dismiss("never-existed")
	})
	assert.Empty(t, q.Active())
}

func TestQueue_DismissAfterExpiry(t *testing.T) {
	q, _, clk := newTestQueue(t, "a")
	n, _ := q.Post("a", "x", true)
	clk.Advance(DefaultTTL)

	assert.NotPanics(t, func() { q.Dismiss(n.ID) })
	assert.Empty(t, q.Active())
}

func TestQueue_WithTTL(t *testing.T) {
	doc := dom.New("")
	doc.AppendChild("", dom.NewElement("a", "a", ""))
	clk := clock.NewManual(time.Unix(0, 0))
	q := NewQueue(doc, WithClock(clk), WithTTL(time.Second))

	n, _ := q.Post("a", "x", true)
	assert.True(t, time.Unix(1, 0).Equal(n.ExpiresAt))

	clk.Advance(time.Second)
	assert.Empty(t, q.Active())
}

func TestQueue_ObserversAndOnChange(t *testing.T) {
	doc := dom.New("")
	doc.AppendChild("", dom.NewElement("a", "a", ""))
	clk := clock.NewManual(time.Unix(0, 0))

	var changes int
	var seen []Notification
	q := NewQueue(doc,
		WithClock(clk),
		WithOnChange(func() { changes++ }),
		WithObserver(func(n Notification) { seen = append(seen, n) }),
	)

	q.Post("a", "one", true)
	q.Post("missing", "dropped", true)
	clk.Advance(DefaultTTL)

	assert.Equal(t, 2, changes, "post + expiry")
	require.Len(t, seen, 1)
	assert.Equal(t, "one", seen[0].Text)
}

func TestQueue_Close(t *testing.T) {
	q, _, clk := newTestQueue(t, "a", "b")
	q.Post("a", "x", true)
	q.Post("b", "y", false)

	q.Close()

	assert.Empty(t, q.Active())
	assert.Equal(t, 0, clk.Pending())

	_, ok := q.Post("a", "after close", true)
	assert.False(t, ok)
}
