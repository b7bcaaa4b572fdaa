package tui

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/flypanel/internal/core/clock"
	"github.com/colonyops/flypanel/internal/core/infotip"
	"github.com/colonyops/flypanel/internal/core/transport"
	"github.com/colonyops/flypanel/internal/panel"
	"github.com/colonyops/flypanel/pkg/tuitest"
)

const searchHTML = `<html><body>
<form method="POST" action="/xsearch" id="search-form">
<input id="search-string" name="s" value="">
<div class="checkbox"><input type="checkbox" name="ofs" id="checkbox-ofs"><label for="checkbox-ofs">Only free slots</label></div>
<div class="button-container" id="search-button"><input type="submit" value="Search"></div>
</form>
<table>
<tr><th><a id="sort-name" href="/search?sort=name">Name</a></th></tr>
<tr class="data" id="row-1" data-magnet="magnet:?xt=urn:tree:tiger:ABC">
<td>ubuntu.iso</td>
<td><a id="row-1-download" href="/xsrdl?id=1">dl</a> <a id="row-1-remove" href="/xqrm?id=1">rm</a></td>
</tr>
<tr class="data" id="row-2"><td>debian.iso</td></tr>
</table>
<input type="button" id="button-clear" data-action-url="/xsrclr" value="Clear results">
</body></html>`

type testServer struct {
	*httptest.Server

	mu         sync.Mutex
	searchBody string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{}
	mux := http.NewServeMux()
	page := func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchHTML))
	}
	mux.HandleFunc("/search", page)
	mux.HandleFunc("/queue", page)
	mux.HandleFunc("/xsrdl", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"File queued","success":true,"rowId":"row-1"}`))
	})
	mux.HandleFunc("/xsearch", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		ts.mu.Lock()
		ts.searchBody = string(b)
		ts.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"No results","success":false}`))
	})
	ts.Server = httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) lastSearch() string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.searchBody
}

func newTestModel(t *testing.T, srv *testServer, historySize int) (Model, *panel.Panel, *NotificationBuffer) {
	t.Helper()
	buf := NewNotificationBuffer()
	p := panel.New(transport.New(), panel.Options{
		Clock:          clock.NewManual(time.Unix(0, 0)),
		OnNotification: buf.Push,
	})
	t.Cleanup(p.Close)

	m := New(Options{
		Panel:       p,
		Buffer:      buf,
		StartURL:    srv.URL + "/search",
		PageURL:     func(path string) string { return srv.URL + path },
		HistorySize: historySize,
	})
	m.width, m.height = 120, 40
	return m, p, buf
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

// runCmd executes cmd and any batched commands it expands to. Only use it on
// commands that do not wait on channels.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func loaded(t *testing.T, m Model, p *panel.Panel, url string) Model {
	t.Helper()
	m, _ = update(t, m, loadPage(p, url)())
	require.NotNil(t, m.page)
	return m
}

func TestModel_LoadsPage(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	assert.True(t, m.loading)

	m = loaded(t, m, p, srv.URL+"/search")

	assert.False(t, m.loading)
	require.Len(t, m.view.Rows, 2)
	assert.Equal(t, "row-1", m.view.Rows[0].ID)
	assert.Equal(t, []string{"download", "remove"}, m.view.Rows[0].Actions)

	out := tuitest.Plain(m.render())
	assert.Contains(t, out, "ubuntu.iso")
	assert.Contains(t, out, "Clear results")
	assert.Contains(t, out, "/search")
}

func TestModel_LoadFailureKeepsStatus(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)

	m, _ = update(t, m, loadPage(p, srv.URL+"/missing")())

	assert.Nil(t, m.page)
	assert.False(t, m.loading)
	assert.Contains(t, m.status, "/missing")
}

func TestModel_CursorMovesWithinRows(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	m, _ = update(t, m, tuitest.Key("j"))
	assert.Equal(t, 1, m.cursor)
	m, _ = update(t, m, tuitest.Key("j"))
	assert.Equal(t, 1, m.cursor, "cursor stops at last row")
	m, _ = update(t, m, tuitest.Key("k"))
	assert.Equal(t, 0, m.cursor)
}

func TestModel_DownloadShowsInfotip(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	m, cmd := update(t, m, tuitest.Key("d"))
	require.NotNil(t, cmd)
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)
	res, ok := msgs[0].(actionResultMsg)
	require.True(t, ok)
	require.NoError(t, res.err)

	require.Eventually(t, func() bool {
		_, ok := m.page.Queue.Lookup("row-1-download")
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	m, _ = update(t, m, pageChangedMsg{})
	line, ok := tuitest.LineWith(m.render(), "ubuntu.iso")
	require.True(t, ok)
	assert.Contains(t, line, "File queued")
}

func TestModel_ActionOnMissingTargetIsSilent(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	m, _ = update(t, m, tuitest.Key("j")) // row-2 has no links
	_, cmd := update(t, m, tuitest.Key("d"))
	msgs := runCmd(cmd)
	require.Len(t, msgs, 1)

	m, _ = update(t, m, msgs[0])
	assert.Empty(t, m.status)
}

func TestModel_RemoveConfirmsThenNavigates(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	_, cmd := update(t, m, tuitest.Key("x"))
	runCmd(cmd)
	require.True(t, m.page.Modal.Open())

	m, _ = update(t, m, pageChangedMsg{})
	assert.Contains(t, tuitest.Plain(m.render()), "Really remove?")

	// Keys go to the dialog while it is open.
	m, _ = update(t, m, tuitest.Key("l"))
	assert.Equal(t, 1, m.modalCursor)
	m, _ = update(t, m, tuitest.Key("h"))
	assert.Equal(t, 0, m.modalCursor)
	assert.Equal(t, 0, m.cursor)

	m, _ = update(t, m, tuitest.Key("enter"))
	assert.False(t, m.page.Modal.Open())

	select {
	case url := <-p.Navigations():
		assert.Equal(t, srv.URL+"/xqrm?id=1", url)
	case <-time.After(time.Second):
		t.Fatal("no navigation requested")
	}
}

func TestModel_DialogEscapeDismisses(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	_, cmd := update(t, m, tuitest.Key("x"))
	runCmd(cmd)
	m, _ = update(t, m, tuitest.Key("esc"))

	assert.False(t, m.page.Modal.Open())
	select {
	case url := <-p.Navigations():
		t.Fatalf("unexpected navigation to %s", url)
	default:
	}
}

func TestModel_SearchInputSubmitsForm(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	m, _ = update(t, m, tuitest.Key("/"))
	require.Equal(t, stateInput, m.state)
	assert.Equal(t, "search-form", m.inputForm.ID)

	m.input.SetValue("debian")
	m, cmd := update(t, m, tuitest.Key("enter"))
	assert.Equal(t, stateNormal, m.state)
	runCmd(cmd)

	require.Eventually(t, func() bool {
		_, ok := m.page.Queue.Lookup("search-button")
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, "s=debian&json=1", srv.lastSearch())
	v, _ := m.page.Doc.Attr("search-string", "value")
	assert.Empty(t, v, "search field is cleared after submit")
}

func TestModel_SearchInputTogglesCheckbox(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	m, _ = update(t, m, tuitest.Key("/"))
	require.Len(t, m.inputForm.Checks, 1)
	assert.Equal(t, "Only free slots", m.inputForm.Checks[0].Label)

	m, _ = update(t, m, tuitest.Key("alt+1"))
	assert.True(t, m.inputForm.Checks[0].Checked)
	line, ok := tuitest.LineWith(m.render(), "Only free slots")
	require.True(t, ok)
	assert.Contains(t, line, "[x]")

	m, _ = update(t, m, tuitest.Key("alt+2"))
	assert.Equal(t, stateInput, m.state, "out of range toggle is ignored")

	m.input.SetValue("debian")
	m, cmd := update(t, m, tuitest.Key("enter"))
	runCmd(cmd)

	require.Eventually(t, func() bool {
		return srv.lastSearch() != ""
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "s=debian&ofs=on&json=1", srv.lastSearch())
}

func TestModel_DialogWithoutActions(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	m.page.Modal.Show("Working", nil, "")
	for _, k := range []string{"left", "right", "tab", "enter", "y", "n"} {
		assert.NotPanics(t, func() { m, _ = update(t, m, tuitest.Key(k)) }, k)
	}
	assert.True(t, m.page.Modal.Open())

	m, _ = update(t, m, tuitest.Key("esc"))
	assert.False(t, m.page.Modal.Open())
}

func TestModel_InputEscapeCancels(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	m, _ = update(t, m, tuitest.Key("/"))
	m.input.SetValue("abc")
	m, cmd := update(t, m, tuitest.Key("esc"))

	assert.Nil(t, cmd)
	assert.Equal(t, stateNormal, m.state)
	assert.Empty(t, m.input.Value())
}

func TestModel_MagnetInputNeedsForm(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	m, _ = update(t, m, tuitest.Key("a"))
	assert.Equal(t, stateNormal, m.state)
}

func TestModel_TabKeysLoadPages(t *testing.T) {
	srv := newTestServer(t)
	m, p, _ := newTestModel(t, srv, 0)
	m = loaded(t, m, p, srv.URL+"/search")

	m, cmd := update(t, m, tuitest.Key("2"))
	assert.True(t, m.loading)

	var loadedMsg *pageLoadedMsg
	for _, msg := range runCmd(cmd) {
		if lm, ok := msg.(pageLoadedMsg); ok {
			loadedMsg = &lm
		}
	}
	require.NotNil(t, loadedMsg)
	assert.Equal(t, srv.URL+"/queue", loadedMsg.url)

	m, _ = update(t, m, *loadedMsg)
	assert.Equal(t, "/queue", m.currentPath())
	assert.Equal(t, 1, tabForPath(m.currentPath()))
}

func TestModel_HistoryIsCapped(t *testing.T) {
	srv := newTestServer(t)
	m, _, buf := newTestModel(t, srv, 2)

	for _, text := range []string{"one", "two", "three"} {
		buf.Push("/search", infotip.Notification{Text: text})
	}
	m, cmd := update(t, m, drainNotificationsMsg{})
	assert.NotNil(t, cmd)

	require.Len(t, m.history, 2)
	assert.Equal(t, "two", m.history[0].Notification.Text)
	assert.Equal(t, "three", m.history[1].Notification.Text)
}

func TestModel_NotificationHistoryModal(t *testing.T) {
	srv := newTestServer(t)
	m, _, buf := newTestModel(t, srv, 0)

	buf.Push("/search", infotip.Notification{Text: "Magnet link copied", Success: true})
	m, _ = update(t, m, drainNotificationsMsg{})

	m, _ = update(t, m, tuitest.Key("n"))
	require.Equal(t, stateShowingNotifications, m.state)
	assert.Contains(t, tuitest.Plain(m.render()), "Magnet link copied")

	m, _ = update(t, m, tuitest.Key("esc"))
	assert.Equal(t, stateNormal, m.state)
	assert.Nil(t, m.notificationModal)
}

func TestModel_Quit(t *testing.T) {
	srv := newTestServer(t)
	m, _, _ := newTestModel(t, srv, 0)

	m, cmd := update(t, m, tuitest.Key("q"))
	assert.True(t, m.quitting)
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestTabForPath(t *testing.T) {
	assert.Equal(t, 0, tabForPath("/search"))
	assert.Equal(t, 0, tabForPath("/search?sort=name"))
	assert.Equal(t, 4, tabForPath("/recent-dl"))
	assert.Equal(t, -1, tabForPath("/xsrdl"))
}
