package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/colonyops/flypanel/internal/core/config"
)

const testPage = `<html><body>
<form method="POST" action="/xsearch" id="search-form">
<input id="search-string" name="s" value="">
<div class="checkbox"><input type="checkbox" name="ofs" id="checkbox-ofs"><label for="checkbox-ofs">Only free slots</label></div>
<div id="search-button"><input type="submit" value="Search"></div>
</form>
<form method="POST" action="/xrefresh" id="refresh-share-form">
<div id="refresh-button"><input type="submit" value="Refresh"></div>
</form>
<table>
<tr class="data" id="row-3" data-magnet="magnet:?xt=urn:tree:tiger:XYZ">
<td><a id="row-3-download" href="/xsrdl?id=3">dl</a> <a id="row-3-remove" href="/xqrm?id=3">rm</a></td>
</tr>
</table>
<a id="sort-size" href="/search?sort=size">Size</a>
<input type="button" id="button-clear" data-action-url="/xsrclr" value="Clear">
</body></html>`

type recorder struct {
	mu     sync.Mutex
	bodies map[string]string
}

func (r *recorder) body(path string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bodies[path]
}

func newTestServer(t *testing.T) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{bodies: map[string]string{}}
	jsonReply := func(body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			b, _ := io.ReadAll(r.Body)
			rec.mu.Lock()
			rec.bodies[r.URL.Path] = string(b) + r.URL.RawQuery
			rec.mu.Unlock()
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(body))
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(testPage))
	})
	mux.HandleFunc("/xsrdl", jsonReply(`{"message":"File queued","success":true,"rowId":"row-3"}`))
	mux.HandleFunc("/xsearch", jsonReply(`{"redirect":"/search?results=1"}`))
	mux.HandleFunc("/xrefresh", jsonReply(`{"message":"Share refresh started","success":true}`))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestApp(t *testing.T, serverURL string) (*cli.Command, *bytes.Buffer) {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Server.URL = serverURL
	cfg.DataDir = t.TempDir()
	flags := &Flags{Config: &cfg}

	var out bytes.Buffer
	app := &cli.Command{
		Name:      "flypanel",
		Writer:    &out,
		ErrWriter: io.Discard,
		// Keep exit errors from terminating the test binary.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	app = NewActionCmd(flags).Register(app)
	app = NewSubmitCmd(flags).Register(app)
	app = NewConfigValidateCmd(flags).Register(app)
	return app, &out
}

func emptyFields(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fields.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))
	return path
}

func decodeReport(t *testing.T, out *bytes.Buffer) Report {
	t.Helper()
	var rep Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep), out.String())
	return rep
}

func TestActionCmd_Download(t *testing.T) {
	srv, rec := newTestServer(t)
	app, out := newTestApp(t, srv.URL)

	err := app.Run(context.Background(), []string{"flypanel", "action", "--page", "/search", "--json", "download", "row-3"})
	require.NoError(t, err)

	rep := decodeReport(t, out)
	assert.Equal(t, Report{
		Action:  "download",
		Target:  "row-3-download",
		Kind:    "message",
		Text:    "File queued",
		Success: true,
		Status:  200,
	}, rep)
	assert.Equal(t, "id=3&json=1", rec.body("/xsrdl"))
}

func TestActionCmd_MissingRow(t *testing.T) {
	srv, _ := newTestServer(t)
	app, out := newTestApp(t, srv.URL)

	err := app.Run(context.Background(), []string{"flypanel", "action", "--page", "/search", "download", "row-9"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row-9-download")

	var body struct {
		Message string         `json:"message"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &body))
	assert.Contains(t, body.Message, "row-9-download")
	assert.Equal(t, "/search", body.Data["page"])
}

func TestActionCmd_RemoveRequiresYes(t *testing.T) {
	srv, _ := newTestServer(t)
	app, out := newTestApp(t, srv.URL)

	err := app.Run(context.Background(), []string{"flypanel", "action", "--page", "/search", "remove", "row-3"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Really remove?")
	assert.Empty(t, out.String())
}

func TestActionCmd_RemoveConfirmed(t *testing.T) {
	srv, _ := newTestServer(t)
	app, out := newTestApp(t, srv.URL)

	err := app.Run(context.Background(), []string{"flypanel", "action", "--page", "/search", "--json", "remove", "--yes", "row-3"})
	require.NoError(t, err)

	rep := decodeReport(t, out)
	assert.Equal(t, "navigate", rep.Kind)
	assert.Equal(t, srv.URL+"/xqrm?id=3", rep.URL)
}

func TestActionCmd_ButtonAndSort(t *testing.T) {
	srv, _ := newTestServer(t)

	app, out := newTestApp(t, srv.URL)
	require.NoError(t, app.Run(context.Background(), []string{"flypanel", "action", "--page", "/search", "--json", "button", "button-clear"}))
	assert.Equal(t, srv.URL+"/xsrclr", decodeReport(t, out).URL)

	app, out = newTestApp(t, srv.URL)
	require.NoError(t, app.Run(context.Background(), []string{"flypanel", "action", "--page", "/search", "--json", "sort", "sort-size"}))
	assert.Equal(t, srv.URL+"/search?sort=size", decodeReport(t, out).URL)
}

func TestSubmitCmd_SearchRedirect(t *testing.T) {
	srv, rec := newTestServer(t)
	app, out := newTestApp(t, srv.URL)

	err := app.Run(context.Background(), []string{
		"flypanel", "submit", "--page", "/search", "--json",
		"--file", emptyFields(t), "--set", "search-string=ubuntu iso", "search-form",
	})
	require.NoError(t, err)

	rep := decodeReport(t, out)
	assert.Equal(t, "navigate", rep.Kind)
	assert.Equal(t, srv.URL+"/search?results=1", rep.URL)
	assert.Equal(t, "s=ubuntu%20iso&json=1", rec.body("/xsearch"))
}

func TestSubmitCmd_SearchChecksCheckbox(t *testing.T) {
	srv, rec := newTestServer(t)
	app, _ := newTestApp(t, srv.URL)

	err := app.Run(context.Background(), []string{
		"flypanel", "submit", "--page", "/search", "--json", "--file", emptyFields(t),
		"--set", "search-string=debian", "--set", "checkbox-ofs=1", "search-form",
	})
	require.NoError(t, err)
	assert.Equal(t, "s=debian&ofs=on&json=1", rec.body("/xsearch"))
}

func TestSubmitCmd_Message(t *testing.T) {
	srv, _ := newTestServer(t)
	app, out := newTestApp(t, srv.URL)

	err := app.Run(context.Background(), []string{
		"flypanel", "submit", "--page", "/search", "--json", "--file", emptyFields(t), "refresh-share-form",
	})
	require.NoError(t, err)

	rep := decodeReport(t, out)
	assert.Equal(t, "message", rep.Kind)
	assert.Equal(t, "Share refresh started", rep.Text)
	assert.Equal(t, "refresh-button", rep.Target)
}

func TestSubmitCmd_UnknownField(t *testing.T) {
	srv, _ := newTestServer(t)
	app, _ := newTestApp(t, srv.URL)

	err := app.Run(context.Background(), []string{
		"flypanel", "submit", "--page", "/search", "--file", emptyFields(t), "--set", "nope=1", "search-form",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestConfigValidateCmd_JSON(t *testing.T) {
	app, out := newTestApp(t, "http://localhost:8080")

	require.NoError(t, app.Run(context.Background(), []string{"flypanel", "config", "validate", "--format", "json"}))

	var got struct {
		Valid bool `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.True(t, got.Valid)
}

func TestFieldErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Server.URL = "ftp://x"
	cfg.Infotip.TTL = -1

	errs := fieldErrors(cfg.Validate())
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"server.url", "infotip.ttl"}, fields)
	assert.Nil(t, fieldErrors(nil))
}
