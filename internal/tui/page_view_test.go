package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/flypanel/internal/core/dom"
	"github.com/colonyops/flypanel/internal/core/infotip"
	"github.com/colonyops/flypanel/internal/core/styles"
	"github.com/colonyops/flypanel/pkg/tuitest"
)

func parseDoc(t *testing.T, html string) *dom.Document {
	t.Helper()
	doc, err := dom.Parse(strings.NewReader(html), "http://panel.test/search")
	require.NoError(t, err)
	return doc
}

func TestExtractPage(t *testing.T) {
	v := extractPage(parseDoc(t, searchHTML))

	require.Len(t, v.Rows, 2)
	assert.Equal(t, "ubuntu.iso", v.Rows[0].Cells[0])
	assert.Equal(t, []string{"download", "remove"}, v.Rows[0].Actions)
	assert.Empty(t, v.Rows[1].Actions)

	require.Len(t, v.Buttons, 1)
	assert.Equal(t, pageButton{ID: "button-clear", Label: "Clear results"}, v.Buttons[0])

	require.Len(t, v.Sorts, 1)
	assert.Equal(t, sortLink{ID: "sort-name", Label: "Name"}, v.Sorts[0])

	require.Len(t, v.Forms, 1)
	f, ok := v.form("search-form")
	require.True(t, ok)
	assert.Equal(t, "search-button", f.AnchorID)
	assert.Equal(t, "search-string", f.FieldID)

	_, ok = v.form("add-magnet-form")
	assert.False(t, ok)
}

func TestRenderPage_InfotipsNextToAnchor(t *testing.T) {
	v := extractPage(parseDoc(t, searchHTML))
	lookup := func(anchorID string) (infotip.Notification, bool) {
		switch anchorID {
		case "row-1-download":
			return infotip.Notification{AnchorID: anchorID, Text: "File queued", Success: true}, true
		case "search-button":
			return infotip.Notification{AnchorID: anchorID, Text: "No results"}, true
		}
		return infotip.Notification{}, false
	}

	out := renderPage(v, 0, 0, lookup, 100)

	rowLine, ok := tuitest.LineWith(out, "ubuntu.iso")
	require.True(t, ok)
	assert.Contains(t, rowLine, "> ")
	assert.Contains(t, rowLine, "File queued")
	assert.Contains(t, rowLine, styles.IconQueue+" "+styles.IconRemove)

	formLine, ok := tuitest.LineWith(out, "Search")
	require.True(t, ok)
	assert.Contains(t, formLine, "No results")
	assert.Contains(t, formLine, styles.IconSearch)

	otherLine, ok := tuitest.LineWith(out, "debian.iso")
	require.True(t, ok)
	assert.NotContains(t, otherLine, "File queued")
}

func TestRenderPage_Empty(t *testing.T) {
	out := renderPage(pageView{}, 0, 0, nil, 80)
	assert.Contains(t, out, "(no entries)")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefghij", 5))
}

func TestPagePath(t *testing.T) {
	assert.Equal(t, "/search", pagePath("http://panel.test/search"))
	assert.Equal(t, "/search?sort=size", pagePath("http://panel.test/search?sort=size"))
}
