package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/colonyops/flypanel/internal/core/transport"
)

func ok200(body string) transport.Outcome {
	return transport.Outcome{Status: 200, StatusText: "OK", Body: []byte(body)}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name   string
		out    transport.Outcome
		anchor string
		mode   Mode
		want   Result
	}{
		{
			name:   "message posts at anchor",
			out:    ok200(`{"message":"Removed","success":true}`),
			anchor: "row7-remove",
			want:   Result{Kind: KindMessage, Text: "Removed", Success: true, AnchorID: "row7-remove"},
		},
		{
			name:   "missing success is a failure",
			out:    ok200(`{"message":"Search failed"}`),
			anchor: "search-button",
			want:   Result{Kind: KindMessage, Text: "Search failed", AnchorID: "search-button"},
		},
		{
			name:   "redirect wins over message",
			out:    ok200(`{"redirect":"/list","message":"ignored","success":true}`),
			anchor: "search-button",
			want:   Result{Kind: KindRedirect, URL: "/list"},
		},
		{
			name: "redirect needs no anchor",
			out:  ok200(`{"redirect":"/search"}`),
			want: Result{Kind: KindRedirect, URL: "/search"},
		},
		{
			name: "message without anchor is empty",
			out:  ok200(`{"message":"x","success":true}`),
			want: Result{},
		},
		{
			name:   "http error ignores body",
			out:    transport.Outcome{Status: 404, StatusText: "Not Found", Body: []byte(`{"redirect":"/x"}`)},
			anchor: "row7-download",
			want:   Result{Kind: KindMessage, Text: "404 Not Found", AnchorID: "row7-download"},
		},
		{
			name:   "3xx is an error",
			out:    transport.Outcome{Status: 302, StatusText: "Found"},
			anchor: "a",
			want:   Result{Kind: KindMessage, Text: "302 Found", AnchorID: "a"},
		},
		{
			name:   "unparsable body is silent",
			out:    ok200(`{"message":`),
			anchor: "a",
			want:   Result{},
		},
		{
			name:   "non-object body is silent",
			out:    ok200(`[1,2]`),
			anchor: "a",
			want:   Result{},
		},
		{
			name:   "null body is silent",
			out:    ok200(`null`),
			anchor: "a",
			want:   Result{},
		},
		{
			name:   "wrong field type is silent",
			out:    ok200(`{"message":42}`),
			anchor: "a",
			want:   Result{},
		},
		{
			name:   "empty object",
			out:    ok200(`{}`),
			anchor: "a",
			want:   Result{},
		},
		{
			name:   "2xx other than 200 is silent",
			out:    transport.Outcome{Status: 204, StatusText: "No Content"},
			anchor: "a",
			want:   Result{},
		},
		{
			name:   "network failure is silent",
			out:    transport.Outcome{Status: 0},
			anchor: "a",
			want:   Result{},
		},
		{
			name:   "row mode requires rowId",
			out:    ok200(`{"message":"File queued","success":true}`),
			anchor: "row-3-download",
			mode:   ModeRow,
			want:   Result{},
		},
		{
			name:   "row mode message",
			out:    ok200(`{"message":"File queued","success":true,"rowId":"row-3"}`),
			anchor: "row-3-download",
			mode:   ModeRow,
			want:   Result{Kind: KindMessage, Text: "File queued", Success: true, AnchorID: "row-3-download"},
		},
		{
			name:   "row mode ignores redirect",
			out:    ok200(`{"redirect":"/queue","message":"File queued","success":true,"rowId":"row-3"}`),
			anchor: "row-3-download",
			mode:   ModeRow,
			want:   Result{Kind: KindMessage, Text: "File queued", Success: true, AnchorID: "row-3-download"},
		},
		{
			name:   "row mode errors still post",
			out:    transport.Outcome{Status: 500, StatusText: "Internal Server Error"},
			anchor: "row-3-grant",
			mode:   ModeRow,
			want:   Result{Kind: KindMessage, Text: "500 Internal Server Error", AnchorID: "row-3-grant"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.out, tt.anchor, tt.mode))
		})
	}
}

func TestParse(t *testing.T) {
	p, ok := Parse([]byte(`{"success":false,"message":"Already in queue","rowId":"row-1","extra":1}`))
	assert.True(t, ok)
	assert.Equal(t, Payload{Message: "Already in queue", RowID: "row-1"}, p)

	_, ok = Parse([]byte(`eval("x")`))
	assert.False(t, ok)

	_, ok = Parse(nil)
	assert.False(t, ok)
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "empty", KindEmpty.String())
	assert.Equal(t, "redirect", KindRedirect.String())
	assert.Equal(t, "message", KindMessage.String())
}
