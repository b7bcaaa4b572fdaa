// Package router classifies a finished call as a navigation, a notification,
// or nothing.
package router

import (
	"encoding/json"
	"strconv"

	"github.com/colonyops/flypanel/internal/core/transport"
)

// Kind discriminates Result.
type Kind int

const (
	KindEmpty Kind = iota
	KindRedirect
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindRedirect:
		return "redirect"
	case KindMessage:
		return "message"
	default:
		return "empty"
	}
}

// Result is what the caller should reflect to the user.
type Result struct {
	Kind     Kind
	URL      string // KindRedirect
	Text     string // KindMessage
	Success  bool   // KindMessage
	AnchorID string // KindMessage
}

// Payload is the JSON body the server returns for json=1 requests.
type Payload struct {
	Redirect string `json:"redirect"`
	Message  string `json:"message"`
	Success  bool   `json:"success"`
	RowID    string `json:"rowId"`
}

// Parse decodes body. Any decoding failure, including a top-level value that
// is not an object, yields ok=false.
func Parse(body []byte) (p Payload, ok bool) {
	var raw *Payload
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return Payload{}, false
	}
	return *raw, true
}

// Mode selects how a 200 response is interpreted.
type Mode int

const (
	// ModeForm honours redirects and posts messages at the caller's anchor.
	ModeForm Mode = iota
	// ModeRow ignores redirects and posts a message only when the body also
	// names a row.
	ModeRow
)

// Route interprets o for an action anchored at anchorID.
func Route(o transport.Outcome, anchorID string, mode Mode) Result {
	if o.Status >= 300 {
		return Result{
			Kind:     KindMessage,
			Text:     strconv.Itoa(o.Status) + " " + o.StatusText,
			Success:  false,
			AnchorID: anchorID,
		}
	}
	if o.Status != 200 {
		return Result{}
	}

	p, ok := Parse(o.Body)
	if !ok {
		return Result{}
	}

	switch mode {
	case ModeRow:
		if p.Message == "" || p.RowID == "" || anchorID == "" {
			return Result{}
		}
	default:
		if p.Redirect != "" {
			return Result{Kind: KindRedirect, URL: p.Redirect}
		}
		if p.Message == "" || anchorID == "" {
			return Result{}
		}
	}
	return Result{Kind: KindMessage, Text: p.Message, Success: p.Success, AnchorID: anchorID}
}
