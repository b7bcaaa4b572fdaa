package tui

import (
	"fmt"
	"net/url"
	"strings"

	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/flypanel/internal/core/dispatch"
	"github.com/colonyops/flypanel/internal/core/dom"
	"github.com/colonyops/flypanel/internal/core/infotip"
	"github.com/colonyops/flypanel/internal/core/styles"
)

// rowActions are the per-row link suffixes the panel knows how to drive,
// in the order they are listed.
var rowActions = []string{
	dispatch.ActionDownload,
	dispatch.ActionGrant,
	dispatch.ActionMagnet,
	dispatch.ActionRemove,
}

var actionIcons = map[string]string{
	dispatch.ActionDownload: styles.IconQueue,
	dispatch.ActionGrant:    styles.IconUpload,
	dispatch.ActionMagnet:   styles.IconMagnet,
	dispatch.ActionRemove:   styles.IconRemove,
}

var formIcons = map[string]string{
	dispatch.SearchFormID:  styles.IconSearch,
	dispatch.MagnetFormID:  styles.IconMagnet,
	dispatch.RefreshFormID: styles.IconUpload,
}

type pageRow struct {
	ID      string
	Cells   []string
	Actions []string
}

type pageButton struct {
	ID    string
	Label string
}

type sortLink struct {
	ID    string
	Label string
}

type pageForm struct {
	ID       string
	AnchorID string
	Label    string
	FieldID  string // text field the user fills in, empty when none
	Checks   []formCheck
}

type formCheck struct {
	ID      string
	Label   string
	Checked bool
}

// pageView is the part of a document the terminal renders.
type pageView struct {
	Rows    []pageRow
	Buttons []pageButton
	Sorts   []sortLink
	Forms   []pageForm
}

var knownForms = []pageForm{
	{ID: dispatch.SearchFormID, Label: "Search", FieldID: dispatch.SearchInputID},
	{ID: dispatch.MagnetFormID, Label: "Add magnet", FieldID: dispatch.MagnetInputID},
	{ID: dispatch.RefreshFormID, Label: "Refresh share"},
}

func extractPage(doc *dom.Document) pageView {
	var v pageView

	for _, n := range doc.Query(func(n *dom.Node) bool { return n.Tag == "tr" && n.HasClass("data") && n.ID != "" }) {
		row := pageRow{ID: n.ID}
		for _, c := range n.Children {
			if c.Tag == "td" {
				row.Cells = append(row.Cells, c.TextContent())
			}
		}
		for _, a := range rowActions {
			if doc.Exists(n.ID + "-" + a) {
				row.Actions = append(row.Actions, a)
			}
		}
		v.Rows = append(v.Rows, row)
	}

	for _, n := range doc.Query(func(n *dom.Node) bool {
		_, ok := n.Attr(dispatch.AttrActionURL)
		return ok && n.ID != ""
	}) {
		label, _ := n.Attr("value")
		if label == "" {
			label = n.TextContent()
		}
		if label == "" {
			label = n.ID
		}
		v.Buttons = append(v.Buttons, pageButton{ID: n.ID, Label: label})
	}

	for _, th := range doc.Query(func(n *dom.Node) bool { return n.Tag == "th" }) {
		th.Walk(func(n *dom.Node) bool {
			if _, ok := n.Attr("href"); ok && n.Tag == "a" && n.ID != "" {
				v.Sorts = append(v.Sorts, sortLink{ID: n.ID, Label: n.TextContent()})
			}
			return true
		})
	}

	labels := map[string]string{}
	for _, n := range doc.Query(func(n *dom.Node) bool { return n.Tag == "label" }) {
		if id, ok := n.Attr("for"); ok && id != "" {
			labels[id] = strings.TrimSpace(n.TextContent())
		}
	}

	for _, f := range knownForms {
		form, ok := doc.Form(f.ID)
		if !ok {
			continue
		}
		f.AnchorID = form.SubmitGroup()
		for _, c := range form.Controls {
			if c.Tag != "input" || c.Type != "checkbox" || c.ID == "" {
				continue
			}
			label := labels[c.ID]
			if label == "" {
				label = c.Name
			}
			f.Checks = append(f.Checks, formCheck{ID: c.ID, Label: label, Checked: c.Checked})
		}
		if f.FieldID != "" && !doc.Exists(f.FieldID) {
			f.FieldID = ""
		}
		v.Forms = append(v.Forms, f)
	}

	return v
}

// form returns the page form with id.
func (v pageView) form(id string) (pageForm, bool) {
	for _, f := range v.Forms {
		if f.ID == id {
			return f, true
		}
	}
	return pageForm{}, false
}

// infotipLookup finds the live notification at an anchor.
type infotipLookup func(anchorID string) (infotip.Notification, bool)

func renderInfotip(lookup infotipLookup, anchorID string) string {
	if lookup == nil {
		return ""
	}
	n, ok := lookup(anchorID)
	if !ok {
		return ""
	}
	if n.Success {
		return styles.InfotipSuccessStyle.Render(styles.IconSuccess + " " + n.Text)
	}
	return styles.InfotipFailureStyle.Render(styles.IconFailure + " " + n.Text)
}

// renderPage draws forms, rows and buttons with any live infotips next to
// their anchors.
func renderPage(v pageView, cursor, button int, lookup infotipLookup, width int) string {
	var b strings.Builder

	for _, f := range v.Forms {
		line := styles.ButtonStyle.Render(formIcons[f.ID] + " " + f.Label)
		if tip := renderInfotip(lookup, f.AnchorID); tip != "" {
			line += "  " + tip
		}
		b.WriteString(line + "\n")
	}
	if len(v.Forms) > 0 {
		b.WriteString("\n")
	}

	if len(v.Sorts) > 0 {
		labels := make([]string, len(v.Sorts))
		for i, s := range v.Sorts {
			labels[i] = styles.LinkStyle.Render(s.Label)
		}
		b.WriteString(styles.HelpStyle.Render("sort: ") + strings.Join(labels, " ") + "\n\n")
	}

	if len(v.Rows) == 0 {
		b.WriteString(styles.StatusStyle.Render("(no entries)") + "\n")
	}
	for i, r := range v.Rows {
		text := strings.Join(r.Cells, "  ")
		if width > 4 {
			text = truncate(text, width-4)
		}
		style := styles.RowStyle
		prefix := "  "
		if i == cursor {
			style = styles.RowSelectedStyle
			prefix = "> "
		}
		b.WriteString(style.Render(prefix + text))
		if len(r.Actions) > 0 {
			icons := make([]string, len(r.Actions))
			for j, a := range r.Actions {
				icons[j] = actionIcons[a]
			}
			b.WriteString("  " + styles.DividerStyle.Render(strings.Join(icons, " ")))
		}
		for _, a := range r.Actions {
			if tip := renderInfotip(lookup, r.ID+"-"+a); tip != "" {
				b.WriteString("  " + tip)
			}
		}
		b.WriteString("\n")
	}

	if len(v.Buttons) > 0 {
		b.WriteString("\n")
		rendered := make([]string, len(v.Buttons))
		for i, btn := range v.Buttons {
			if i == button {
				rendered[i] = styles.ModalButtonSelectedStyle.Render(btn.Label)
			} else {
				rendered[i] = styles.ButtonStyle.Render(btn.Label)
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Center, rendered...))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// pagePath returns the path and query of rawURL for display.
func pagePath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.RawQuery == "" {
		return u.Path
	}
	return fmt.Sprintf("%s?%s", u.Path, u.RawQuery)
}
