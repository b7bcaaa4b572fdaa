package tui

import "strings"

// tab is one of the server's top-level pages.
type tab struct {
	Key   string
	Title string
	Path  string
}

var tabs = []tab{
	{"1", "Search", "/search"},
	{"2", "Queue", "/queue"},
	{"3", "Waiting", "/waiting"},
	{"4", "Uploads", "/recent-ul"},
	{"5", "Downloads", "/recent-dl"},
	{"6", "Tools", "/tools"},
	{"7", "Settings", "/settings"},
}

// tabForPath returns the index of the tab serving path, or -1.
func tabForPath(path string) int {
	for i, t := range tabs {
		if path == t.Path || strings.HasPrefix(path, t.Path+"?") {
			return i
		}
	}
	return -1
}

type keyHelp struct {
	Key  string
	Desc string
}

var pageKeys = []keyHelp{
	{"j/k", "move"},
	{"d", "download"},
	{"g", "grant"},
	{"m", "copy magnet"},
	{"x", "remove"},
	{"/", "search"},
	{"a", "add magnet"},
	{"R", "refresh share"},
	{"b", "next button"},
	{"enter", "press button"},
	{"s", "sort"},
	{"r", "reload"},
	{"n", "history"},
	{"q", "quit"},
}

func helpLine() string {
	parts := make([]string, len(pageKeys))
	for i, k := range pageKeys {
		parts[i] = "[" + k.Key + "] " + k.Desc
	}
	return strings.Join(parts, "  ")
}
