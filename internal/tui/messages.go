package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/colonyops/flypanel/internal/panel"
)

type (
	pageLoadedMsg struct {
		page *panel.Page
		url  string
		err  error
	}
	navigateMsg           struct{ url string }
	pageChangedMsg        struct{}
	drainNotificationsMsg struct{}

	// actionResultMsg reports an action that failed to start. Responses to
	// started actions arrive through the page's queue and navigations.
	actionResultMsg struct {
		action string
		err    error
	}
)

func loadPage(p *panel.Panel, url string) tea.Cmd {
	return func() tea.Msg {
		page, err := p.Load(context.Background(), url)
		return pageLoadedMsg{page: page, url: url, err: err}
	}
}

// waitNavigation blocks until the current page requests a navigation.
func waitNavigation(p *panel.Panel) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{url: <-p.Navigations()}
	}
}

// waitChange blocks until the current page's notifications or dialog change.
func waitChange(p *panel.Panel) tea.Cmd {
	return func() tea.Msg {
		<-p.Changes()
		return pageChangedMsg{}
	}
}
