package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// ContextHook extracts page and action from context and adds them to log events.
type ContextHook struct{}

// Run adds contextual fields to the zerolog event.
func (h ContextHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	ctx := e.GetCtx()
	if ctx == context.Background() || ctx == nil {
		return
	}

	if page := GetPage(ctx); page != "" {
		e.Str("page", page)
	}

	if action := GetAction(ctx); action != "" {
		e.Str("action", action)
	}
}
