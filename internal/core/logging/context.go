package logging

import "context"

type contextKey string

const (
	pageKey   contextKey = "page"
	actionKey contextKey = "action"
)

// WithPage adds the URL of the page an operation belongs to.
func WithPage(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, pageKey, url)
}

// WithAction adds the name of the user action being dispatched.
func WithAction(ctx context.Context, action string) context.Context {
	return context.WithValue(ctx, actionKey, action)
}

// GetPage retrieves the page URL from the context.
// Returns empty string if not present.
func GetPage(ctx context.Context) string {
	if v, ok := ctx.Value(pageKey).(string); ok {
		return v
	}
	return ""
}

// GetAction retrieves the action name from the context.
// Returns empty string if not present.
func GetAction(ctx context.Context) string {
	if v, ok := ctx.Value(actionKey).(string); ok {
		return v
	}
	return ""
}
