package middleware

import "context"

// context keys are unexported to avoid collisions
type ctxKey string

const (
	ctxKeyIsHTMX     ctxKey = "is_htmx"
	ctxKeyCurrentURL ctxKey = "hx_current_url"
)

// WithHTMX marks request as HTMX
func WithHTMX(ctx context.Context, is bool) context.Context {
	return context.WithValue(ctx, ctxKeyIsHTMX, is)
}

// IsHTMX returns whether this is an htmx request
func IsHTMX(ctx context.Context) bool {
	v, _ := ctx.Value(ctxKeyIsHTMX).(bool)
	return v
}

// WithCurrentURL stores the page URL htmx reported for the request.
func WithCurrentURL(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, ctxKeyCurrentURL, raw)
}

// CurrentURL returns the HX-Current-URL value, if any.
func CurrentURL(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ctxKeyCurrentURL).(string)
	return v, ok && v != ""
}
