package middleware

import (
	"net/http"
	"strings"
)

// HTMX marks requests coming from htmx so handlers can answer with fragments
func HTMX(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is := r.Header.Get("HX-Request") == "true"
		ctx := WithHTMX(r.Context(), is)
		if cur := strings.TrimSpace(r.Header.Get("HX-Current-URL")); cur != "" {
			ctx = WithCurrentURL(ctx, cur)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
