// Package handlers wires the HTTP surface of the site.
package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	mw "arcseva.org/seva-web/internal/middleware"
)

const defaultRequestTimeout = 30 * time.Second

// RouterConfig collects the dependencies of NewRouter.
type RouterConfig struct {
	Logger         *zap.Logger
	Site           *SiteHandlers
	RequestTimeout time.Duration
}

// NewRouter builds the chi router with the standard middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(chiMid.RequestID)
	// RealIP trusts X-Forwarded-For. Only deploy behind proxies that set it.
	r.Use(chiMid.RealIP)
	r.Use(mw.HTMX)
	r.Use(mw.Logger(cfg.Logger))
	r.Use(chiMid.Recoverer)
	r.Use(chiMid.Compress(5))
	r.Use(chiMid.Timeout(timeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.Site != nil {
		cfg.Site.Routes(r)
	}
	return r
}
