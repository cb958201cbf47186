// Package site serves the embedded evaluation dashboard.
//
// The page is static; it reads everything it shows from the JSON API and
// draws the accuracy chart client side.
package site

import (
	"context"
	"net/http"
)

// DashboardPath is where the dashboard page is mounted.
const DashboardPath = "/dashboard"

// Middleware decorates a handler with cross-cutting concerns such as metrics.
type Middleware func(next http.HandlerFunc, endpoint string) http.HandlerFunc

// Option configures Register.
type Option func(*options)

type options struct {
	wrap Middleware
}

// WithMiddleware wraps every site route with m.
func WithMiddleware(m Middleware) Option {
	return func(o *options) {
		if m != nil {
			o.wrap = m
		}
	}
}

// Register attaches the dashboard routes to mux:
//
//	GET /            -> redirect to /dashboard
//	GET /dashboard   -> dashboard page
//	GET /assets/...  -> dashboard scripts and styles
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	o := &options{wrap: func(next http.HandlerFunc, _ string) http.HandlerFunc { return next }}
	for _, opt := range opts {
		opt(o)
	}

	root := NewRootHandler()
	assets := http.StripPrefix("/assets/", http.FileServerFS(assetsFS()))

	mux.HandleFunc("/", o.wrap(root.HandleRoot, "root"))
	mux.HandleFunc(DashboardPath, o.wrap(root.HandleDashboard, "dashboard"))
	mux.HandleFunc("/assets/", o.wrap(assets.ServeHTTP, "assets"))
}

// RootHandler handles the page routes.
type RootHandler struct{}

// NewRootHandler creates a new root handler.
func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// HandleRoot redirects the bare root to the dashboard. Any other path that
// reaches the catch-all route is unknown.
func (h *RootHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, DashboardPath, http.StatusFound)
}

// HandleDashboard serves the dashboard page.
func (h *RootHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	http.ServeFileFS(w, r, pageFS(), "index.html")
}
