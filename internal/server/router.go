package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// ChiRouter is an HTTP router implementing the [Router] interface on top of chi.
type ChiRouter struct {
	mux         *chi.Mux
	middlewares []Middleware
}

// NewChiRouter creates a new [ChiRouter] instance.
func NewChiRouter() *ChiRouter {
	return &ChiRouter{
		mux:         chi.NewRouter(),
		middlewares: []Middleware{},
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Middleware only wraps handlers registered after it is added.
func (r *ChiRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path.
//
// The handler is wrapped with all registered middleware. chi answers other methods on the same path with 405.
func (r *ChiRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Method(strings.ToUpper(method), path, r.Apply(handler))
}

// Handler registers a custom Handler implementation.
//
// All routes returned by [Handler.Routes] are registered with this handler. A route without a method
// matches every method.
func (r *ChiRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)

	for _, route := range handler.Routes() {
		method, path, ok := strings.Cut(route, " ")
		if !ok {
			r.mux.Handle(route, wrapped)
			continue
		}
		r.mux.Method(strings.ToUpper(method), strings.TrimSpace(path), wrapped)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *ChiRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *ChiRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
