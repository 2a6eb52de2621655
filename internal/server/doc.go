// Package server provides HTTP routing, middleware, and the relay's webhook endpoints.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [ChiRouter] implementation uses a chi mux internally, so path parameters such as {id} are available
// through chi.URLParam.
//
// # Endpoints
//
//   - POST /events accepts bucket notifications and starts one job run per request
//   - GET /runs and GET /runs/{id} report recorded job runs
//   - GET /healthz reports liveness
//   - GET /metrics exposes Prometheus metrics
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
