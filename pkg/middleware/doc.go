// Package middleware provides HTTP middleware for the ripple server.
//
// This package includes:
//   - Prometheus request metrics plus websocket client and frame counters
//   - OpenTelemetry request tracing
//
// Both are plain func(http.Handler) http.Handler middleware and plug into a
// chi router.
//
// # Prometheus Metrics
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	r := chi.NewRouter()
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// Requests are labelled by chi route pattern, never by raw path. The
// websocket hooks (ClientConnected, FrameSent and friends) are called by
// the server as clients come and go.
//
// # OpenTelemetry
//
//	r.Use(middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithRequestFilter(func(r *http.Request) bool {
//	        return r.URL.Path != "/healthz"
//	    }),
//	))
//
// Handlers retrieve the request span with trace.SpanFromContext.
package middleware
