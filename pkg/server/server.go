package server

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/ripple/internal/config"
	"github.com/vango-dev/ripple/internal/snapshot"
	"github.com/vango-dev/ripple/pkg/host/wirehost"
	"github.com/vango-dev/ripple/pkg/metrics"
	"github.com/vango-dev/ripple/pkg/middleware"
	"github.com/vango-dev/ripple/pkg/protocol"
	"github.com/vango-dev/ripple/pkg/reactive"
	"github.com/vango-dev/ripple/pkg/vdom"
)

// App builds the root of the served tree. It is called once, before the
// server accepts connections.
type App func(rt *reactive.Runtime) *vdom.VNode

// Server renders one App into a wire host and streams every committed
// change to its websocket clients.
//
// All reactive state and the rendered tree belong to the runtime loop
// goroutine started by Start. Other goroutines reach them through
// Dispatch or Do.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger

	rt       *reactive.Runtime
	host     *wirehost.Host
	renderer *vdom.Renderer
	store    snapshot.Store

	registry       *prometheus.Registry
	metrics        *middleware.Metrics
	tracerProvider trace.TracerProvider
	upgrader       websocket.Upgrader
	router         chi.Router

	startOnce sync.Once
	stopped   chan struct{}

	mu      sync.RWMutex
	clients map[string]*client
	nextSeq uint64
	closing bool
	wg      sync.WaitGroup

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRegistry sets the Prometheus registry served on /metrics.
// Default: a fresh registry with Go and process collectors.
func WithRegistry(registry *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = registry
	}
}

// WithStore sets the snapshot store, overriding the configured backend.
func WithStore(store snapshot.Store) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithTracerProvider sets the tracer provider used for request, flush
// and render spans. Default: the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Server) {
		s.tracerProvider = tp
	}
}

// New creates a server and renders app into it. A nil cfg uses the
// defaults.
func New(cfg *config.Config, app App, opts ...Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg:     cfg,
		clients: make(map[string]*client),
		stopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	s.logger = s.logger.With("component", "server")

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	if s.tracerProvider == nil {
		s.tracerProvider = otel.GetTracerProvider()
	}
	if s.store == nil {
		store, err := snapshot.Open(cfg.Snapshot)
		if err != nil {
			return nil, err
		}
		s.store = store
	}

	core := metrics.New(metrics.WithRegistry(s.registry))
	tracer := s.tracerProvider.Tracer("ripple")

	s.metrics = middleware.NewMetrics(middleware.WithRegistry(s.registry))
	s.rt = reactive.NewRuntime(
		reactive.WithLogger(s.logger),
		reactive.WithMetrics(core),
		reactive.WithTracer(tracer),
		reactive.WithTaskBuffer(cfg.Server.TaskBuffer),
	)
	s.host = wirehost.New()
	s.renderer = vdom.NewRenderer(s.host,
		vdom.WithRuntime(s.rt),
		vdom.WithLogger(s.logger),
		vdom.WithMetrics(core),
		vdom.WithTracer(tracer),
		vdom.WithStrictKeys(cfg.Renderer.StrictKeys),
	)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}

	s.renderer.Render(app(s.rt), s.host.Root())
	s.rt.Tick()
	s.publish()
	s.nextSeq = s.host.NextSeq()

	s.router = s.routes()
	return s, nil
}

// Handler returns the server's HTTP handler. Routes that read the tree
// wait for the runtime loop, so Start must be called before serving.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Runtime returns the runtime the App was rendered with. Its state must
// only be touched from tasks passed to Dispatch or Do.
func (s *Server) Runtime() *reactive.Runtime {
	return s.rt
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Start runs the runtime loop on its own goroutine until ctx is done.
// Calls after the first are no-ops.
func (s *Server) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go func() {
			defer close(s.stopped)
			if err := s.rt.Run(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
				s.logger.Error("runtime loop stopped", "error", err)
			}
		}()
	})
}

// Dispatch queues fn on the runtime loop. After fn and the effects it
// triggers have run, the resulting ops are sent to every client. It
// returns false when the task queue is full.
func (s *Server) Dispatch(fn func()) bool {
	return s.dispatch(fn, nil)
}

// Do runs fn like Dispatch and waits until its ops have been published.
func (s *Server) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !s.dispatch(fn, done) {
		return errQueueFull
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) dispatch(fn func(), done chan struct{}) bool {
	return s.rt.Dispatch(func() {
		if done != nil {
			defer close(done)
		}
		defer s.publish()
		defer s.rt.Tick()
		fn()
	})
}

var (
	errQueueFull   = stderrors.New("server: task queue full")
	errLoopStopped = stderrors.New("server: runtime loop stopped")
)

// call runs fn on the runtime loop without publishing and waits for it.
// fn may never run once ctx is done or the loop has stopped.
func (s *Server) call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !s.rt.Dispatch(func() {
		defer close(done)
		fn()
	}) {
		return errQueueFull
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		select {
		case <-done:
			return nil
		default:
			return errLoopStopped
		}
	}
}

// publish flushes the host and broadcasts the frame. It runs at the end
// of every loop task, and clients register from a loop task too, so a
// client's init frame and the frames it is sent never overlap or skip.
func (s *Server) publish() {
	f := s.host.Flush()
	if f == nil {
		return
	}

	data, err := protocol.NewFrame(protocol.FrameOps, protocol.EncodeOps(f)).Encode()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSeq = s.host.NextSeq()
	if err != nil {
		// Clients cannot follow a frame they never get; make them reconnect.
		s.logger.Error("ops frame not sent", "seq", f.Seq, "error", err)
		for _, c := range s.clients {
			c.close(protocol.CloseError)
		}
		return
	}
	for _, c := range s.clients {
		if !c.enqueue(data, protocol.FrameOps) {
			c.logger.Warn("client too slow, disconnecting", "seq", f.Seq)
			s.metrics.WebSocketError("slow_client")
			c.close(protocol.CloseError)
		}
	}
}

// HTML serializes the current tree on the runtime loop.
func (s *Server) HTML(ctx context.Context) (string, error) {
	var html string
	err := s.call(ctx, func() {
		html = s.host.Mirror().HTML()
	})
	return html, err
}

// NextSeq returns the sequence number of the next ops frame.
func (s *Server) NextSeq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextSeq
}

// Clients returns the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// Run starts the runtime loop and serves HTTP on the configured address
// until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	loopCtx, stopLoop := context.WithCancel(context.WithoutCancel(ctx))
	defer stopLoop()
	s.Start(loopCtx)

	s.httpServer = &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.cfg.Server.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout())
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown disconnects every client with a ServerShutdown close frame,
// then stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	for _, c := range s.clients {
		c.close(protocol.CloseServerShutdown)
	}
	s.mu.Unlock()

	waited := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		s.logger.Warn("clients still connected at shutdown deadline")
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
