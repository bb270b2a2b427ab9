package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/internal/snapshot"
	"github.com/vango-dev/ripple/pkg/middleware"
	"github.com/vango-dev/ripple/pkg/protocol"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)
	r.Use(s.metrics.Handler)
	r.Use(middleware.OpenTelemetry(
		middleware.WithTracerProvider(s.tracerProvider),
		middleware.WithRequestFilter(func(r *http.Request) bool {
			return r.URL.Path != "/healthz" && r.URL.Path != "/metrics"
		}),
	))

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))
	r.Route("/snapshot", func(r chi.Router) {
		r.Post("/", s.handleSnapshotCreate)
		r.Get("/{key}", s.handleSnapshotGet)
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.LogAttrs(r.Context(), slog.LevelDebug, "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", chimw.GetReqID(r.Context())),
		)
	})
}

const pageHead = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>ripple</title></head>
<body><div id="root">`

const pageTail = `</div></body>
</html>
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	html, err := s.HTML(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, pageHead)
	io.WriteString(w, html)
	io.WriteString(w, pageTail)
}

type healthResponse struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	NextSeq uint64 `json:"nextSeq"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	resp := healthResponse{Status: "ok", Clients: len(s.clients), NextSeq: s.nextSeq}
	if s.closing {
		resp.Status = "shutting_down"
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshotCreate(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "snapshots are disabled", http.StatusServiceUnavailable)
		return
	}

	html, err := s.HTML(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	key := snapshot.NewKey(time.Now())
	if err := s.store.Put(r.Context(), key, []byte(html)); err != nil {
		s.logger.Error("snapshot failed", "key", key, "error", err)
		http.Error(w, errors.FromError(err, errors.ErrSnapshotWrite).FormatCompact(), http.StatusBadGateway)
		return
	}

	s.logger.Info("snapshot stored", "key", key)
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

func (s *Server) handleSnapshotGet(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		http.Error(w, "snapshots are disabled", http.StatusServiceUnavailable)
		return
	}

	key := chi.URLParam(r, "key")
	if !snapshot.ValidKey(key) {
		http.Error(w, "invalid snapshot key", http.StatusBadRequest)
		return
	}

	html, err := s.store.Get(r.Context(), key)
	switch {
	case errors.HasCode(err, errors.ErrSnapshotMissing):
		http.NotFound(w, r)
		return
	case err != nil:
		s.logger.Error("snapshot read failed", "key", key, "error", err)
		http.Error(w, errors.FromError(err, errors.ErrSnapshotRead).FormatCompact(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// handleWebSocket upgrades the connection, sends the init frame and then
// streams ops frames until either side closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied.
		s.logger.Warn("websocket upgrade failed", "error", err)
		s.metrics.WebSocketError("upgrade")
		return
	}

	c := newClient(uuid.NewString(), conn, s.cfg.Server.ClientBuffer, s.logger)

	// The init frame is built on the loop, between two publishes, so the
	// client's first ops frame is exactly hello.NextSeq.
	var (
		hello      *protocol.Init
		registered bool
		reason     = protocol.CloseServerShutdown
	)
	err = s.call(context.Background(), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closing {
			return
		}
		hello = s.host.Init(c.id)
		data, err := protocol.NewFrame(protocol.FrameInit, protocol.EncodeInit(hello)).Encode()
		if err != nil {
			s.logger.Error("init frame not sent", "client", c.id, "error", err)
			reason = protocol.CloseError
			return
		}
		c.enqueue(data, protocol.FrameInit)
		s.clients[c.id] = c
		s.wg.Add(1)
		registered = true
	})
	if err != nil || !registered {
		if err != nil {
			s.logger.Warn("client not registered", "client", c.id, "error", err)
			reason = protocol.CloseError
		}
		c.close(reason)
		s.writeLoop(c)
		return
	}

	defer func() {
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		s.metrics.ClientDisconnected()
		c.logger.Info("client disconnected")
		s.wg.Done()
	}()

	s.metrics.ClientConnected()
	c.logger.Info("client connected", "seq", hello.NextSeq)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(c)
	}()
	s.readLoop(c)
	<-writerDone
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
