package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ClientConnected()
	m.ClientDisconnected()
	m.FrameSent("ops", 10)
	m.WebSocketError("write")

	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	r := chi.NewRouter()
	r.Use(m.Handler)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chi.URLParam(r, "id")))
	})
	r.Get("/empty", func(http.ResponseWriter, *http.Request) {})

	for _, path := range []string{"/items/1", "/items/2", "/empty", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	tests := []struct {
		route, status string
		want          float64
	}{
		{"/items/{id}", "200", 2},
		{"/empty", "200", 1},
		{"unmatched", "404", 1},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(m.requests.WithLabelValues(tt.route, tt.status)); got != tt.want {
			t.Errorf("requests[%s,%s] = %v, want %v", tt.route, tt.status, got, tt.want)
		}
	}
	if n := testutil.CollectAndCount(m.requestDuration); n != 3 {
		t.Errorf("request duration series = %d, want 3", n)
	}
}

func TestWebSocketCounters(t *testing.T) {
	m := NewMetrics(WithRegistry(prometheus.NewRegistry()))

	m.ClientConnected()
	m.ClientConnected()
	m.ClientDisconnected()
	m.FrameSent("init", 100)
	m.FrameSent("ops", 20)
	m.FrameSent("ops", 5)
	m.WebSocketError("write")

	if got := testutil.ToFloat64(m.clients); got != 1 {
		t.Errorf("clients = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.framesSent.WithLabelValues("ops")); got != 2 {
		t.Errorf("framesSent[ops] = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.bytesSent); got != 125 {
		t.Errorf("bytesSent = %v, want 125", got)
	}
	if got := testutil.ToFloat64(m.wsErrors.WithLabelValues("write")); got != 1 {
		t.Errorf("wsErrors[write] = %v, want 1", got)
	}
}

func TestStatusLabel(t *testing.T) {
	plain := httptest.NewRequest(http.MethodGet, "/", nil)
	upgrade := httptest.NewRequest(http.MethodGet, "/ws", nil)
	upgrade.Header.Set("Upgrade", "websocket")

	tests := []struct {
		name string
		r    *http.Request
		code int
		want string
	}{
		{"written", plain, 404, "404"},
		{"nothing written", plain, 0, "200"},
		{"hijacked", upgrade, 0, "101"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusLabel(tt.r, tt.code); got != tt.want {
				t.Errorf("statusLabel = %q, want %q", got, tt.want)
			}
		})
	}
}

// recordingProvider hands out spans that remember their name, attributes
// and status.
type recordingProvider struct {
	noop.TracerProvider
	spans []*recordingSpan
}

func (p *recordingProvider) Tracer(string, ...trace.TracerOption) trace.Tracer {
	return recordingTracer{p: p}
}

type recordingTracer struct {
	noop.Tracer
	p *recordingProvider
}

func (t recordingTracer) Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	cfg := trace.NewSpanStartConfig(opts...)
	s := &recordingSpan{name: name, attrs: cfg.Attributes()}
	t.p.spans = append(t.p.spans, s)
	return trace.ContextWithSpan(ctx, s), s
}

type recordingSpan struct {
	noop.Span
	name   string
	attrs  []attribute.KeyValue
	status codes.Code
	ended  bool
}

func (s *recordingSpan) SetAttributes(kv ...attribute.KeyValue) { s.attrs = append(s.attrs, kv...) }
func (s *recordingSpan) SetStatus(code codes.Code, _ string)    { s.status = code }
func (s *recordingSpan) End(...trace.SpanEndOption)             { s.ended = true }

func (s *recordingSpan) attr(key string) attribute.Value {
	for _, kv := range s.attrs {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestOpenTelemetry(t *testing.T) {
	tp := &recordingProvider{}

	r := chi.NewRouter()
	r.Use(OpenTelemetry(
		WithTracerProvider(tp),
		WithRequestFilter(func(r *http.Request) bool { return r.URL.Path != "/healthz" }),
		WithAttributeExtractor(func(*http.Request) []attribute.KeyValue {
			return []attribute.KeyValue{attribute.String("app", "test")}
		}),
	))
	var sawSpan bool
	r.Get("/ok/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, sawSpan = trace.SpanFromContext(r.Context()).(*recordingSpan)
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/fail", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.Get("/healthz", func(http.ResponseWriter, *http.Request) {})

	for _, path := range []string{"/ok/7", "/fail", "/healthz"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if len(tp.spans) != 2 {
		t.Fatalf("spans = %d, want 2 (healthz filtered)", len(tp.spans))
	}
	if !sawSpan {
		t.Error("handler did not see the request span")
	}

	ok, fail := tp.spans[0], tp.spans[1]
	if ok.name != "GET /ok/7" || !ok.ended {
		t.Errorf("span = %q ended=%v", ok.name, ok.ended)
	}
	if got := ok.attr("http.route").AsString(); got != "/ok/{id}" {
		t.Errorf("http.route = %q", got)
	}
	if got := ok.attr("app").AsString(); got != "test" {
		t.Errorf("app attribute = %q", got)
	}
	if ok.status != codes.Ok {
		t.Errorf("ok status = %v", ok.status)
	}
	if fail.status != codes.Error || fail.attr("http.status_code").AsInt64() != 500 {
		t.Errorf("fail span status = %v, code = %v", fail.status, fail.attr("http.status_code"))
	}
}
