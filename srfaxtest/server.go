// Package srfaxtest provides an in-memory fake of the SRFax API for tests
// and local development.
//
// The fake speaks the same form-encoded request and JSON envelope as the real
// service, keeps sent and received faxes in memory, and can inject failures:
//
//	fake := srfaxtest.New("100", "pw", srfaxtest.WithStartID(42))
//	srv := httptest.NewServer(fake)
//	defer srv.Close()
//
//	client, _ := srfax.New("100", "pw", srfax.WithBaseURL(srv.URL))
//
// Queued faxes are delivered instantly unless they are scheduled.
package srfaxtest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	// EndpointPath is the path of the real service's endpoint. The fake
	// also answers on "/".
	EndpointPath = "/SRF_SecWebSvc.php"

	// AuthFailureMessage is returned for wrong credentials.
	AuthFailureMessage = "Invalid Access Code / Password"

	dateFormat    = "20060102"
	listingLayout = "Jan 02/2006 03:04 PM"
)

// fault is a one-shot injected failure.
type fault struct {
	message    string // remote failure text
	statusCode int    // raw HTTP failure when non-zero
	body       string
}

// Server is a fake SRFax endpoint. It implements http.Handler and is safe
// for concurrent use.
type Server struct {
	accessID       string
	accessPassword string
	logger         *zap.Logger
	observer       Observer
	router         chi.Router
	store          *store

	requests atomic.Int64
	latency  atomic.Int64 // nanoseconds

	mu     sync.Mutex
	faults []fault
}

type serverConfig struct {
	logger   *zap.Logger
	observer Observer
	startID  int64
	now      func() time.Time
}

// Observer receives one callback per handled request. A metrics.Collector
// satisfies it.
type Observer interface {
	ObserveRequest(action, outcome string, duration time.Duration)
}

// Option configures a Server.
type Option func(*serverConfig)

// WithLogger logs every request on logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *serverConfig) {
		c.logger = logger
	}
}

// WithObserver reports every request, including injected faults, to o.
// Outcomes are "success", "remote_error" and "transport_error".
func WithObserver(o Observer) Option {
	return func(c *serverConfig) {
		c.observer = o
	}
}

// WithStartID sets the first FaxDetailsID handed out.
// Default: 1
func WithStartID(id int64) Option {
	return func(c *serverConfig) {
		c.startID = id
	}
}

// WithClock replaces time.Now for queue and receive timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *serverConfig) {
		c.now = now
	}
}

// New creates a fake service accepting the given credentials.
func New(accessID, accessPassword string, opts ...Option) *Server {
	cfg := &serverConfig{
		logger:  zap.NewNop(),
		startID: 1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Server{
		accessID:       accessID,
		accessPassword: accessPassword,
		logger:         cfg.logger,
		observer:       cfg.observer,
		store:          newStore(cfg.startID, cfg.now),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)
	if s.observer != nil {
		r.Use(s.observe)
	}
	r.Use(s.delay)
	r.Use(s.injectFaults)

	r.Post("/", s.dispatch)
	r.Post(EndpointPath, s.dispatch)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Requests returns the number of requests received so far.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// SetLatency delays every response by d.
func (s *Server) SetLatency(d time.Duration) {
	s.latency.Store(int64(d))
}

// FailNext makes the next request fail with the given service message.
func (s *Server) FailNext(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{message: message})
}

// BreakNext makes the next request answer with a raw HTTP status and body,
// as a proxy or load balancer would.
func (s *Server) BreakNext(statusCode int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = append(s.faults, fault{statusCode: statusCode, body: body})
}

// Sent returns a copy of every outbound fax, oldest first.
func (s *Server) Sent() []SentFax {
	return s.store.snapshotSent()
}

// AddInbound places a received fax in the inbox and returns its file name.
func (s *Server) AddInbound(in InboundFax) string {
	return s.store.receive(in)
}

// SetStatus overrides the SentStatus of an outbound fax, addressed by
// FaxDetailsID or file name. It reports whether the fax exists.
func (s *Server) SetStatus(ref, status, errorCode string) bool {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	f, _ := s.store.findSent(ref)
	if f == nil {
		return false
	}
	f.Status = status
	f.ErrorCode = errorCode
	return true
}

// Reset drops all faxes and pending faults. The id counter keeps running.
func (s *Server) Reset() {
	s.store.reset()
	s.mu.Lock()
	s.faults = nil
	s.mu.Unlock()
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		_ = r.ParseForm()

		var body bytes.Buffer
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		ww.Tee(&body)
		next.ServeHTTP(ww, r)

		outcome := "success"
		var env envelope
		switch {
		case ww.Status() != http.StatusOK:
			outcome = "transport_error"
		case json.Unmarshal(body.Bytes(), &env) != nil:
			outcome = "transport_error"
		case env.Status != "Success":
			outcome = "remote_error"
		}
		s.observer.ObserveRequest(r.PostFormValue("action"), outcome, time.Since(start))
	})
}

func (s *Server) delay(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if d := time.Duration(s.latency.Load()); d > 0 {
			select {
			case <-time.After(d):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectFaults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		var f *fault
		if len(s.faults) > 0 {
			f = &s.faults[0]
			s.faults = s.faults[1:]
		}
		s.mu.Unlock()

		switch {
		case f == nil:
			next.ServeHTTP(w, r)
		case f.statusCode != 0:
			s.logger.Debug("injected transport fault", zap.Int("status", f.statusCode))
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(f.statusCode)
			_, _ = w.Write([]byte(f.body))
		default:
			s.logger.Debug("injected remote fault", zap.String("message", f.message))
			writeFailure(w, f.message)
		}
	})
}

// envelope is the top-level response shape.
type envelope struct {
	Status string `json:"Status"`
	Result any    `json:"Result"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, result any) {
	writeJSON(w, envelope{Status: "Success", Result: result})
}

// writeFailure answers with HTTP 200, as the real service does.
func writeFailure(w http.ResponseWriter, message string) {
	writeJSON(w, envelope{Status: "Failed", Result: message})
}
