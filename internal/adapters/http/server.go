package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/sessionscope"
	"github.com/aretw0/sessionscope/internal/logging"
	"github.com/aretw0/sessionscope/internal/metrics"
	"github.com/aretw0/sessionscope/pkg/domain"
	"github.com/aretw0/sessionscope/pkg/scope"
	"github.com/aretw0/sessionscope/pkg/session"
	"github.com/aretw0/sessionscope/pkg/singleton"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// APIVersion is reported by GET /info.
const APIVersion = "0.1.0"

// VisitCounter counts the requests of one session. It backs GET /visits.
type VisitCounter struct {
	mu    sync.Mutex
	count int
	since time.Time
}

// Hit records a visit and returns the running total.
func (v *VisitCounter) Hit() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.count++
	return v.count
}

// Server hosts sessions over HTTP.
type Server struct {
	Manager    *session.Manager
	CookieName string
	Secure     bool

	accessor *singleton.Accessor
	visits   *singleton.Singleton[*VisitCounter]
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) Option {
	return func(s *Server) {
		s.CookieName = name
	}
}

// WithSecureCookie marks the session cookie Secure.
func WithSecureCookie(secure bool) Option {
	return func(s *Server) {
		s.Secure = secure
	}
}

// WithAccessor sets the singleton accessor used by the built-in endpoints.
func WithAccessor(a *singleton.Accessor) Option {
	return func(s *Server) {
		s.accessor = a
	}
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a Server bound to mgr.
func NewServer(mgr *session.Manager, opts ...Option) *Server {
	s := &Server{
		Manager:    mgr,
		CookieName: domain.DefaultCookieName,
		accessor:   singleton.Default,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.visits = singleton.For(s.accessor, func(ctx context.Context) (*VisitCounter, error) {
		return &VisitCounter{since: time.Now()}, nil
	})
	return s
}

// NewHandler creates the HTTP handler for mgr.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	return NewServer(mgr, opts...).Routes()
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Handle("/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(s.Middleware)
		r.Get("/session", s.GetSession)
		r.Delete("/session", s.DeleteSession)
		r.Get("/visits", s.GetVisits)
	})

	return r
}

// Middleware binds the session named by the request cookie, starting a new one
// when it is missing or expired, and a fresh request cache to the context.
func (s *Server) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(s.CookieName); err == nil {
			id = c.Value
		}

		sess, err := s.Manager.GetOrCreate(r.Context(), id)
		if err != nil {
			s.logger.Error("failed to resolve session", "err", err)
			http.Error(w, "session unavailable", http.StatusServiceUnavailable)
			return
		}

		if sess.ID() != id {
			http.SetCookie(w, &http.Cookie{
				Name:     s.CookieName,
				Value:    sess.ID(),
				Path:     "/",
				HttpOnly: true,
				Secure:   s.Secure,
				SameSite: http.SameSiteLaxMode,
			})
		}

		ctx := scope.WithSession(r.Context(), sess)
		ctx = scope.WithRequestCache(ctx, scope.NewRequestCache())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionResponse describes the current session.
type SessionResponse struct {
	ID         string     `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	LastAccess time.Time  `json:"last_access"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	Attributes []string   `json:"attributes"`
}

// VisitsResponse is the body of GET /visits.
type VisitsResponse struct {
	SessionID string    `json:"session_id"`
	Visits    int       `json:"visits"`
	Since     time.Time `json:"since"`
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "sessionscope-http",
		"version":     sessionscope.Version,
		"api_version": APIVersion,
	})
}

// GetSession handles GET /session.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := current(r)
	if !ok {
		http.Error(w, "no session", http.StatusInternalServerError)
		return
	}

	meta := sess.Metadata()
	resp := SessionResponse{
		ID:         meta.ID,
		CreatedAt:  meta.CreatedAt,
		LastAccess: meta.LastAccess,
		Attributes: sess.AttributeNames(),
	}
	if exp := meta.ExpiresAt(); !exp.IsZero() {
		resp.ExpiresAt = &exp
	}
	writeJSON(w, http.StatusOK, resp)
}

// DeleteSession handles DELETE /session.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := current(r)
	if !ok {
		http.Error(w, "no session", http.StatusInternalServerError)
		return
	}

	if err := s.Manager.Invalidate(r.Context(), sess.ID()); err != nil {
		s.logger.Warn("session invalidation incomplete", "session_id", sess.ID(), "err", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Secure,
	})
	w.WriteHeader(http.StatusNoContent)
}

// GetVisits handles GET /visits.
func (s *Server) GetVisits(w http.ResponseWriter, r *http.Request) {
	counter, err := s.visits.Get(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNoSession) {
			status = http.StatusUnauthorized
		}
		http.Error(w, fmt.Sprintf("visit counter: %v", err), status)
		return
	}

	sess, _ := scope.SessionFrom(r.Context())
	n := counter.Hit()
	writeJSON(w, http.StatusOK, VisitsResponse{
		SessionID: sess.ID(),
		Visits:    n,
		Since:     counter.since,
	})
}

func current(r *http.Request) (*session.Session, bool) {
	s, ok := scope.SessionFrom(r.Context())
	if !ok {
		return nil, false
	}
	sess, ok := s.(*session.Session)
	return sess, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("encode error: %v\n", err)
	}
}
