package server

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-teetime/authflow"
	"github.com/jrsteele09/go-teetime/booking"
	"github.com/jrsteele09/go-teetime/catalog"
	"github.com/jrsteele09/go-teetime/internal/clock"
	"github.com/jrsteele09/go-teetime/internal/config"
	"github.com/jrsteele09/go-teetime/internal/errors"
	"github.com/jrsteele09/go-teetime/metrics"
	"github.com/jrsteele09/go-teetime/server/uistate"
	"github.com/jrsteele09/go-teetime/session"
)

// Deps holds the services the handlers drive
type Deps struct {
	Catalog   catalog.Repo
	Sessions  *session.Service
	Auth      *authflow.Flow
	UIStates  uistate.Repo
	Submitter booking.Submitter
}

type Server struct {
	env       string // Environment (e.g., "DEV", "PROD")
	mux       *http.ServeMux
	routes    []string
	templates map[string]*template.Template
	config    config.Config
	clock     clock.Clock
	limiter   *RateLimiter

	trustedProxies config.TrustedProxies

	catalog   catalog.Repo
	sessions  *session.Service
	auth      *authflow.Flow
	uiStates  uistate.Repo
	submitter booking.Submitter

	routeOutput io.Writer
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithClock sets the clock used for "today" and the booking confirm delay (primarily for testing)
func WithClock(c clock.Clock) ServerOption {
	return func(s *Server) {
		s.clock = c
	}
}

// New wires the routes. ctx bounds the server's background work.
func New(ctx context.Context, config config.Config, deps Deps, options ...ServerOption) (*Server, error) {
	if deps.Catalog == nil {
		return nil, errors.New("[Server New] catalog is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("[Server New] sessions is required")
	}
	if deps.Auth == nil {
		return nil, errors.New("[Server New] auth flow is required")
	}
	if deps.UIStates == nil {
		deps.UIStates = uistate.NewLRURepo(config.GetUIStateCapacity(), config.GetUIStateTTL())
	}
	if deps.Submitter == nil {
		deps.Submitter = booking.LogSubmitter{}
	}

	s := &Server{
		env:         config.GetEnv(),
		mux:         http.NewServeMux(),
		config:      config,
		clock:       &clock.DefaultClock{},
		catalog:     deps.Catalog,
		sessions:    deps.Sessions,
		auth:        deps.Auth,
		uiStates:    deps.UIStates,
		submitter:   deps.Submitter,
		routeOutput: os.Stdout,

		trustedProxies: config.GetTrustedProxies(),
	}
	for _, opt := range options {
		opt(s)
	}
	s.limiter = NewRateLimiter(ctx, config.GetAuthRateLimit(), config.GetAuthRateBurst())

	// Session changes feed the metrics
	deps.Sessions.Subscribe(func(sid string, state session.State) {
		if state.Authenticated {
			metrics.IncSessionEvent(metrics.SessionLogin)
		} else {
			metrics.IncSessionEvent(metrics.SessionLogout)
		}
		log.Debug().Str("sid", shortID(sid)).Bool("authenticated", state.Authenticated).Msg("session changed")
	})

	if err := s.initTemplates(); err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}
	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered route patterns
func (s *Server) Routes() []string {
	return append([]string(nil), s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			fmt.Fprintf(s.routeOutput, "[%-19s] %s\n", colourMethod(parts[0]), parts[1])
		} else {
			fmt.Fprintf(s.routeOutput, "[%-19s] %s\n", colourMethod(""), parts[0])
		}
	}
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}

// shortID trims a browser session ID for logging
func shortID(sid string) string {
	if len(sid) > 8 {
		return sid[:8]
	}
	return sid
}
