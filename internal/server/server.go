// Package server hosts the formpulse page: a chi router serving the rendered
// page, its script, a health check, JSON validation endpoints and the
// websocket that drives one form engine per connection.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/conneroisu/formpulse/internal/config"
	"github.com/conneroisu/formpulse/internal/form"
	"github.com/conneroisu/formpulse/internal/logging"
	"github.com/conneroisu/formpulse/internal/page"
	"github.com/conneroisu/formpulse/internal/store"
)

// Server serves the page and its sessions.
type Server struct {
	config   *config.Config
	store    store.Store
	logger   logging.Logger
	hub      *Hub
	router   chi.Router
	tabIDs   []string
	faqItems int
	started  time.Time

	httpServer  *http.Server
	serverMutex sync.Mutex
}

// New builds a server over st. The caller owns st and closes it after
// Shutdown.
func New(cfg *config.Config, st store.Store, logger logging.Logger) *Server {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logger.WithComponent("server")

	tabIDs := make([]string, len(page.DefaultTabs))
	for i, tab := range page.DefaultTabs {
		tabIDs[i] = tab.ID
	}

	s := &Server{
		config:   cfg,
		store:    st,
		logger:   logger,
		hub:      NewHub(logger),
		tabIDs:   tabIDs,
		faqItems: len(page.DefaultFAQ),
		started:  time.Now(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(SecurityMiddleware(DefaultSecurityPolicy(s.config.Server.AllowedOrigins), s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Handle("/static/*", http.FileServerFS(page.Static))
	r.Get("/ws", s.handleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/validate", s.handleValidate)
		r.Post("/strength", s.handleStrength)
	})
	return r
}

// Handler returns the root handler. The hub must be running for websocket
// sessions; Start runs it.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the session hub.
func (s *Server) Hub() *Hub { return s.hub }

// Start serves on the configured address until ctx is done or the listener
// fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.hub.Run(ctx)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	srv := s.httpServer
	s.serverMutex.Unlock()

	s.logger.Info(ctx, "Server listening", "addr", ln.Addr().String())

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.Shutdown(shutdownCtx)
		<-errCh
		return err
	}
}

// Shutdown stops accepting connections, ends every session and waits for
// in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Stop()

	s.serverMutex.Lock()
	srv := s.httpServer
	s.serverMutex.Unlock()
	if srv == nil {
		return nil
	}
	s.logger.Info(ctx, "Shutting down server")
	return srv.Shutdown(ctx)
}

// catalog resolves the message language: an explicit ?lang= wins, then
// Accept-Language, then the configured default.
func (s *Server) catalog(r *http.Request) *form.Catalog {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return form.NewCatalog(lang)
	}
	return form.NewCatalogAccept(r.Header.Get("Accept-Language"), s.config.Form.Language)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug(r.Context(), "Request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
