package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-mood-mixer/internal/sentiment"
)

// DefaultAddr is the default server address.
const DefaultAddr = "127.0.0.1:8080"

const (
	shutdownTimeout = 10 * time.Second

	// DefaultRequestTimeout bounds the upstream work of a single request.
	DefaultRequestTimeout = 25 * time.Second

	// writeMargin leaves time to render the error page after a request's
	// deadline passes.
	writeMargin = 5 * time.Second
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Addr string
	// RequestTimeout is the deadline for a request's upstream calls.
	// The server's write timeout is set just above it.
	RequestTimeout time.Duration
	Sentiment      sentiment.Classifier
	Recommender    Recommender
	Logger         logrus.FieldLogger
	TemplatesFS    fs.FS
	StaticFS       fs.FS
}

// Server is the HTTP server for the web application.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	log      logrus.FieldLogger
}

// NewServer creates a new web server.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Sentiment == nil || cfg.Recommender == nil {
		return nil, errors.New("sentiment classifier and recommender are required")
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	templates, err := NewTemplates(cfg.TemplatesFS)
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	handlers := NewHandlers(cfg.Sentiment, cfg.Recommender, templates, cfg.Logger)
	handlers.requestTimeout = cfg.RequestTimeout

	s := &Server{
		router:   chi.NewRouter(),
		handlers: handlers,
		log:      cfg.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.StaticFS)

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.RequestTimeout + writeMargin,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// WriteTimeout reports the configured write timeout.
func (s *Server) WriteTimeout() time.Duration {
	return s.server.WriteTimeout
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  s.log,
		NoColor: true,
	}))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes(staticFS fs.FS) {
	if staticFS != nil {
		fileServer := http.FileServer(http.FS(staticFS))
		s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	}

	s.router.Get("/healthz", s.handlers.Health)

	// Pages
	s.router.Get("/", s.handlers.Home)
	s.router.Post("/", s.handlers.Mix)

	// JSON API
	s.router.Post("/analyze-mood", s.handlers.AnalyzeMood)
	s.router.Post("/recommend-tracks", s.handlers.RecommendTracks)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.log.Infof("Starting server at http://%s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.log.Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.log.Info("Server stopped")
	return nil
}
