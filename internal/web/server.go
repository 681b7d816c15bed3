// Package web wires the HTTP surface: guest and host JSON APIs, the
// OAuth endpoints, and operational routes.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	spotifyauth "github.com/zmb3/spotify/v2/auth"

	"github.com/crowdqueue/crowdqueue/internal/config"
	"github.com/crowdqueue/crowdqueue/internal/db"
	"github.com/crowdqueue/crowdqueue/internal/harvest"
	"github.com/crowdqueue/crowdqueue/internal/metrics"
	"github.com/crowdqueue/crowdqueue/internal/queue"
	"github.com/crowdqueue/crowdqueue/internal/rooms"
	"github.com/crowdqueue/crowdqueue/internal/secretbox"
	"github.com/crowdqueue/crowdqueue/internal/session"
	"github.com/crowdqueue/crowdqueue/internal/tokens"
)

// sweepInterval is how often the room retention sweep runs.
const sweepInterval = time.Hour

// Server is the HTTP server for the application.
type Server struct {
	router   chi.Router
	server   *http.Server
	handlers *Handlers
	limiter  *rateLimiter
	rooms    *rooms.Service
	metrics  *metrics.Collector
	logger   *log.Logger
}

// NewServer creates a fully wired server.
func NewServer(cfg *config.Config, database *db.DB, collector *metrics.Collector, logger *log.Logger) (*Server, error) {
	codec, err := secretbox.New(cfg.Session.CookieSecret)
	if err != nil {
		return nil, fmt.Errorf("building credential codec: %w", err)
	}

	auth := spotifyauth.New(
		spotifyauth.WithClientID(cfg.Spotify.ClientID),
		spotifyauth.WithClientSecret(cfg.Spotify.ClientSecret),
		spotifyauth.WithRedirectURL(cfg.Spotify.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserReadPrivate,
			spotifyauth.ScopeUserTopRead,
		),
	)

	roomService := rooms.New(database.Rooms(), logger)
	handlers := &Handlers{
		auth:     auth,
		baseURL:  cfg.Server.BaseURL,
		tokens:   tokens.NewManager(codec, cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, logger),
		appToken: tokens.NewAppTokenSource(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret),
		writer:   session.Writer{Secure: cfg.Session.SecureCookies},
		resolver: session.NewResolver(database.Rooms(), logger),
		rooms:    roomService,
		queue:    queue.NewService(database.Requests(), database.Votes(), logger),
		harvest:  harvest.New(database.Harvest(), logger, harvest.WithObserver(collector.RecordHarvest)),
		database: database,
		metrics:  collector,
		logger:   logger,
	}

	s := &Server{
		router:   chi.NewRouter(),
		handlers: handlers,
		limiter:  newRateLimiter(),
		rooms:    roomService,
		metrics:  collector,
		logger:   logger,
	}
	s.setupMiddleware()
	s.setupRoutes(collector)

	s.server = &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes(collector *metrics.Collector) {
	h := s.handlers

	s.router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	s.router.Method(http.MethodGet, "/metrics", collector.Handler())

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/guest", func(r chi.Router) {
			r.Get("/session", h.GuestSession)
			r.Get("/search", h.Search)
			r.Get("/spotify/login", h.SpotifyLogin)
			r.Get("/spotify/callback", h.SpotifyCallback)

			r.Group(func(r chi.Router) {
				r.Use(s.limiter.middleware)
				r.Post("/rooms/join", h.JoinRoom)
				r.Post("/rooms/leave", h.LeaveRoom)
				r.Post("/spotify/disconnect", h.SpotifyDisconnect)
			})
		})

		r.Route("/rooms/{code}", func(r chi.Router) {
			r.Get("/queue", h.Queue)
			r.With(s.limiter.middleware).Post("/requests", h.SubmitRequest)
		})

		r.Route("/requests/{requestID}", func(r chi.Router) {
			r.Use(s.limiter.middleware)
			r.Post("/vote", h.Vote)
			r.Delete("/", h.RemoveRequest)
		})

		r.Route("/host/rooms", func(r chi.Router) {
			r.Post("/", h.CreateRoom)
			r.Get("/", h.ListRooms)
			r.Route("/{code}", func(r chi.Router) {
				r.Get("/", h.RoomDetail)
				r.Get("/insights", h.Insights)
				r.Get("/report", h.Report)
				r.Delete("/requests/{requestID}", h.HostRemoveRequest)
			})
		})
	})
}

// runSweeper deletes expired rooms on an interval until ctx ends.
func (s *Server) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.rooms.Sweep(ctx)
			if err != nil {
				s.logger.Error("room sweep failed", "err", err)
				continue
			}
			s.metrics.RecordRoomsSwept(deleted)
		}
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	return s.server.Shutdown(ctx)
}

// Run starts the server, the retention sweeper, and handles graceful
// shutdown on interrupt signals.
func (s *Server) Run() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	defer cancelSweep()
	go s.runSweeper(sweepCtx)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.logger.Info("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
