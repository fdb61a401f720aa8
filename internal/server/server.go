package server

import (
	"context"
	"net/http"
	"time"

	"yourtune/internal/config"
	"yourtune/internal/mediahost"
	"yourtune/internal/session"
	"yourtune/internal/store"
	"yourtune/internal/tunnel"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// Server is the HTTP surface of the application: it maps routes to
// handlers that check the session, call the store and upload bridge, and
// hand assembled view data to the renderer.
type Server struct {
	cfg      *config.Config
	store    *store.Store
	sessions *session.Authority
	uploads  *mediahost.Client
	renderer *Renderer
	tunnel   *tunnel.Service
	logger   *logrus.Logger
	watcher  *fsnotify.Watcher

	httpServer *http.Server
}

// NewServer wires the application together. The store must already be
// initialized; the upload client may be nil when the media host is not
// configured, in which case routes that need it reject uploads.
func NewServer(cfg *config.Config, st *store.Store, sessions *session.Authority, logger *logrus.Logger) (*Server, error) {
	renderer, err := NewRenderer(cfg.Server.TemplatesDir, logger)
	if err != nil {
		return nil, err
	}

	uploads, err := mediahost.NewClient(&cfg.MediaHost, logger)
	if err != nil {
		logger.WithError(err).Warn("Media host not configured; uploads disabled")
		uploads = nil
	}

	tun, err := tunnel.NewService(&cfg.Tunnel, logger)
	if err != nil {
		logger.WithError(err).Warn("Tunnel not available")
		tun = nil
	}

	return &Server{
		cfg:      cfg,
		store:    st,
		sessions: sessions,
		uploads:  uploads,
		renderer: renderer,
		tunnel:   tun,
		logger:   logger,
	}, nil
}

// routes builds the canonical route table: one handler per (method, path).
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /static/", http.StripPrefix("/static/",
		http.FileServer(http.Dir(s.cfg.Server.StaticDir))))

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/home", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /home", s.handleHome)

	mux.HandleFunc("GET /news", s.handleNewsList)
	mux.HandleFunc("GET /news/new", s.handleNewsForm)
	mux.HandleFunc("POST /news/add", s.handleNewsAdd)
	mux.HandleFunc("GET /news/update", s.requireLogin(s.handleNewsManage))
	mux.HandleFunc("GET /news/{id}", s.handleNewsByID)
	mux.HandleFunc("GET /news/delete/{id}", s.requireLogin(s.handleNewsDelete))

	mux.HandleFunc("GET /albums", s.handleAlbumList)
	mux.HandleFunc("GET /podcasts", s.handlePodcasts)
	mux.HandleFunc("GET /albums/new", s.requireLogin(s.handleAlbumForm))
	mux.HandleFunc("POST /albums/new", s.requireLogin(s.handleAlbumAdd))
	mux.HandleFunc("GET /albums/update", s.requireLogin(s.handleAlbumManage))
	mux.HandleFunc("GET /albums/{id}", s.requireLogin(s.handleAlbumByID))
	mux.HandleFunc("GET /albums/delete/{id}", s.requireLogin(s.handleAlbumDelete))

	mux.HandleFunc("GET /songs/new", s.requireLogin(s.handleSongForm))
	mux.HandleFunc("POST /songs/new", s.requireLogin(s.handleSongAdd))
	mux.HandleFunc("GET /songs/update", s.requireLogin(s.handleSongManage))
	mux.HandleFunc("GET /songs/{id}", s.requireLogin(s.handleSongsByAlbum))
	mux.HandleFunc("GET /songs/delete/{id}", s.requireLogin(s.handleSongDelete))

	mux.HandleFunc("GET /genres", s.handleGenreList)
	mux.HandleFunc("GET /genres/new", s.requireLogin(s.handleGenreForm))
	mux.HandleFunc("POST /genres/new", s.requireLogin(s.handleGenreAdd))
	mux.HandleFunc("GET /genres/delete/{id}", s.requireLogin(s.handleGenreDelete))

	mux.HandleFunc("GET /register", s.handleRegisterForm)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /login", s.handleLoginForm)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.requireLogin(s.handleLogout))
	mux.HandleFunc("GET /loginHistory", s.requireLogin(s.handleLoginHistory))

	// Everything unmatched renders the 404 page
	mux.HandleFunc("/", s.handleNotFound)

	return s.panicRecoveryMiddleware(
		s.requestLoggingMiddleware(
			s.sessionRefreshMiddleware(mux)))
}

// Start runs the server until the context is cancelled, then shuts the
// listener down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.Site.WatchTemplates {
		if err := s.startTemplateWatcher(); err != nil {
			s.logger.WithError(err).Warn("Could not start template watcher")
		} else {
			defer s.stopTemplateWatcher()
		}
	}

	s.httpServer = &http.Server{
		Addr:         s.cfg.GetAddress(),
		Handler:      s.routes(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout) * time.Second,
	}

	if s.tunnel != nil {
		if err := s.tunnel.Start(ctx, "http://"+s.cfg.GetAddress()); err != nil {
			s.logger.WithError(err).Warn("Could not start tunnel")
		} else {
			defer s.tunnel.Stop()
		}
	}

	s.logger.WithField("address", s.cfg.GetAddress()).Info("Server listening")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
