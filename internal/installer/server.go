// Package installer hosts the first-run setup wizard over HTTP.
//
// The wizard renders each step through a response envelope that commits
// headers exactly once, so steps can stream progress, switch to a redirect,
// or pick a page frame up to the moment output starts, but not after.
package installer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/lodestar/internal/installer/session"
	"github.com/louisbranch/lodestar/internal/installer/steps"
	"github.com/louisbranch/lodestar/internal/installer/storage"
	"github.com/louisbranch/lodestar/internal/installer/storage/sqlite"
	"github.com/louisbranch/lodestar/internal/platform/assets"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Config defines the inputs for the installer server.
type Config struct {
	// HTTPAddr is the listen address.
	HTTPAddr string
	// StoragePath is the SQLite file for wizard progress. Empty uses an
	// in-memory store that forgets progress on restart.
	StoragePath string
	// SessionSecret signs the wizard session cookie. Required.
	SessionSecret []byte
	// SessionTTL bounds the wizard session lifetime.
	SessionTTL time.Duration
	// DataDir is probed by the environment step and receives installed data.
	DataDir string
	// AssetBasePath is the URL prefix for static assets.
	AssetBasePath string
	// Skin selects the stylesheet directory.
	Skin string
}

// Server hosts the installer HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	store      storage.WizardStore
	httpServer *http.Server
}

// NewServer validates config, opens storage, and constructs the server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}

	sessions, err := session.NewManager(session.Config{
		Secret: cfg.SessionSecret,
		TTL:    cfg.SessionTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("configure sessions: %w", err)
	}
	sessionTTL := cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = 2 * time.Hour
	}

	var store storage.WizardStore
	if strings.TrimSpace(cfg.StoragePath) == "" {
		store, err = sqlite.OpenInMemory()
	} else {
		store, err = sqlite.Open(cfg.StoragePath)
	}
	if err != nil {
		return nil, fmt.Errorf("open wizard storage: %w", err)
	}

	registry := steps.NewRegistry(
		steps.NewWelcome(),
		steps.NewEnvironment(steps.DefaultChecks(cfg.DataDir)),
		steps.NewConnect(nil),
		steps.NewAccount(),
		steps.NewComplete(),
	)
	resolver := assets.NewResolver(cfg.AssetBasePath, cfg.Skin)
	handler := newHandler(store, sessions, registry, resolver, sessionTTL)

	return &Server{
		httpAddr: httpAddr,
		store:    store,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}, nil
}

// Handler exposes the root handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("installer server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	serveErr := make(chan error, 1)
	log.Printf("installer listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close wizard storage: %v", err)
		}
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
}
