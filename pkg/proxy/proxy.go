// Package proxy is the HTTP companion process: it rewrites the public
// /api prefix to the backend's versioned API root and serves the built
// single-page app assets.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bugbridge/disclosoor/pkg/config"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Server exposes the proxy HTTP server lifecycle.
type Server interface {
	Start(ctx context.Context) error
	Stop() error
}

// Compile-time interface check.
var _ Server = (*server)(nil)

type server struct {
	log        logrus.FieldLogger
	cfg        *config.ProxyConfig
	httpServer *http.Server
	wg         sync.WaitGroup
}

// NewServer creates a new proxy server.
func NewServer(log logrus.FieldLogger, cfg *config.ProxyConfig) Server {
	return &server{
		log: log.WithField("component", "proxy"),
		cfg: cfg,
	}
}

// errorResponse is a standard error payload.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes v as JSON and writes it to w.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "encoding response", http.StatusInternalServerError)
	}
}

// Start builds the router and starts the HTTP server.
func (s *server) Start(_ context.Context) error {
	backendURL, err := url.Parse(s.cfg.Backend)
	if err != nil {
		return fmt.Errorf("parsing backend url: %w", err)
	}

	router, err := s.buildRouter(backendURL)
	if err != nil {
		return fmt.Errorf("building router: %w", err)
	}

	s.httpServer = &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Bind the listener synchronously so we fail fast on port conflicts.
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Listen, err)
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		s.log.WithField("listen", s.cfg.Listen).
			WithField("backend", s.cfg.Backend).
			Info("Proxy server starting")

		if err := s.httpServer.Serve(ln); err != nil &&
			err != http.ErrServerClosed {
			s.log.WithError(err).Error("HTTP server error")
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *server) Stop() error {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(
			context.Background(), shutdownTimeout,
		)
		defer cancel()

		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.log.WithError(err).Warn("HTTP server shutdown error")
		}
	}

	s.wg.Wait()

	s.log.Info("Proxy server stopped")

	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
func (s *server) buildRouter(backendURL *url.URL) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)
	r.Use(s.requestLogger)

	if len(s.cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	if s.cfg.RateLimit.Enabled {
		r.Use(s.rateLimitMiddleware(s.cfg.RateLimit))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	apiProxy := s.newAPIProxy(backendURL)
	r.Handle(s.cfg.APIPrefix, apiProxy)
	r.Handle(s.cfg.APIPrefix+"/*", apiProxy)

	// Everything else is the SPA: real files are served as-is, HTML
	// navigations fall back to index.html.
	r.NotFound(s.handleStatic)

	return r, nil
}

// newAPIProxy builds the reverse proxy that rewrites the public API
// prefix to the backend's versioned root, e.g. /api/companies ->
// /api/v1/companies.
func (s *server) newAPIProxy(backendURL *url.URL) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(backendURL)
			pr.SetXForwarded()

			rest := strings.TrimPrefix(pr.In.URL.Path, s.cfg.APIPrefix)
			pr.Out.URL.Path = s.cfg.VersionedPrefix + rest
			pr.Out.Host = backendURL.Host
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			s.log.WithError(err).
				WithField("path", r.URL.Path).
				Warn("Backend proxy error")

			writeJSON(w, http.StatusBadGateway,
				errorResponse{"backend unavailable"})
		},
	}
}

// handleStatic serves the built SPA assets. Unknown non-file paths get
// index.html so client-side routing works after a full page load.
func (s *server) handleStatic(w http.ResponseWriter, r *http.Request) {
	if s.cfg.StaticDir == "" {
		writeJSON(w, http.StatusNotFound, errorResponse{"not found"})

		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeJSON(w, http.StatusMethodNotAllowed,
			errorResponse{"method not allowed"})

		return
	}

	requestPath := strings.TrimPrefix(r.URL.Path, "/")
	if requestPath != "" && !isAllowedPath(requestPath) {
		writeJSON(w, http.StatusBadRequest, errorResponse{"invalid path"})

		return
	}

	root := filepath.Clean(s.cfg.StaticDir)

	if requestPath != "" {
		full := filepath.Join(root, filepath.FromSlash(requestPath))

		// Defense-in-depth: the resolved path must stay under root.
		if strings.HasPrefix(full, root+string(filepath.Separator)) {
			if info, err := os.Stat(full); err == nil && !info.IsDir() {
				http.ServeFile(w, r, full)

				return
			}
		}
	}

	http.ServeFile(w, r, filepath.Join(root, "index.html"))
}

// isAllowedPath rejects empty, absolute, unclean, or traversal request
// paths.
func isAllowedPath(requestPath string) bool {
	if requestPath == "" {
		return false
	}

	if strings.Contains(requestPath, "..") {
		return false
	}

	if filepath.IsAbs(requestPath) {
		return false
	}

	return path.Clean(requestPath) == requestPath
}

// requestLogger logs incoming HTTP requests.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		s.log.WithField("method", r.Method).
			WithField("path", r.URL.Path).
			WithField("remote", r.RemoteAddr).
			WithField("duration", time.Since(start)).
			Debug("Request handled")
	})
}
