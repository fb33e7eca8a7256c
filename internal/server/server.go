package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/klauspost/compress/gzhttp"

	"github.com/jnspo1/chatgpt-stats/internal"
	"github.com/jnspo1/chatgpt-stats/internal/config"
)

// DataPlaceholder is the template line replaced with the payload
const DataPlaceholder = "const DASHBOARD_DATA = {};"

const shutdownTimeout = 10 * time.Second

// Server serves the dashboard page and its data API
type Server struct {
	cfg       config.Config
	snapshots *SnapshotCache
	limiter   *RefreshLimiter
}

// New creates a server whose snapshots come from build
func New(cfg config.Config, build Builder) *Server {
	return &Server{
		cfg:       cfg,
		snapshots: NewSnapshotCache(build, cfg.CacheTTL.Duration),
		limiter:   NewRefreshLimiter(cfg.RefreshEvery.Duration, cfg.RefreshBurst),
	}
}

// Snapshots exposes the snapshot cache, for warming at startup
func (s *Server) Snapshots() *SnapshotCache {
	return s.snapshots
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(requestLogFormatter{}))
	r.Use(middleware.Recoverer)
	r.Use(func(next http.Handler) http.Handler { return gzhttp.GzipHandler(next) })
	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "If-None-Match"},
			ExposedHeaders: []string{"ETag"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/healthz", s.handleHealth)
	r.Get("/", s.handleDashboard)
	r.Route("/api", func(r chi.Router) {
		r.Get("/data", s.handleData)
		r.With(s.limiter.Middleware).Get("/refresh", s.handleRefresh)
	})

	return r
}

// ListenAndServe listens on the configured address until ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln and shuts down gracefully once ctx is done
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	httpServer := &http.Server{
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		internal.LogInfo("starting server on http://%s", ln.Addr())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	internal.LogInfo("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	internal.LogInfo("server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	tmpl, err := os.ReadFile(s.cfg.Template)
	if err != nil {
		if os.IsNotExist(err) {
			respondError(w, http.StatusInternalServerError, "Template not found")
			return
		}
		internal.LogError("failed to read template %s: %v", s.cfg.Template, err)
		respondError(w, http.StatusInternalServerError, "Failed to read template")
		return
	}

	snap, err := s.snapshots.Get(r.Context())
	if err != nil {
		buildFailed(w, err)
		return
	}

	page := bytes.ReplaceAll(tmpl, []byte(DataPlaceholder), InjectData(snap.Data))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Get(r.Context())
	if err != nil {
		buildFailed(w, err)
		return
	}

	etag := `"` + snap.ID + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(snap.Data)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	snap, err := s.snapshots.Refresh(r.Context())
	if err != nil {
		buildFailed(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":       "refreshed",
		"generated_at": snap.Payload.GeneratedAt,
	})
}

// InjectData renders the script assignment for data, escaping "</" so the
// JSON cannot close the surrounding script element
func InjectData(data []byte) []byte {
	var b bytes.Buffer
	b.WriteString("const DASHBOARD_DATA = ")
	b.Write(bytes.ReplaceAll(data, []byte("</"), []byte(`<\/`)))
	b.WriteString(";")
	return b.Bytes()
}

func buildFailed(w http.ResponseWriter, err error) {
	internal.LogError("failed to build dashboard data: %v", err)
	respondError(w, http.StatusInternalServerError, err.Error())
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		internal.LogError("error encoding JSON response: %v", err)
	}
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// requestLogFormatter routes chi's request log through the package logger
type requestLogFormatter struct{}

func (requestLogFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	return &requestLogEntry{
		method:    r.Method,
		path:      r.URL.Path,
		remote:    r.RemoteAddr,
		requestID: middleware.GetReqID(r.Context()),
	}
}

type requestLogEntry struct {
	method    string
	path      string
	remote    string
	requestID string
}

func (e *requestLogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	internal.LogInfo("%s %s status=%d bytes=%d elapsed=%s remote=%s request_id=%s",
		e.method, e.path, status, bytes, elapsed.Round(time.Microsecond), e.remote, e.requestID)
}

func (e *requestLogEntry) Panic(v interface{}, stack []byte) {
	internal.LogError("panic serving %s %s: %v\n%s", e.method, e.path, v, stack)
}
