// Package preview serves an export directory over HTTP the way a static host
// would: clean URLs, directory indexes and a custom 404 page.
package preview

import (
	"bytes"
	"context"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/vango-export/internal/export"
	"github.com/vango-dev/vango-export/pkg/routepath"
)

// NotFoundPage is served with status 404 when present in the export root.
const NotFoundPage = "404.html"

// Options configures the preview server.
type Options struct {
	// Dir is the export directory.
	Dir string

	// Addr is the listen address (default: "localhost:4000").
	Addr string

	// Registry collects the server metrics exposed at /metrics.
	// Default: a new registry.
	Registry *prometheus.Registry

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Server serves an export directory.
type Server struct {
	fsys     fs.FS
	addr     string
	router   chi.Router
	logger   *slog.Logger
	requests *prometheus.CounterVec
}

// New creates a preview server for options.Dir.
func New(options Options) *Server {
	if options.Addr == "" {
		options.Addr = "localhost:4000"
	}
	if options.Registry == nil {
		options.Registry = prometheus.NewRegistry()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		fsys:   os.DirFS(options.Dir),
		addr:   options.Addr,
		logger: logger,
		requests: promauto.With(options.Registry).NewCounterVec(prometheus.CounterOpts{
			Namespace: "vango",
			Subsystem: "preview",
			Name:      "requests_total",
			Help:      "Total number of preview requests by status code",
		}, []string{"code"}),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Handle("/metrics", promhttp.HandlerFor(options.Registry, promhttp.HandlerOpts{}))
	r.Get("/*", s.serveFile)
	r.Head("/*", s.serveFile)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Debug("preview server listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) serveFile(w http.ResponseWriter, r *http.Request) {
	rel, err := routepath.RelativeFilePath(r.URL.EscapedPath())
	if err != nil || isServerPath(rel) {
		s.notFound(w, r)
		return
	}

	for _, name := range candidates(rel) {
		data, info, ok := s.readFile(name)
		if !ok {
			continue
		}
		w.Header().Set("Cache-Control", cacheControl(name))
		http.ServeContent(w, r, name, info.ModTime(), bytes.NewReader(data))
		return
	}

	s.notFound(w, r)
}

// candidates lists the files a request path may resolve to, in order.
func candidates(rel string) []string {
	if rel == "" {
		return []string{"index.html"}
	}
	return []string{rel, rel + ".html", path.Join(rel, "index.html")}
}

// isServerPath reports whether rel is inside the server artifacts directory.
func isServerPath(rel string) bool {
	return rel == export.ServerDir || strings.HasPrefix(rel, export.ServerDir+"/")
}

// cacheControl returns the Cache-Control header for an exported file.
// Pages are revalidated on every request, fingerprinted assets never.
func cacheControl(name string) string {
	switch {
	case path.Ext(name) == ".html":
		return "no-cache"
	case isFingerprinted(name):
		return "public, max-age=31536000, immutable"
	default:
		return "public, max-age=3600, must-revalidate"
	}
}

// isFingerprinted reports whether the file name carries a content hash,
// e.g. "app.a1b2c3d4.js".
func isFingerprinted(name string) bool {
	parts := strings.Split(path.Base(name), ".")
	if len(parts) < 3 {
		return false
	}

	hash := parts[len(parts)-2]
	if len(hash) < 8 {
		return false
	}
	for _, c := range hash {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func (s *Server) readFile(name string) ([]byte, fs.FileInfo, bool) {
	info, err := fs.Stat(s.fsys, name)
	if err != nil || !info.Mode().IsRegular() {
		return nil, nil, false
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, nil, false
	}
	return data, info, true
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.readFile(NotFoundPage)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if r.Method != http.MethodHead {
		w.Write(data)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.requests.WithLabelValues(strconv.Itoa(status)).Inc()
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
