package preview

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func writeExport(t *testing.T, withNotFound bool) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"index.html":           "home",
		"about.html":           "about",
		"blog/index.html":      "blog index",
		"blog/post.html":       "post",
		"(tabs)/home.html":     "tabs home",
		"bundle.js":            "console.log(1)",
		".expo/routes.json":    `{"secret": true}`,
		".expo/functions/a.js": "server code",
	}
	if withNotFound {
		files["404.html"] = "custom not found"
	}

	for name, contents := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestServer(dir string, reg *prometheus.Registry) *Server {
	return New(Options{
		Dir:      dir,
		Registry: reg,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestServeFile(t *testing.T) {
	s := newTestServer(writeExport(t, true), nil)

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/", http.StatusOK, "home"},
		{"/about", http.StatusOK, "about"},
		{"/about.html", http.StatusOK, "about"},
		{"/about/", http.StatusOK, "about"},
		{"/blog", http.StatusOK, "blog index"},
		{"/blog/post", http.StatusOK, "post"},
		{"/(tabs)/home", http.StatusOK, "tabs home"},
		{"/%28tabs%29/home", http.StatusOK, "tabs home"},
		{"/bundle.js", http.StatusOK, "console.log(1)"},
		{"/missing", http.StatusNotFound, "custom not found"},
		{"/.expo/routes.json", http.StatusNotFound, "custom not found"},
		{"/.expo/functions/a", http.StatusNotFound, "custom not found"},
		{"/.expo", http.StatusNotFound, "custom not found"},
		{"/blog/../.expo/routes.json", http.StatusNotFound, "custom not found"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestServeFileHTMLContentType(t *testing.T) {
	s := newTestServer(writeExport(t, false), nil)

	req := httptest.NewRequest(http.MethodGet, "/about", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", cc)
	}
}

func TestCacheControl(t *testing.T) {
	tests := map[string]string{
		"index.html":            "no-cache",
		"blog/post.html":        "no-cache",
		"app.a1b2c3d4.js":       "public, max-age=31536000, immutable",
		"css/site.DEADBEEF.css": "public, max-age=31536000, immutable",
		"bundle.js":             "public, max-age=3600, must-revalidate",
		"app.min.js":            "public, max-age=3600, must-revalidate",
		"app.notahash1.js":      "public, max-age=3600, must-revalidate",
	}
	for name, want := range tests {
		if got := cacheControl(name); got != want {
			t.Errorf("cacheControl(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestServeFileDefaultNotFound(t *testing.T) {
	s := newTestServer(writeExport(t, false), nil)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "custom") {
		t.Error("should not serve a custom 404 page")
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newTestServer(writeExport(t, false), reg)

	for _, p := range []string{"/", "/about", "/missing"} {
		s.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`vango_preview_requests_total{code="200"} 2`,
		`vango_preview_requests_total{code="404"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics should contain %q, got:\n%s", want, body)
		}
	}
}

func TestServe(t *testing.T) {
	s := newTestServer(writeExport(t, false), nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/about")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "about" {
		t.Errorf("body = %q, want about", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}
