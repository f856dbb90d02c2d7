package export

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vango-export/pkg/manifest"
)

// fakeServer renders "<html><body>/pathname</body></html>" for every
// pathname unless pages or fail say otherwise.
type fakeServer struct {
	manifest  *manifest.Manifest
	pages     map[string]string
	fail      map[string]error
	functions *Functions
	delay     time.Duration

	renders  atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32

	mu    sync.Mutex
	calls map[string]int
	opts  []RenderOptions
}

func newFakeServer(t *testing.T, manifestJSON string) *fakeServer {
	t.Helper()
	m, err := manifest.Parse([]byte(manifestJSON))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return &fakeServer{
		manifest:  m,
		calls:     make(map[string]int),
		functions: &Functions{Routes: []byte(`{}`)},
	}
}

func (s *fakeServer) Routes(ctx context.Context) (*manifest.Manifest, error) {
	return s.manifest, nil
}

func (s *fakeServer) RenderPage(ctx context.Context, pathname string, opts RenderOptions) (*Page, error) {
	s.renders.Add(1)
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		max := s.maxSeen.Load()
		if n <= max || s.maxSeen.CompareAndSwap(max, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls[pathname]++
	s.opts = append(s.opts, opts)
	s.mu.Unlock()

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	if err, ok := s.fail[pathname]; ok {
		return nil, err
	}

	html, ok := s.pages[pathname]
	if !ok {
		html = fmt.Sprintf("<html><body>/%s</body></html>", pathname)
	}
	return &Page{Render: func() (string, error) { return html, nil }}, nil
}

func (s *fakeServer) Functions(ctx context.Context, opts RenderOptions) (*Functions, error) {
	return s.functions, nil
}

func (s *fakeServer) callCount(pathname string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[pathname]
}

// memSink records written files.
type memSink struct {
	mu    sync.Mutex
	files map[string]string
	fail  error
}

func (s *memSink) WriteFile(ctx context.Context, name string, data []byte) error {
	if s.fail != nil {
		return s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.files == nil {
		s.files = make(map[string]string)
	}
	s.files[name] = string(data)
	return nil
}

// metricValue returns the value of a counter with the given labels, or the
// sample count of a histogram.
func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			if h := m.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}
