package export

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vango-export/internal/errors"
	"github.com/vango-dev/vango-export/pkg/manifest"
	"github.com/vango-dev/vango-export/pkg/routepath"
)

const defaultTracerName = "vango-export"

// CollectOptions configures CollectFiles.
type CollectOptions struct {
	// Scripts are appended to every page as deferred script tags.
	Scripts []string

	// Strict reports two routes resolving to one output path as E205
	// instead of keeping the first.
	Strict bool

	// Concurrency bounds in-flight renders. Zero means unbounded.
	Concurrency int

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *Metrics

	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer
}

// CollectFiles renders every screen of m into a FileSet keyed by output path.
// Screens are rendered concurrently. The first failure cancels the remaining
// renders and is returned.
func CollectFiles(ctx context.Context, m *manifest.Manifest, render RenderFunc, opts CollectOptions) (*FileSet, error) {
	if m == nil {
		return nil, errors.New("E201").WithDetail("The route manifest is empty.")
	}

	d := &dispatcher{
		files:   NewFileSet(),
		render:  render,
		scripts: opts.Scripts,
		strict:  opts.Strict,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.tracer == nil {
		d.tracer = otel.Tracer(defaultTracerName)
	}
	if opts.Concurrency > 0 {
		d.sem = make(chan struct{}, opts.Concurrency)
	}

	g, gctx := errgroup.WithContext(ctx)
	w := &walker{g: g, ctx: gctx, d: d}
	w.screens(m.Screens, "", "")

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d.files, nil
}

type walker struct {
	g   *errgroup.Group
	ctx context.Context
	d   *dispatcher
}

// screens walks one level of the manifest. prefix is the sanitized URL
// prefix; scope is the path of manifest keys leading here.
func (w *walker) screens(screens manifest.Screens, prefix, scope string) {
	for _, name := range screens.Names() {
		node := screens[name]
		w.g.Go(func() error {
			return w.node(name, node, prefix, scope)
		})
	}
}

func (w *walker) node(name string, node manifest.Node, prefix, scope string) error {
	switch n := node.(type) {
	case *manifest.Branch:
		if len(n.Screens) > 0 {
			w.screens(n.Screens,
				routepath.Join(prefix, routepath.SanitizeName(n.Path)),
				routepath.Join(scope, name))
			return nil
		}
		return w.leaf(name, n.Path, prefix, scope)
	case *manifest.Leaf:
		return w.leaf(name, n.Segment, prefix, scope)
	default:
		return errors.New("E201").
			WithPathname(routepath.Join(scope, name)).
			WithDetail(fmt.Sprintf("Unexpected screen type %T.", node))
	}
}

func (w *walker) leaf(name, segment, prefix, scope string) error {
	route := routepath.Join(scope, name)
	for _, req := range ScreenRequests(prefix, name, segment) {
		req.Route = route
		if err := w.d.fetch(w.ctx, req); err != nil {
			return err
		}
	}
	return nil
}
