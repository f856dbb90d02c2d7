package export

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/vango-export/internal/errors"
)

const (
	// ServerDir holds server artifacts inside the output directory.
	ServerDir = ".expo"

	// RoutesFile is the routes manifest, relative to the output directory.
	RoutesFile = ServerDir + "/routes.json"

	// FunctionsDir holds server functions, relative to the output directory.
	FunctionsDir = ServerDir + "/functions"

	// ProductionMode is the bundling mode requested from the dev server.
	ProductionMode = "production"
)

// scriptExt matches the extensions rewritten to .js in function paths.
var scriptExt = regexp.MustCompile(`\.[tj]sx?$`)

// FileKind classifies an exported file.
type FileKind string

const (
	KindPage     FileKind = "page"
	KindFunction FileKind = "function"
	KindRoutes   FileKind = "routes"
)

// FileInfo describes one exported file.
type FileInfo struct {
	// Path is relative to the output directory, slash-separated.
	Path string

	// Size is the file size in bytes.
	Size int
}

// Result contains the export output.
type Result struct {
	// Pages are the exported HTML files, sorted by path.
	Pages []FileInfo

	// Functions are the exported server functions, sorted by path.
	Functions []FileInfo

	// Routes is the routes manifest file.
	Routes FileInfo

	// Duration is how long the export took.
	Duration time.Duration
}

// Options configures the exporter.
type Options struct {
	// OutputDir is the local export directory.
	OutputDir string

	// Scripts are appended to every page as deferred script tags.
	Scripts []string

	// Minify asks the dev server for minified output.
	Minify bool

	// Strict fails the export when two routes resolve to one file.
	Strict bool

	// Concurrency bounds in-flight renders. Zero means unbounded.
	Concurrency int

	// Publish are extra sinks every file is also written to.
	Publish []Sink

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Metrics is optional.
	Metrics *Metrics

	// Tracer defaults to the global provider's tracer.
	Tracer trace.Tracer

	// OnProgress is called with progress updates.
	OnProgress func(step string)

	// OnFile is called for every file in the order files are listed.
	OnFile func(kind FileKind, file FileInfo)
}

// Exporter exports a dev server's routes to static files.
type Exporter struct {
	server  Server
	options Options
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New creates a new exporter.
func New(server Server, options Options) *Exporter {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := options.Tracer
	if tracer == nil {
		tracer = otel.Tracer(defaultTracerName)
	}

	return &Exporter{
		server:  server,
		options: options,
		logger:  logger,
		tracer:  tracer,
	}
}

// Export renders every route and writes the export. Files written before a
// failure are left in place.
func (e *Exporter) Export(ctx context.Context) (result *Result, err error) {
	start := time.Now()

	ctx, span := e.tracer.Start(ctx, "export",
		trace.WithAttributes(attribute.String("vango.output_dir", e.options.OutputDir)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	renderOpts := RenderOptions{Mode: ProductionMode, Minify: e.options.Minify}

	e.progress("Loading routes...")
	m, err := e.server.Routes(ctx)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("E201").WithDetail("The dev server returned no route manifest.")
	}
	e.logger.Debug("loaded route manifest", "screens", m.Count())

	e.progress("Rendering routes...")
	files, err := CollectFiles(ctx, m, func(ctx context.Context, pathname string) (*Page, error) {
		return e.server.RenderPage(ctx, pathname, renderOpts)
	}, CollectOptions{
		Scripts:     e.options.Scripts,
		Strict:      e.options.Strict,
		Concurrency: e.options.Concurrency,
		Logger:      e.logger,
		Metrics:     e.options.Metrics,
		Tracer:      e.tracer,
	})
	if err != nil {
		return nil, err
	}

	e.progress("Exporting server functions...")
	functions, err := e.server.Functions(ctx, renderOpts)
	if err != nil {
		return nil, err
	}
	if functions == nil {
		return nil, errors.New("E203")
	}

	result, err = e.commit(ctx, files, functions)
	if err != nil {
		return nil, err
	}
	result.Duration = time.Since(start)
	return result, nil
}

func (e *Exporter) commit(ctx context.Context, files *FileSet, functions *Functions) (*Result, error) {
	ctx, span := e.tracer.Start(ctx, "export.commit")
	defer span.End()

	outputDir := e.options.OutputDir
	if err := os.MkdirAll(filepath.Join(outputDir, filepath.FromSlash(FunctionsDir)), 0755); err != nil {
		return nil, errors.New("E204").WithPathname(outputDir).Wrap(err)
	}

	sink := Tee(append([]Sink{DirSink{Root: outputDir}}, e.options.Publish...)...)
	result := &Result{}

	routes, err := indentRoutes(functions.Routes)
	if err != nil {
		return nil, errors.New("E203").WithDetail("The routes manifest is not valid JSON.").Wrap(err)
	}
	e.progress("Writing routes manifest...")
	result.Routes = FileInfo{Path: RoutesFile, Size: len(routes)}
	e.file(KindRoutes, result.Routes)
	if err := e.write(ctx, sink, KindRoutes, File{Path: RoutesFile, Contents: routes}); err != nil {
		return nil, err
	}

	e.progress("Writing server functions...")
	names := make([]string, 0, len(functions.Files))
	for name := range functions.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	fns := make([]File, 0, len(names))
	for _, name := range names {
		p, err := FunctionPath(name)
		if err != nil {
			return nil, err
		}
		fns = append(fns, File{Path: p, Contents: functions.Files[name]})
	}
	result.Functions, err = e.writeAll(ctx, sink, KindFunction, fns)
	if err != nil {
		return nil, err
	}

	e.progress("Writing pages...")
	result.Pages, err = e.writeAll(ctx, sink, KindPage, files.Sorted())
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("vango.pages", len(result.Pages)),
		attribute.Int("vango.functions", len(result.Functions)),
	)
	return result, nil
}

// writeAll lists files in order and writes them concurrently.
func (e *Exporter) writeAll(ctx context.Context, sink Sink, kind FileKind, files []File) ([]FileInfo, error) {
	infos := make([]FileInfo, 0, len(files))
	g, gctx := errgroup.WithContext(ctx)

	for _, f := range files {
		info := FileInfo{Path: f.Path, Size: len(f.Contents)}
		infos = append(infos, info)
		e.file(kind, info)

		g.Go(func() error {
			return e.write(gctx, sink, kind, f)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return infos, nil
}

func (e *Exporter) write(ctx context.Context, sink Sink, kind FileKind, f File) error {
	if err := sink.WriteFile(ctx, f.Path, []byte(f.Contents)); err != nil {
		var ve *errors.VangoError
		if stderrors.As(err, &ve) {
			return err
		}
		return errors.New("E204").WithPathname(f.Path).Wrap(err)
	}
	e.options.Metrics.fileWritten(kind, len(f.Contents))
	return nil
}

// FunctionPath returns the export path of a server function source file.
// TypeScript and JSX extensions are rewritten to .js. Names that resolve
// outside the functions directory are rejected with E204.
func FunctionPath(name string) (string, error) {
	rel := path.Clean(strings.TrimPrefix(name, "/"))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", errors.New("E204").
			WithPathname(name).
			WithDetail(fmt.Sprintf("Server function %q resolves outside %s.", name, FunctionsDir))
	}
	return scriptExt.ReplaceAllString(path.Join(FunctionsDir, rel), ".js"), nil
}

// indentRoutes formats the routes manifest with two-space indentation,
// keeping key order and leaving <, > and & unescaped.
func indentRoutes(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(raw), "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Exporter) progress(step string) {
	e.logger.Debug(step)
	if e.options.OnProgress != nil {
		e.options.OnProgress(step)
	}
}

func (e *Exporter) file(kind FileKind, info FileInfo) {
	e.logger.Debug("export file", "kind", kind, "path", info.Path, "size", humanize.Bytes(uint64(info.Size)))
	if e.options.OnFile != nil {
		e.options.OnFile(kind, info)
	}
}
