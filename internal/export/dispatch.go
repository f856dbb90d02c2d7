package export

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vango-export/internal/errors"
)

// dispatcher renders requests into a shared FileSet, at most once per
// output path.
type dispatcher struct {
	files   *FileSet
	render  RenderFunc
	scripts []string
	strict  bool
	sem     chan struct{}
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
}

func (d *dispatcher) fetch(ctx context.Context, req Request) error {
	outputPath := strings.TrimPrefix(req.OutputPath, "/")

	if err := ctx.Err(); err != nil {
		return err
	}

	if owner, ok := d.files.Reserve(outputPath, req.Route); !ok {
		d.metrics.dedupSkip()
		if d.strict && owner != req.Route {
			return errors.New("E205").
				WithPathname(outputPath).
				WithDetail(fmt.Sprintf("Routes %q and %q both export %s.", owner, req.Route, outputPath)).
				WithSuggestion("Rename one of the routes or move it out of its group")
		}
		d.logger.Debug("output already claimed", "path", outputPath, "pathname", req.Pathname)
		return nil
	}

	if d.sem != nil {
		select {
		case d.sem <- struct{}{}:
			defer func() { <-d.sem }()
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ctx, span := d.tracer.Start(ctx, "export.render",
		trace.WithAttributes(
			attribute.String("vango.pathname", "/"+req.Pathname),
			attribute.String("vango.output", outputPath),
		),
	)
	defer span.End()

	start := time.Now()
	html, err := d.renderHTML(ctx, req.Pathname)
	d.metrics.observeRender(time.Since(start), err)

	if err != nil {
		// A sibling already failed; its error is the one reported.
		if ctxErr := ctx.Err(); ctxErr != nil && stderrors.Is(err, ctxErr) {
			return err
		}

		cleaned := StripANSI(err.Error())
		d.logger.Error("failed to statically render route", "pathname", "/"+req.Pathname, "error", cleaned)
		span.RecordError(err)
		span.SetStatus(codes.Error, cleaned)

		return errors.New("E200").
			WithPathname("/" + req.Pathname).
			WithDetail(cleaned).
			Wrap(&renderError{msg: cleaned, err: err})
	}

	d.files.Set(outputPath, AppendScripts(html, d.scripts))
	d.logger.Debug("rendered route", "pathname", "/"+req.Pathname, "path", outputPath)
	return nil
}

func (d *dispatcher) renderHTML(ctx context.Context, pathname string) (string, error) {
	page, err := d.render(ctx, pathname)
	if err != nil {
		return "", err
	}
	if page == nil || page.Render == nil {
		return "", fmt.Errorf("no page returned for /%s", pathname)
	}
	return page.Render()
}

// renderError carries the ANSI-free message of a render failure.
type renderError struct {
	msg string
	err error
}

func (e *renderError) Error() string { return e.msg }
func (e *renderError) Unwrap() error { return e.err }
