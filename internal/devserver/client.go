package devserver

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/vango-dev/vango-export/internal/errors"
	"github.com/vango-dev/vango-export/internal/export"
	"github.com/vango-dev/vango-export/pkg/manifest"
)

const (
	// RoutesPath serves the route manifest.
	RoutesPath = "/_vango/routes"

	// FunctionsPath serves the server functions manifest.
	FunctionsPath = "/_vango/functions"

	// FetchDataHeader is set to "1" on pages that load data at request time.
	FetchDataHeader = "X-Vango-Fetch-Data"
)

// Client is an export.Server backed by a running dev server.
type Client struct {
	base   *url.URL
	http   *http.Client
	logger *slog.Logger
}

var _ export.Server = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the dev server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.New("E122").
			WithDetail(fmt.Sprintf("Invalid dev server URL %q.", baseURL)).
			WithSuggestion("Use a URL like http://localhost:3000")
	}

	c := &Client{
		base:   u,
		http:   http.DefaultClient,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL returns the dev server base URL.
func (c *Client) URL() string {
	return c.base.String()
}

// Routes fetches the route manifest.
func (c *Client) Routes(ctx context.Context) (*manifest.Manifest, error) {
	body, err := c.get(ctx, RoutesPath, nil)
	if err != nil {
		return nil, errors.New("E202").WithPathname(RoutesPath).Wrap(err)
	}
	return manifest.Parse(body)
}

// RenderPage renders pathname. The HTML is fetched eagerly; Page.Render
// returns it.
func (c *Client) RenderPage(ctx context.Context, pathname string, opts export.RenderOptions) (*export.Page, error) {
	req, err := c.newRequest(ctx, "/"+strings.TrimPrefix(pathname, "/"), renderQuery(opts))
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.New("E202").WithPathname("/" + pathname).Wrap(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New("E202").WithPathname("/" + pathname).Wrap(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	html := string(body)
	return &export.Page{
		FetchData: resp.Header.Get(FetchDataHeader) == "1",
		Render:    func() (string, error) { return html, nil },
	}, nil
}

type functionsResponse struct {
	Routes    json.RawMessage   `json:"routes"`
	Functions map[string]string `json:"functions"`
}

// Functions fetches the routes manifest and server function sources.
func (c *Client) Functions(ctx context.Context, opts export.RenderOptions) (*export.Functions, error) {
	body, err := c.get(ctx, FunctionsPath, renderQuery(opts))
	if err != nil {
		var re *ResponseError
		if stderrors.As(err, &re) {
			return nil, errors.New("E203").WithDetail(re.Error())
		}
		return nil, errors.New("E202").WithPathname(FunctionsPath).Wrap(err)
	}

	var fr functionsResponse
	if err := json.Unmarshal(body, &fr); err != nil {
		return nil, errors.New("E203").Wrap(err)
	}
	if len(fr.Routes) == 0 {
		return nil, errors.New("E203").WithDetail("The functions manifest has no routes.")
	}

	c.logger.Debug("loaded functions manifest", "functions", len(fr.Functions))
	return &export.Functions{Routes: fr.Routes, Files: fr.Functions}, nil
}

// Ping reports whether the dev server answers the routes endpoint.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.get(ctx, RoutesPath, nil)
	return err
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	req, err := c.newRequest(ctx, path, query)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// newRequest builds a GET for path below the base URL, keeping any path
// prefix the base URL has.
func (c *Client) newRequest(ctx context.Context, path string, query url.Values) (*http.Request, error) {
	u := *c.base
	u.Path = strings.TrimSuffix(c.base.Path, "/") + path
	u.RawPath = ""
	u.RawQuery = query.Encode()
	u.Fragment = ""
	return http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
}

func renderQuery(opts export.RenderOptions) url.Values {
	q := url.Values{}
	if opts.Mode != "" {
		q.Set("mode", opts.Mode)
	}
	if opts.Minify {
		q.Set("minify", "true")
	}
	return q
}

// ResponseError is a non-2xx dev server response. Its message is the
// response body, which may carry terminal styling.
type ResponseError struct {
	StatusCode int
	Body       string
}

func (e *ResponseError) Error() string {
	if msg := strings.TrimSpace(e.Body); msg != "" {
		return msg
	}
	return fmt.Sprintf("dev server responded %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
